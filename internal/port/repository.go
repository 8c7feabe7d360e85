package port

import (
	"context"

	"github.com/google/uuid"

	"tallyflow/internal/domain"
)

// RunRepository defines the contract for run lifecycle persistence.
type RunRepository interface {
	Create(ctx context.Context, run *domain.Run) error
	GetByID(ctx context.Context, runID uuid.UUID) (*domain.Run, error)
	// FindCompleted returns the most recent successful run matching the
	// idempotency key, or domain.ErrNotFound.
	FindCompleted(ctx context.Context, gstin string, channel domain.Channel, month, inputHash string) (*domain.Run, error)
	// SetTerminalStatus writes the terminal status exactly once; a second
	// write returns an error.
	SetTerminalStatus(ctx context.Context, runID uuid.UUID, status domain.RunStatus) error
}

// ArtifactRepository defines the contract for report artifact records.
type ArtifactRepository interface {
	Create(ctx context.Context, artifact *domain.ReportArtifact) error
	ListByRun(ctx context.Context, runID uuid.UUID) ([]domain.ReportArtifact, error)
}

// MasterRepository defines the contract for item and ledger master tables.
// Snapshot methods return full copies so a resolver stage works against a
// consistent view while approvals race.
type MasterRepository interface {
	UpsertItem(ctx context.Context, item *domain.ItemMaster) error
	UpsertLedger(ctx context.Context, ledger *domain.LedgerMaster) error
	SnapshotItems(ctx context.Context) ([]domain.ItemMaster, error)
	SnapshotLedgers(ctx context.Context) ([]domain.LedgerMaster, error)
}

// ApprovalRepository defines the contract for the approval queue.
type ApprovalRepository interface {
	Create(ctx context.Context, req *domain.ApprovalRequest) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.ApprovalRequest, error)
	List(ctx context.Context, status domain.ApprovalStatus, typ domain.ApprovalType) ([]domain.ApprovalRequest, error)
	// FindPending returns a pending request with an identical payload, or
	// domain.ErrNotFound; used to deduplicate requests across datasets.
	FindPending(ctx context.Context, typ domain.ApprovalType, payload []byte) (*domain.ApprovalRequest, error)
	MarkDecided(ctx context.Context, id uuid.UUID, status domain.ApprovalStatus, approver string) error
}

// SequenceRepository defines the contract for durable invoice sequences.
type SequenceRepository interface {
	// NextValue returns the next unallocated value for the key; keys never
	// seen before report 1.
	NextValue(ctx context.Context, key domain.InvoiceSequence) (int64, error)
	// Commit advances next_value from expected to next atomically. A
	// concurrent advance surfaces as domain.ErrInvoiceSequenceConflict.
	Commit(ctx context.Context, key domain.InvoiceSequence, expected, next int64) error
}

// AuditRepository defines the contract for per-run audit records.
type AuditRepository interface {
	InsertTaxComputations(ctx context.Context, recs []domain.TaxComputation) error
	InsertInvoiceRegistry(ctx context.Context, recs []domain.InvoiceRegistryEntry) error
	InsertPivotSummaries(ctx context.Context, recs []domain.PivotSummary) error
	InsertBatchRecords(ctx context.Context, recs []domain.BatchRecord) error
}

// ExportRepository defines the contract for export and seller-invoice records.
type ExportRepository interface {
	InsertTallyExport(ctx context.Context, rec *domain.TallyExport) error
	InsertExpenseExport(ctx context.Context, rec *domain.ExpenseExport) error
	InsertSellerInvoices(ctx context.Context, recs []domain.SellerInvoice) error
	ListTallyExports(ctx context.Context, gstin, month string) ([]domain.TallyExport, error)
	ListExpenseExports(ctx context.Context, gstin, month string) ([]domain.ExpenseExport, error)
}
