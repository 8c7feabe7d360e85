// Package memory provides in-memory implementations of the persistence
// ports, used by pipeline-level tests and single-process deployments.
package memory

import (
	"bytes"
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"tallyflow/internal/domain"
	"tallyflow/internal/port"
)

// RunRepo is an in-memory port.RunRepository.
type RunRepo struct {
	mu   sync.Mutex
	runs map[uuid.UUID]*domain.Run
}

// NewRunRepo creates an empty run repository.
func NewRunRepo() *RunRepo {
	return &RunRepo{runs: make(map[uuid.UUID]*domain.Run)}
}

func (r *RunRepo) Create(_ context.Context, run *domain.Run) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *run
	r.runs[run.ID] = &cp
	return nil
}

func (r *RunRepo) GetByID(_ context.Context, runID uuid.UUID) (*domain.Run, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	run, ok := r.runs[runID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *run
	return &cp, nil
}

func (r *RunRepo) FindCompleted(_ context.Context, gstin string, channel domain.Channel, month, inputHash string) (*domain.Run, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var best *domain.Run
	for _, run := range r.runs {
		if run.GSTIN == gstin && run.Channel == channel && run.Month == month &&
			run.InputHash == inputHash && run.Status == domain.RunStatusSuccess {
			if best == nil || run.StartedAt.After(best.StartedAt) {
				best = run
			}
		}
	}
	if best == nil {
		return nil, domain.ErrNotFound
	}
	cp := *best
	return &cp, nil
}

func (r *RunRepo) SetTerminalStatus(_ context.Context, runID uuid.UUID, status domain.RunStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	run, ok := r.runs[runID]
	if !ok {
		return domain.ErrNotFound
	}
	if run.Status != domain.RunStatusRunning {
		return domain.ErrRunConflict
	}
	run.Status = status
	now := time.Now().UTC()
	run.FinishedAt = &now
	return nil
}

// ArtifactRepo is an in-memory port.ArtifactRepository.
type ArtifactRepo struct {
	mu        sync.Mutex
	artifacts []domain.ReportArtifact
}

// NewArtifactRepo creates an empty artifact repository.
func NewArtifactRepo() *ArtifactRepo {
	return &ArtifactRepo{}
}

func (r *ArtifactRepo) Create(_ context.Context, artifact *domain.ReportArtifact) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.artifacts = append(r.artifacts, *artifact)
	return nil
}

func (r *ArtifactRepo) ListByRun(_ context.Context, runID uuid.UUID) ([]domain.ReportArtifact, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.ReportArtifact
	for _, a := range r.artifacts {
		if a.RunID == runID {
			out = append(out, a)
		}
	}
	return out, nil
}

// MasterRepo is an in-memory port.MasterRepository.
type MasterRepo struct {
	mu      sync.Mutex
	items   map[string]domain.ItemMaster
	ledgers map[string]domain.LedgerMaster
}

// NewMasterRepo creates an empty master repository.
func NewMasterRepo() *MasterRepo {
	return &MasterRepo{
		items:   make(map[string]domain.ItemMaster),
		ledgers: make(map[string]domain.LedgerMaster),
	}
}

func (r *MasterRepo) UpsertItem(_ context.Context, item *domain.ItemMaster) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[item.SKU+"|"+item.ASIN] = *item
	return nil
}

func (r *MasterRepo) UpsertLedger(_ context.Context, ledger *domain.LedgerMaster) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ledgers[string(ledger.Channel)+"|"+ledger.BuyerState] = *ledger
	return nil
}

func (r *MasterRepo) SnapshotItems(_ context.Context) ([]domain.ItemMaster, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.ItemMaster, 0, len(r.items))
	for _, it := range r.items {
		out = append(out, it)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SKU != out[j].SKU {
			return out[i].SKU < out[j].SKU
		}
		return out[i].ASIN < out[j].ASIN
	})
	return out, nil
}

func (r *MasterRepo) SnapshotLedgers(_ context.Context) ([]domain.LedgerMaster, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.LedgerMaster, 0, len(r.ledgers))
	for _, l := range r.ledgers {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Channel != out[j].Channel {
			return out[i].Channel < out[j].Channel
		}
		return out[i].BuyerState < out[j].BuyerState
	})
	return out, nil
}

// ApprovalRepo is an in-memory port.ApprovalRepository.
type ApprovalRepo struct {
	mu   sync.Mutex
	reqs []domain.ApprovalRequest
}

// NewApprovalRepo creates an empty approval repository.
func NewApprovalRepo() *ApprovalRepo {
	return &ApprovalRepo{}
}

func (r *ApprovalRepo) Create(_ context.Context, req *domain.ApprovalRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reqs = append(r.reqs, *req)
	return nil
}

func (r *ApprovalRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.ApprovalRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.reqs {
		if r.reqs[i].ID == id {
			cp := r.reqs[i]
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *ApprovalRepo) List(_ context.Context, status domain.ApprovalStatus, typ domain.ApprovalType) ([]domain.ApprovalRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.ApprovalRequest
	for _, req := range r.reqs {
		if status != "" && req.Status != status {
			continue
		}
		if typ != "" && req.Type != typ {
			continue
		}
		out = append(out, req)
	}
	return out, nil
}

func (r *ApprovalRepo) FindPending(_ context.Context, typ domain.ApprovalType, payload []byte) (*domain.ApprovalRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.reqs {
		req := &r.reqs[i]
		if req.Type == typ && req.Status == domain.ApprovalStatusPending &&
			bytes.Equal(req.Payload, payload) {
			cp := *req
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *ApprovalRepo) MarkDecided(_ context.Context, id uuid.UUID, status domain.ApprovalStatus, approver string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.reqs {
		if r.reqs[i].ID != id {
			continue
		}
		if r.reqs[i].Status != domain.ApprovalStatusPending {
			return domain.ErrApprovalDecided
		}
		now := time.Now().UTC()
		r.reqs[i].Status = status
		r.reqs[i].Approver = approver
		r.reqs[i].DecidedAt = &now
		return nil
	}
	return domain.ErrNotFound
}

// SequenceRepo is an in-memory port.SequenceRepository with the same
// compare-and-swap contract as the durable one.
type SequenceRepo struct {
	mu   sync.Mutex
	next map[string]int64
}

// NewSequenceRepo creates an empty sequence repository.
func NewSequenceRepo() *SequenceRepo {
	return &SequenceRepo{next: make(map[string]int64)}
}

func seqKey(k domain.InvoiceSequence) string {
	return k.GSTIN + "|" + string(k.Channel) + "|" + k.BuyerState + "|" + k.Month
}

func (r *SequenceRepo) NextValue(_ context.Context, key domain.InvoiceSequence) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if v, ok := r.next[seqKey(key)]; ok {
		return v, nil
	}
	return 1, nil
}

func (r *SequenceRepo) Commit(_ context.Context, key domain.InvoiceSequence, expected, next int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := seqKey(key)
	current, ok := r.next[k]
	if !ok {
		current = 1
	}
	if current != expected {
		return domain.ErrInvoiceSequenceConflict
	}
	r.next[k] = next
	return nil
}

// AuditRepo is an in-memory port.AuditRepository.
type AuditRepo struct {
	mu              sync.Mutex
	TaxComputations []domain.TaxComputation
	InvoiceRegistry []domain.InvoiceRegistryEntry
	PivotSummaries  []domain.PivotSummary
	BatchRecords    []domain.BatchRecord
}

// NewAuditRepo creates an empty audit repository.
func NewAuditRepo() *AuditRepo {
	return &AuditRepo{}
}

func (r *AuditRepo) InsertTaxComputations(_ context.Context, recs []domain.TaxComputation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.TaxComputations = append(r.TaxComputations, recs...)
	return nil
}

func (r *AuditRepo) InsertInvoiceRegistry(_ context.Context, recs []domain.InvoiceRegistryEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.InvoiceRegistry = append(r.InvoiceRegistry, recs...)
	return nil
}

func (r *AuditRepo) InsertPivotSummaries(_ context.Context, recs []domain.PivotSummary) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.PivotSummaries = append(r.PivotSummaries, recs...)
	return nil
}

func (r *AuditRepo) InsertBatchRecords(_ context.Context, recs []domain.BatchRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.BatchRecords = append(r.BatchRecords, recs...)
	return nil
}

// ExportRepo is an in-memory port.ExportRepository.
type ExportRepo struct {
	mu             sync.Mutex
	TallyExports   []domain.TallyExport
	ExpenseExports []domain.ExpenseExport
	SellerInvoices []domain.SellerInvoice
}

// NewExportRepo creates an empty export repository.
func NewExportRepo() *ExportRepo {
	return &ExportRepo{}
}

func (r *ExportRepo) InsertTallyExport(_ context.Context, rec *domain.TallyExport) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.TallyExports = append(r.TallyExports, *rec)
	return nil
}

func (r *ExportRepo) InsertExpenseExport(_ context.Context, rec *domain.ExpenseExport) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ExpenseExports = append(r.ExpenseExports, *rec)
	return nil
}

func (r *ExportRepo) InsertSellerInvoices(_ context.Context, recs []domain.SellerInvoice) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.SellerInvoices = append(r.SellerInvoices, recs...)
	return nil
}

func (r *ExportRepo) ListTallyExports(_ context.Context, gstin, month string) ([]domain.TallyExport, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.TallyExport
	for _, rec := range r.TallyExports {
		if rec.GSTIN == gstin && rec.Month == month {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (r *ExportRepo) ListExpenseExports(_ context.Context, gstin, month string) ([]domain.ExpenseExport, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.ExpenseExport
	for _, rec := range r.ExpenseExports {
		if rec.GSTIN == gstin && rec.Month == month {
			out = append(out, rec)
		}
	}
	return out, nil
}

// The memory package satisfies the same ports as postgres.
var (
	_ port.RunRepository      = (*RunRepo)(nil)
	_ port.ArtifactRepository = (*ArtifactRepo)(nil)
	_ port.MasterRepository   = (*MasterRepo)(nil)
	_ port.ApprovalRepository = (*ApprovalRepo)(nil)
	_ port.SequenceRepository = (*SequenceRepo)(nil)
	_ port.AuditRepository    = (*AuditRepo)(nil)
	_ port.ExportRepository   = (*ExportRepo)(nil)
)
