package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"tallyflow/internal/domain"
	"tallyflow/internal/port"
)

type auditRepo struct {
	db *sqlx.DB
}

// NewAuditRepo creates a new PostgreSQL-backed AuditRepository.
func NewAuditRepo(db *sqlx.DB) port.AuditRepository {
	return &auditRepo{db: db}
}

func (r *auditRepo) InsertTaxComputations(ctx context.Context, recs []domain.TaxComputation) error {
	if len(recs) == 0 {
		return nil
	}
	_, err := r.db.NamedExecContext(ctx,
		`INSERT INTO tax_computations
		 (id, run_id, row_ref, taxable_value, cgst, sgst, igst, total_tax, total_amount)
		 VALUES (:id, :run_id, :row_ref, :taxable_value, :cgst, :sgst, :igst, :total_tax, :total_amount)`,
		recs)
	if err != nil {
		return fmt.Errorf("auditRepo.InsertTaxComputations: %w", err)
	}
	return nil
}

func (r *auditRepo) InsertInvoiceRegistry(ctx context.Context, recs []domain.InvoiceRegistryEntry) error {
	if len(recs) == 0 {
		return nil
	}
	_, err := r.db.NamedExecContext(ctx,
		`INSERT INTO invoice_registry
		 (invoice_no, run_id, gstin, channel, buyer_state, month, sequence_number, row_ref)
		 VALUES (:invoice_no, :run_id, :gstin, :channel, :buyer_state, :month, :sequence_number, :row_ref)`,
		recs)
	if err != nil {
		return fmt.Errorf("auditRepo.InsertInvoiceRegistry: %w", err)
	}
	return nil
}

func (r *auditRepo) InsertPivotSummaries(ctx context.Context, recs []domain.PivotSummary) error {
	if len(recs) == 0 {
		return nil
	}
	_, err := r.db.NamedExecContext(ctx,
		`INSERT INTO pivot_summaries
		 (id, run_id, gstin, month, gst_rate, ledger_name, fg, buyer_state,
		  total_quantity, total_taxable, total_cgst, total_sgst, total_igst)
		 VALUES (:id, :run_id, :gstin, :month, :gst_rate, :ledger_name, :fg, :buyer_state,
		  :total_quantity, :total_taxable, :total_cgst, :total_sgst, :total_igst)`,
		recs)
	if err != nil {
		return fmt.Errorf("auditRepo.InsertPivotSummaries: %w", err)
	}
	return nil
}

func (r *auditRepo) InsertBatchRecords(ctx context.Context, recs []domain.BatchRecord) error {
	if len(recs) == 0 {
		return nil
	}
	_, err := r.db.NamedExecContext(ctx,
		`INSERT INTO batch_registry
		 (id, run_id, channel, gstin, month, gst_rate, file_path, record_count)
		 VALUES (:id, :run_id, :channel, :gstin, :month, :gst_rate, :file_path, :record_count)`,
		recs)
	if err != nil {
		return fmt.Errorf("auditRepo.InsertBatchRecords: %w", err)
	}
	return nil
}
