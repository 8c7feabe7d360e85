package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"tallyflow/internal/domain"
	"tallyflow/internal/port"
)

type exportRepo struct {
	db *sqlx.DB
}

// NewExportRepo creates a new PostgreSQL-backed ExportRepository.
func NewExportRepo(db *sqlx.DB) port.ExportRepository {
	return &exportRepo{db: db}
}

func (r *exportRepo) InsertTallyExport(ctx context.Context, rec *domain.TallyExport) error {
	_, err := r.db.NamedExecContext(ctx,
		`INSERT INTO tally_exports
		 (id, run_id, channel, gstin, month, gst_rate, template_name, file_path,
		  file_size, record_count, total_taxable, total_tax, export_status)
		 VALUES (:id, :run_id, :channel, :gstin, :month, :gst_rate, :template_name, :file_path,
		  :file_size, :record_count, :total_taxable, :total_tax, :export_status)`,
		rec)
	if err != nil {
		return fmt.Errorf("exportRepo.InsertTallyExport: %w", err)
	}
	return nil
}

func (r *exportRepo) InsertExpenseExport(ctx context.Context, rec *domain.ExpenseExport) error {
	_, err := r.db.NamedExecContext(ctx,
		`INSERT INTO expense_exports
		 (id, run_id, channel, gstin, month, file_path, record_count,
		  total_taxable, total_tax, export_status)
		 VALUES (:id, :run_id, :channel, :gstin, :month, :file_path, :record_count,
		  :total_taxable, :total_tax, :export_status)`,
		rec)
	if err != nil {
		return fmt.Errorf("exportRepo.InsertExpenseExport: %w", err)
	}
	return nil
}

func (r *exportRepo) InsertSellerInvoices(ctx context.Context, recs []domain.SellerInvoice) error {
	if len(recs) == 0 {
		return nil
	}
	_, err := r.db.NamedExecContext(ctx,
		`INSERT INTO seller_invoices
		 (id, run_id, channel, gstin, vendor_invoice_no, invoice_date, expense_type,
		  taxable_value, gst_rate, cgst, sgst, igst, total_value, ledger_name,
		  source_file, processing_status)
		 VALUES (:id, :run_id, :channel, :gstin, :vendor_invoice_no, :invoice_date, :expense_type,
		  :taxable_value, :gst_rate, :cgst, :sgst, :igst, :total_value, :ledger_name,
		  :source_file, :processing_status)`,
		recs)
	if err != nil {
		return fmt.Errorf("exportRepo.InsertSellerInvoices: %w", err)
	}
	return nil
}

func (r *exportRepo) ListTallyExports(ctx context.Context, gstin, month string) ([]domain.TallyExport, error) {
	var recs []domain.TallyExport
	err := r.db.SelectContext(ctx, &recs,
		`SELECT * FROM tally_exports WHERE gstin = $1 AND month = $2 ORDER BY gst_rate`,
		gstin, month)
	if err != nil {
		return nil, fmt.Errorf("exportRepo.ListTallyExports: %w", err)
	}
	return recs, nil
}

func (r *exportRepo) ListExpenseExports(ctx context.Context, gstin, month string) ([]domain.ExpenseExport, error) {
	var recs []domain.ExpenseExport
	err := r.db.SelectContext(ctx, &recs,
		`SELECT * FROM expense_exports WHERE gstin = $1 AND month = $2 ORDER BY channel`,
		gstin, month)
	if err != nil {
		return nil, fmt.Errorf("exportRepo.ListExpenseExports: %w", err)
	}
	return recs, nil
}
