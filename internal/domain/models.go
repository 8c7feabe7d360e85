package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Run is a single end-to-end pipeline invocation for one
// (channel, gstin, month, input file) tuple.
type Run struct {
	ID         uuid.UUID  `db:"run_id" json:"run_id"`
	Channel    Channel    `db:"channel" json:"channel"`
	GSTIN      string     `db:"gstin" json:"gstin"`
	Month      string     `db:"month" json:"month"`
	Status     RunStatus  `db:"status" json:"status"`
	InputHash  string     `db:"input_hash" json:"input_hash"`
	StartedAt  time.Time  `db:"started_at" json:"started_at"`
	FinishedAt *time.Time `db:"finished_at" json:"finished_at"`
}

// ReportArtifact is a file produced by a stage, tracked for audit.
type ReportArtifact struct {
	ID          uuid.UUID    `db:"id" json:"id"`
	RunID       uuid.UUID    `db:"run_id" json:"run_id"`
	Role        ArtifactRole `db:"role" json:"role"`
	FilePath    string       `db:"file_path" json:"file_path"`
	ContentHash string       `db:"content_hash" json:"content_hash"`
	CreatedAt   time.Time    `db:"created_at" json:"created_at"`
}

// ItemMaster maps a marketplace SKU/ASIN pair to a finished good.
type ItemMaster struct {
	SKU        string          `db:"sku" json:"sku"`
	ASIN       string          `db:"asin" json:"asin"`
	ItemCode   string          `db:"item_code" json:"item_code"`
	FG         string          `db:"fg" json:"fg"`
	GSTRate    decimal.Decimal `db:"gst_rate" json:"gst_rate"`
	ApprovedBy string          `db:"approved_by" json:"approved_by"`
}

// LedgerMaster maps a (channel, buyer state) pair to a bookkeeping ledger.
type LedgerMaster struct {
	Channel    Channel `db:"channel" json:"channel"`
	BuyerState string  `db:"buyer_state" json:"buyer_state"`
	LedgerName string  `db:"ledger_name" json:"ledger_name"`
	ApprovedBy string  `db:"approved_by" json:"approved_by"`
}

// ApprovalRequest is a pending master-data decision.
type ApprovalRequest struct {
	ID        uuid.UUID       `db:"id" json:"id"`
	Type      ApprovalType    `db:"type" json:"type"`
	Payload   json.RawMessage `db:"payload_json" json:"payload"`
	Status    ApprovalStatus  `db:"status" json:"status"`
	Approver  string          `db:"approver" json:"approver"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
	DecidedAt *time.Time      `db:"decided_at" json:"decided_at"`
}

// ItemApprovalPayload is the suggested mapping carried by an item request.
type ItemApprovalPayload struct {
	SKU              string          `json:"sku"`
	ASIN             string          `json:"asin"`
	SuggestedFG      string          `json:"suggested_fg"`
	SuggestedGSTRate decimal.Decimal `json:"suggested_gst_rate"`
}

// LedgerApprovalPayload is the suggested mapping carried by a ledger request.
type LedgerApprovalPayload struct {
	Channel             Channel `json:"channel"`
	BuyerState          string  `json:"buyer_state"`
	SuggestedLedgerName string  `json:"suggested_ledger_name"`
}

// InvoiceSequence is the durable counter backing invoice numbering.
// NextValue is the next unallocated sequence number.
type InvoiceSequence struct {
	GSTIN      string  `db:"gstin" json:"gstin"`
	Channel    Channel `db:"channel" json:"channel"`
	BuyerState string  `db:"buyer_state" json:"buyer_state"`
	Month      string  `db:"month" json:"month"`
	NextValue  int64   `db:"next_value" json:"next_value"`
}

// TaxComputation is the persisted per-row tax split, for audit.
type TaxComputation struct {
	ID           uuid.UUID       `db:"id" json:"id"`
	RunID        uuid.UUID       `db:"run_id" json:"run_id"`
	RowRef       int             `db:"row_ref" json:"row_ref"`
	TaxableValue decimal.Decimal `db:"taxable_value" json:"taxable_value"`
	CGST         decimal.Decimal `db:"cgst" json:"cgst"`
	SGST         decimal.Decimal `db:"sgst" json:"sgst"`
	IGST         decimal.Decimal `db:"igst" json:"igst"`
	TotalTax     decimal.Decimal `db:"total_tax" json:"total_tax"`
	TotalAmount  decimal.Decimal `db:"total_amount" json:"total_amount"`
}

// InvoiceRegistryEntry records an allocated invoice number.
type InvoiceRegistryEntry struct {
	InvoiceNo      string    `db:"invoice_no" json:"invoice_no"`
	RunID          uuid.UUID `db:"run_id" json:"run_id"`
	GSTIN          string    `db:"gstin" json:"gstin"`
	Channel        Channel   `db:"channel" json:"channel"`
	BuyerState     string    `db:"buyer_state" json:"buyer_state"`
	Month          string    `db:"month" json:"month"`
	SequenceNumber int64     `db:"sequence_number" json:"sequence_number"`
	RowRef         int       `db:"row_ref" json:"row_ref"`
}

// PivotSummary is the persisted copy of one pivot row.
type PivotSummary struct {
	ID            uuid.UUID       `db:"id" json:"id"`
	RunID         uuid.UUID       `db:"run_id" json:"run_id"`
	GSTIN         string          `db:"gstin" json:"gstin"`
	Month         string          `db:"month" json:"month"`
	GSTRate       decimal.Decimal `db:"gst_rate" json:"gst_rate"`
	LedgerName    string          `db:"ledger_name" json:"ledger_name"`
	FG            string          `db:"fg" json:"fg"`
	BuyerState    *string         `db:"buyer_state" json:"buyer_state"`
	TotalQuantity int64           `db:"total_quantity" json:"total_quantity"`
	TotalTaxable  decimal.Decimal `db:"total_taxable" json:"total_taxable"`
	TotalCGST     decimal.Decimal `db:"total_cgst" json:"total_cgst"`
	TotalSGST     decimal.Decimal `db:"total_sgst" json:"total_sgst"`
	TotalIGST     decimal.Decimal `db:"total_igst" json:"total_igst"`
}

// BatchRecord registers one GST-rate batch artifact.
type BatchRecord struct {
	ID          uuid.UUID       `db:"id" json:"id"`
	RunID       uuid.UUID       `db:"run_id" json:"run_id"`
	Channel     Channel         `db:"channel" json:"channel"`
	GSTIN       string          `db:"gstin" json:"gstin"`
	Month       string          `db:"month" json:"month"`
	GSTRate     decimal.Decimal `db:"gst_rate" json:"gst_rate"`
	FilePath    string          `db:"file_path" json:"file_path"`
	RecordCount int             `db:"record_count" json:"record_count"`
}

// TallyExport records one sales voucher workbook export.
type TallyExport struct {
	ID           uuid.UUID       `db:"id" json:"id"`
	RunID        uuid.UUID       `db:"run_id" json:"run_id"`
	Channel      Channel         `db:"channel" json:"channel"`
	GSTIN        string          `db:"gstin" json:"gstin"`
	Month        string          `db:"month" json:"month"`
	GSTRate      decimal.Decimal `db:"gst_rate" json:"gst_rate"`
	TemplateName string          `db:"template_name" json:"template_name"`
	FilePath     string          `db:"file_path" json:"file_path"`
	FileSize     int64           `db:"file_size" json:"file_size"`
	RecordCount  int             `db:"record_count" json:"record_count"`
	TotalTaxable decimal.Decimal `db:"total_taxable" json:"total_taxable"`
	TotalTax     decimal.Decimal `db:"total_tax" json:"total_tax"`
	ExportStatus ExportStatus    `db:"export_status" json:"export_status"`
}

// SellerInvoice is one fee line item parsed from a seller fee statement.
type SellerInvoice struct {
	ID               uuid.UUID       `db:"id" json:"id"`
	RunID            uuid.UUID       `db:"run_id" json:"run_id"`
	Channel          Channel         `db:"channel" json:"channel"`
	GSTIN            string          `db:"gstin" json:"gstin"`
	VendorInvoiceNo  string          `db:"vendor_invoice_no" json:"vendor_invoice_no"`
	InvoiceDate      time.Time       `db:"invoice_date" json:"invoice_date"`
	ExpenseType      string          `db:"expense_type" json:"expense_type"`
	TaxableValue     decimal.Decimal `db:"taxable_value" json:"taxable_value"`
	GSTRate          decimal.Decimal `db:"gst_rate" json:"gst_rate"`
	CGST             decimal.Decimal `db:"cgst" json:"cgst"`
	SGST             decimal.Decimal `db:"sgst" json:"sgst"`
	IGST             decimal.Decimal `db:"igst" json:"igst"`
	TotalValue       decimal.Decimal `db:"total_value" json:"total_value"`
	LedgerName       string          `db:"ledger_name" json:"ledger_name"`
	SourceFile       string          `db:"source_file" json:"source_file"`
	ProcessingStatus string          `db:"processing_status" json:"processing_status"`
}

// ExpenseExport records one expense voucher workbook export.
type ExpenseExport struct {
	ID           uuid.UUID       `db:"id" json:"id"`
	RunID        uuid.UUID       `db:"run_id" json:"run_id"`
	Channel      Channel         `db:"channel" json:"channel"`
	GSTIN        string          `db:"gstin" json:"gstin"`
	Month        string          `db:"month" json:"month"`
	FilePath     string          `db:"file_path" json:"file_path"`
	RecordCount  int             `db:"record_count" json:"record_count"`
	TotalTaxable decimal.Decimal `db:"total_taxable" json:"total_taxable"`
	TotalTax     decimal.Decimal `db:"total_tax" json:"total_tax"`
	ExportStatus ExportStatus    `db:"export_status" json:"export_status"`
}

// RunException is a recovered per-row problem accumulated on a run summary.
type RunException struct {
	Stage         Stage     `json:"stage"`
	Kind          ErrorKind `json:"kind"`
	Count         int       `json:"count"`
	SampleMessage string    `json:"sample_message"`
}
