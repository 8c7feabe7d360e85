package domain

// Channel identifies the marketplace report source feeding a run.
type Channel string

const (
	ChannelAmazonMTR Channel = "amazon_mtr"
	ChannelAmazonSTR Channel = "amazon_str"
	ChannelFlipkart  Channel = "flipkart"
	ChannelPepperfry Channel = "pepperfry"
)

// ReportType identifies the raw input format of a run.
type ReportType string

const (
	ReportTypeSalesMTR       ReportType = "sales_mtr"
	ReportTypeSettlementSTR  ReportType = "settlement_str"
	ReportTypeFlipkartSales  ReportType = "flipkart_sales"
	ReportTypePepperfrySales ReportType = "pepperfry_sales"
	ReportTypeSellerInvoice  ReportType = "seller_invoice"
)

// ChannelForReportType maps a report type to the channel it belongs to.
var ChannelForReportType = map[ReportType]Channel{
	ReportTypeSalesMTR:       ChannelAmazonMTR,
	ReportTypeSettlementSTR:  ChannelAmazonSTR,
	ReportTypeFlipkartSales:  ChannelFlipkart,
	ReportTypePepperfrySales: ChannelPepperfry,
}

// RunStatus represents the lifecycle of a pipeline run.
type RunStatus string

const (
	RunStatusRunning RunStatus = "running"
	RunStatusSuccess RunStatus = "success"
	RunStatusFailed  RunStatus = "failed"
	RunStatusPartial RunStatus = "partial"
)

// Terminal reports whether the status is a terminal state.
func (s RunStatus) Terminal() bool {
	return s == RunStatusSuccess || s == RunStatusFailed || s == RunStatusPartial
}

// ArtifactRole tags a report artifact with the stage that produced it.
type ArtifactRole string

const (
	RoleRaw        ArtifactRole = "raw"
	RoleNormalized ArtifactRole = "normalized"
	RoleEnriched   ArtifactRole = "enriched"
	RoleWithTax    ArtifactRole = "with_tax"
	RolePivot      ArtifactRole = "pivot"
	RoleBatch      ArtifactRole = "batch"
	RoleVoucher    ArtifactRole = "voucher"
	RoleFinal      ArtifactRole = "final"
)

// ApprovalType distinguishes the two kinds of master-data approvals.
type ApprovalType string

const (
	ApprovalTypeItem   ApprovalType = "item"
	ApprovalTypeLedger ApprovalType = "ledger"
)

// ApprovalStatus represents the lifecycle of an approval request.
type ApprovalStatus string

const (
	ApprovalStatusPending  ApprovalStatus = "pending"
	ApprovalStatusApproved ApprovalStatus = "approved"
	ApprovalStatusRejected ApprovalStatus = "rejected"
)

// ExportStatus represents the outcome of a workbook export.
type ExportStatus string

const (
	ExportStatusSuccess ExportStatus = "success"
	ExportStatusFailed  ExportStatus = "failed"
)

// Stage names the pipeline stages in execution order.
type Stage string

const (
	StageNormalize Stage = "normalize"
	StageResolve   Stage = "resolve"
	StageTax       Stage = "tax_invoice"
	StagePivot     Stage = "pivot"
	StageBatch     Stage = "batch"
	StageVoucher   Stage = "voucher"
	StageExpense   Stage = "expense"
)

// SystemApprover is the approved_by value for mappings known a-priori.
const SystemApprover = "system"
