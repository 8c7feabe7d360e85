package domain

import "errors"

// Sentinel errors for the pipeline error taxonomy. Handlers and the run
// coordinator classify on these with errors.Is.
var (
	ErrNotFound                = errors.New("resource not found")
	ErrSchemaMismatch          = errors.New("required column missing or unreadable header")
	ErrUnparseableRow          = errors.New("row could not be parsed")
	ErrEmptyInput              = errors.New("no data rows after header")
	ErrUnresolvedMasterData    = errors.New("finished good or ledger unresolved after resolver stage")
	ErrTaxSplitInvariant       = errors.New("tax split invariant violated")
	ErrInvoiceSequenceConflict = errors.New("invoice sequence allocation conflict")
	ErrTemplateInvalid         = errors.New("voucher template missing or malformed")
	ErrStorageUnavailable      = errors.New("object storage unavailable")
	ErrDatabaseUnavailable     = errors.New("database unavailable")
	ErrIntegrityCheckFailed    = errors.New("batch reconciliation failed")
	ErrCancelled               = errors.New("run cancelled at stage boundary")
	ErrRunConflict             = errors.New("run already exists for this input")
	ErrApprovalDecided         = errors.New("approval request already decided")
	ErrUnknownReportType       = errors.New("unknown report type")
)

// ErrorKind is the taxonomy value surfaced in run summaries.
type ErrorKind string

const (
	KindSchemaMismatch          ErrorKind = "SchemaMismatch"
	KindUnparseableRow          ErrorKind = "UnparseableRow"
	KindEmptyInput              ErrorKind = "EmptyInput"
	KindUnresolvedMasterData    ErrorKind = "UnresolvedMasterData"
	KindTaxSplitInvariant       ErrorKind = "TaxSplitInvariant"
	KindInvoiceSequenceConflict ErrorKind = "InvoiceSequenceConflict"
	KindTemplateInvalid         ErrorKind = "TemplateInvalid"
	KindStorageUnavailable      ErrorKind = "StorageUnavailable"
	KindDatabaseUnavailable     ErrorKind = "DatabaseUnavailable"
	KindIntegrityCheckFailed    ErrorKind = "IntegrityCheckFailed"
	KindCancelled               ErrorKind = "Cancelled"
	KindInternal                ErrorKind = "Internal"
)

// KindOf classifies an error into its taxonomy value.
func KindOf(err error) ErrorKind {
	switch {
	case errors.Is(err, ErrSchemaMismatch):
		return KindSchemaMismatch
	case errors.Is(err, ErrUnparseableRow):
		return KindUnparseableRow
	case errors.Is(err, ErrEmptyInput):
		return KindEmptyInput
	case errors.Is(err, ErrUnresolvedMasterData):
		return KindUnresolvedMasterData
	case errors.Is(err, ErrTaxSplitInvariant):
		return KindTaxSplitInvariant
	case errors.Is(err, ErrInvoiceSequenceConflict):
		return KindInvoiceSequenceConflict
	case errors.Is(err, ErrTemplateInvalid):
		return KindTemplateInvalid
	case errors.Is(err, ErrStorageUnavailable):
		return KindStorageUnavailable
	case errors.Is(err, ErrDatabaseUnavailable):
		return KindDatabaseUnavailable
	case errors.Is(err, ErrIntegrityCheckFailed):
		return KindIntegrityCheckFailed
	case errors.Is(err, ErrCancelled):
		return KindCancelled
	default:
		return KindInternal
	}
}

// Transient reports whether an error kind should be retried with backoff.
func Transient(err error) bool {
	return errors.Is(err, ErrStorageUnavailable) ||
		errors.Is(err, ErrDatabaseUnavailable) ||
		errors.Is(err, ErrInvoiceSequenceConflict)
}
