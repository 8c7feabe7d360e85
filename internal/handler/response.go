package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"tallyflow/internal/domain"
)

// APIResponse is the standard envelope for all API responses.
type APIResponse struct {
	Success bool      `json:"success"`
	Data    any       `json:"data,omitempty"`
	Error   *APIError `json:"error,omitempty"`
}

// APIError holds error details in the response.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// RespondOK sends a 200 success response.
func RespondOK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: data})
}

// RespondAccepted sends a 202 success response.
func RespondAccepted(c *gin.Context, data any) {
	c.JSON(http.StatusAccepted, APIResponse{Success: true, Data: data})
}

// RespondError sends an error response with the given status code.
func RespondError(c *gin.Context, status int, code, msg string) {
	c.JSON(status, APIResponse{
		Success: false,
		Error:   &APIError{Code: code, Message: msg},
	})
}

// MapDomainError translates domain errors to HTTP status codes and error codes.
func MapDomainError(err error) (status int, code, msg string) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "NOT_FOUND", "resource not found"
	case errors.Is(err, domain.ErrUnknownReportType):
		return http.StatusBadRequest, "UNKNOWN_REPORT_TYPE", "unknown report type"
	case errors.Is(err, domain.ErrSchemaMismatch):
		return http.StatusUnprocessableEntity, "SCHEMA_MISMATCH", "required column missing or unreadable header"
	case errors.Is(err, domain.ErrEmptyInput):
		return http.StatusUnprocessableEntity, "EMPTY_INPUT", "no data rows after header"
	case errors.Is(err, domain.ErrUnresolvedMasterData):
		return http.StatusConflict, "UNRESOLVED_MASTER_DATA", "mappings pending approval; decide them and re-run"
	case errors.Is(err, domain.ErrTaxSplitInvariant):
		return http.StatusUnprocessableEntity, "TAX_SPLIT_INVARIANT", "tax split invariant violated"
	case errors.Is(err, domain.ErrInvoiceSequenceConflict):
		return http.StatusConflict, "SEQUENCE_CONFLICT", "invoice sequence allocation conflict; retry the run"
	case errors.Is(err, domain.ErrTemplateInvalid):
		return http.StatusUnprocessableEntity, "TEMPLATE_INVALID", "voucher template missing or malformed"
	case errors.Is(err, domain.ErrIntegrityCheckFailed):
		return http.StatusUnprocessableEntity, "INTEGRITY_CHECK_FAILED", "batch reconciliation failed"
	case errors.Is(err, domain.ErrApprovalDecided):
		return http.StatusConflict, "APPROVAL_DECIDED", "approval request already decided"
	case errors.Is(err, domain.ErrRunConflict):
		return http.StatusConflict, "RUN_CONFLICT", "run already exists for this input"
	case errors.Is(err, domain.ErrCancelled):
		return http.StatusRequestTimeout, "CANCELLED", "run cancelled at stage boundary"
	case errors.Is(err, domain.ErrStorageUnavailable):
		return http.StatusServiceUnavailable, "STORAGE_UNAVAILABLE", "object storage unavailable"
	case errors.Is(err, domain.ErrDatabaseUnavailable):
		return http.StatusServiceUnavailable, "DATABASE_UNAVAILABLE", "database unavailable"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR", "an internal error occurred"
	}
}

// HandleError maps a domain error and sends the appropriate error response.
func HandleError(c *gin.Context, err error) {
	status, code, msg := MapDomainError(err)
	if status >= 500 {
		requestID, _ := c.Get("request_id")
		log.Printf("[%s] internal error: %v", requestID, err)
	}
	RespondError(c, status, code, msg)
}
