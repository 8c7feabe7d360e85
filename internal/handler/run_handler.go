package handler

import (
	"net/http"
	"regexp"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"tallyflow/internal/domain"
	"tallyflow/internal/middleware"
	"tallyflow/internal/pipeline"
	"tallyflow/internal/service"
)

// RunHandler serves the pipeline run endpoints.
type RunHandler struct {
	svc service.RunService
}

// NewRunHandler creates a new RunHandler.
func NewRunHandler(svc service.RunService) *RunHandler {
	return &RunHandler{svc: svc}
}

type createRunRequest struct {
	Channel     string `json:"channel"`
	GSTIN       string `json:"gstin" binding:"required"`
	Month       string `json:"month" binding:"required"`
	ReportType  string `json:"report_type" binding:"required"`
	InputPath   string `json:"input_path" binding:"required"`
	ReturnsPath string `json:"returns_path"`
	Async       bool   `json:"async"`
}

var monthRe = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)

// Create starts a run. Async requests return 202 with the run id;
// synchronous requests block and return the full run summary.
func (h *RunHandler) Create(c *gin.Context) {
	var req createRunRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}
	if !monthRe.MatchString(req.Month) {
		RespondError(c, http.StatusBadRequest, "INVALID_MONTH", "month must be YYYY-MM")
		return
	}

	reportType := domain.ReportType(req.ReportType)
	channel, ok := domain.ChannelForReportType[reportType]
	if !ok {
		// Fee statements are not channel-specific by report type; the
		// caller names the marketplace being billed.
		if reportType != domain.ReportTypeSellerInvoice || req.Channel == "" {
			RespondError(c, http.StatusBadRequest, "UNKNOWN_REPORT_TYPE", "unknown report type")
			return
		}
		channel = domain.Channel(req.Channel)
	}

	preq := pipeline.Request{
		Channel:     channel,
		GSTIN:       req.GSTIN,
		Month:       req.Month,
		ReportType:  reportType,
		InputPath:   req.InputPath,
		ReturnsPath: req.ReturnsPath,
		Approver:    middleware.GetApprover(c),
	}

	if req.Async {
		runID, err := h.svc.StartRunAsync(c.Request.Context(), preq)
		if err != nil {
			HandleError(c, err)
			return
		}
		RespondAccepted(c, gin.H{"run_id": runID})
		return
	}

	summary, err := h.svc.StartRun(c.Request.Context(), preq)
	if err != nil {
		// A failed run still carries its summary; surface both.
		if summary != nil {
			status, code, msg := MapDomainError(err)
			c.JSON(status, APIResponse{
				Success: false,
				Data:    summary,
				Error:   &APIError{Code: code, Message: msg},
			})
			return
		}
		HandleError(c, err)
		return
	}
	RespondOK(c, summary)
}

// Get returns one run's summary row.
func (h *RunHandler) Get(c *gin.Context) {
	runID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_RUN_ID", "run id must be a UUID")
		return
	}
	run, err := h.svc.GetRun(c.Request.Context(), runID)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, run)
}

// ListArtifacts returns the artifacts produced by one run.
func (h *RunHandler) ListArtifacts(c *gin.Context) {
	runID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_RUN_ID", "run id must be a UUID")
		return
	}
	artifacts, err := h.svc.ListArtifacts(c.Request.Context(), runID)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, artifacts)
}

// ListExports returns tally and expense export records for a period.
func (h *RunHandler) ListExports(c *gin.Context) {
	gstin := c.Query("gstin")
	month := c.Query("month")
	if gstin == "" || month == "" {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "gstin and month query parameters are required")
		return
	}
	view, err := h.svc.ListExports(c.Request.Context(), gstin, month)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, view)
}
