package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"tallyflow/internal/approval"
	"tallyflow/internal/domain"
	"tallyflow/internal/middleware"
)

// ApprovalHandler serves the master-data approval queue endpoints.
type ApprovalHandler struct {
	svc approval.Service
}

// NewApprovalHandler creates a new ApprovalHandler.
func NewApprovalHandler(svc approval.Service) *ApprovalHandler {
	return &ApprovalHandler{svc: svc}
}

// List returns approval requests, optionally filtered by status and type.
func (h *ApprovalHandler) List(c *gin.Context) {
	status := domain.ApprovalStatus(c.Query("status"))
	typ := domain.ApprovalType(c.Query("type"))

	reqs, err := h.svc.List(c.Request.Context(), status, typ)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, reqs)
}

type decideRequest struct {
	Status    string          `json:"status" binding:"required"`
	Overrides json.RawMessage `json:"overrides"`
}

// Decide approves or rejects one request. Approval upserts the master
// table, with optional field overrides over the suggested payload.
func (h *ApprovalHandler) Decide(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_APPROVAL_ID", "approval id must be a UUID")
		return
	}
	var req decideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}
	status, ok := parseDecision(req.Status)
	if !ok {
		RespondError(c, http.StatusBadRequest, "INVALID_STATUS", "status must be approved or rejected")
		return
	}

	if err := h.svc.Decide(c.Request.Context(), id, status, middleware.GetApprover(c), req.Overrides); err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, gin.H{"id": id, "status": status})
}

type bulkDecideRequest struct {
	IDs    []uuid.UUID `json:"ids" binding:"required"`
	Status string      `json:"status" binding:"required"`
}

// BulkDecide applies one decision to many requests.
func (h *ApprovalHandler) BulkDecide(c *gin.Context) {
	var req bulkDecideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}
	status, ok := parseDecision(req.Status)
	if !ok {
		RespondError(c, http.StatusBadRequest, "INVALID_STATUS", "status must be approved or rejected")
		return
	}

	if err := h.svc.BulkDecide(c.Request.Context(), req.IDs, status, middleware.GetApprover(c)); err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, gin.H{"decided": len(req.IDs), "status": status})
}

func parseDecision(s string) (domain.ApprovalStatus, bool) {
	switch domain.ApprovalStatus(s) {
	case domain.ApprovalStatusApproved:
		return domain.ApprovalStatusApproved, true
	case domain.ApprovalStatusRejected:
		return domain.ApprovalStatusRejected, true
	default:
		return "", false
	}
}
