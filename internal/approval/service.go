// Package approval implements the append-only master-data approval queue.
// Requests are created by resolvers on a miss and decided by humans;
// approvals upsert the corresponding master table idempotently.
package approval

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"tallyflow/internal/domain"
	"tallyflow/internal/port"
)

// Service manages approval requests and applies decisions to the masters.
type Service interface {
	EnqueueItem(ctx context.Context, payload domain.ItemApprovalPayload) (*domain.ApprovalRequest, error)
	EnqueueLedger(ctx context.Context, payload domain.LedgerApprovalPayload) (*domain.ApprovalRequest, error)
	List(ctx context.Context, status domain.ApprovalStatus, typ domain.ApprovalType) ([]domain.ApprovalRequest, error)
	Decide(ctx context.Context, id uuid.UUID, status domain.ApprovalStatus, approver string, overrides json.RawMessage) error
	BulkDecide(ctx context.Context, ids []uuid.UUID, status domain.ApprovalStatus, approver string) error
	NotifyPending(ctx context.Context, toEmail string) error
}

type service struct {
	approvals port.ApprovalRepository
	masters   port.MasterRepository
	email     port.EmailSender
}

// NewService creates the approval queue service.
func NewService(approvals port.ApprovalRepository, masters port.MasterRepository, email port.EmailSender) Service {
	return &service{approvals: approvals, masters: masters, email: email}
}

func (s *service) EnqueueItem(ctx context.Context, payload domain.ItemApprovalPayload) (*domain.ApprovalRequest, error) {
	return s.enqueue(ctx, domain.ApprovalTypeItem, payload)
}

func (s *service) EnqueueLedger(ctx context.Context, payload domain.LedgerApprovalPayload) (*domain.ApprovalRequest, error) {
	return s.enqueue(ctx, domain.ApprovalTypeLedger, payload)
}

// enqueue deduplicates against pending requests with an identical payload.
func (s *service) enqueue(ctx context.Context, typ domain.ApprovalType, payload any) (*domain.ApprovalRequest, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("approval.enqueue: %w", err)
	}
	if existing, err := s.approvals.FindPending(ctx, typ, raw); err == nil {
		return existing, nil
	}

	req := &domain.ApprovalRequest{
		ID:        uuid.New(),
		Type:      typ,
		Payload:   raw,
		Status:    domain.ApprovalStatusPending,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.approvals.Create(ctx, req); err != nil {
		return nil, fmt.Errorf("approval.enqueue: %w", err)
	}
	return req, nil
}

func (s *service) List(ctx context.Context, status domain.ApprovalStatus, typ domain.ApprovalType) ([]domain.ApprovalRequest, error) {
	return s.approvals.List(ctx, status, typ)
}

func (s *service) Decide(ctx context.Context, id uuid.UUID, status domain.ApprovalStatus, approver string, overrides json.RawMessage) error {
	req, err := s.approvals.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("approval.Decide: %w", err)
	}
	if req.Status != domain.ApprovalStatusPending {
		return domain.ErrApprovalDecided
	}

	if status == domain.ApprovalStatusApproved {
		payload, err := mergeOverrides(req.Payload, overrides)
		if err != nil {
			return fmt.Errorf("approval.Decide: %w", err)
		}
		if err := s.applyToMasters(ctx, req.Type, payload, approver); err != nil {
			return fmt.Errorf("approval.Decide: %w", err)
		}
	}

	if err := s.approvals.MarkDecided(ctx, id, status, approver); err != nil {
		return fmt.Errorf("approval.Decide: %w", err)
	}
	return nil
}

func (s *service) BulkDecide(ctx context.Context, ids []uuid.UUID, status domain.ApprovalStatus, approver string) error {
	for _, id := range ids {
		if err := s.Decide(ctx, id, status, approver, nil); err != nil {
			return err
		}
	}
	return nil
}

// NotifyPending emails the approver a digest of pending request counts.
// A quiet queue sends nothing.
func (s *service) NotifyPending(ctx context.Context, toEmail string) error {
	if toEmail == "" || s.email == nil {
		return nil
	}
	items, err := s.approvals.List(ctx, domain.ApprovalStatusPending, domain.ApprovalTypeItem)
	if err != nil {
		return fmt.Errorf("approval.NotifyPending: %w", err)
	}
	ledgers, err := s.approvals.List(ctx, domain.ApprovalStatusPending, domain.ApprovalTypeLedger)
	if err != nil {
		return fmt.Errorf("approval.NotifyPending: %w", err)
	}
	if len(items) == 0 && len(ledgers) == 0 {
		return nil
	}
	return s.email.SendApprovalDigest(ctx, toEmail, len(items), len(ledgers))
}

// applyToMasters performs the idempotent upsert for an approved payload.
func (s *service) applyToMasters(ctx context.Context, typ domain.ApprovalType, payload []byte, approver string) error {
	switch typ {
	case domain.ApprovalTypeItem:
		var p domain.ItemApprovalPayload
		if err := json.Unmarshal(payload, &p); err != nil {
			return err
		}
		return s.masters.UpsertItem(ctx, &domain.ItemMaster{
			SKU:        p.SKU,
			ASIN:       p.ASIN,
			ItemCode:   p.SKU,
			FG:         p.SuggestedFG,
			GSTRate:    p.SuggestedGSTRate,
			ApprovedBy: approver,
		})
	case domain.ApprovalTypeLedger:
		var p domain.LedgerApprovalPayload
		if err := json.Unmarshal(payload, &p); err != nil {
			return err
		}
		return s.masters.UpsertLedger(ctx, &domain.LedgerMaster{
			Channel:    p.Channel,
			BuyerState: p.BuyerState,
			LedgerName: p.SuggestedLedgerName,
			ApprovedBy: approver,
		})
	default:
		return fmt.Errorf("unknown approval type %s", typ)
	}
}

// mergeOverrides overlays non-null override fields on the stored payload.
func mergeOverrides(payload, overrides json.RawMessage) ([]byte, error) {
	if len(overrides) == 0 {
		return payload, nil
	}
	var base, over map[string]any
	if err := json.Unmarshal(payload, &base); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(overrides, &over); err != nil {
		return nil, err
	}
	for k, v := range over {
		if v != nil {
			base[k] = v
		}
	}
	return json.Marshal(base)
}
