package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"tallyflow/internal/domain"
	"tallyflow/internal/port"
)

type approvalRepo struct {
	db *sqlx.DB
}

// NewApprovalRepo creates a new PostgreSQL-backed ApprovalRepository.
func NewApprovalRepo(db *sqlx.DB) port.ApprovalRepository {
	return &approvalRepo{db: db}
}

func (r *approvalRepo) Create(ctx context.Context, req *domain.ApprovalRequest) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO approval_requests (id, type, payload_json, status, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		req.ID, req.Type, []byte(req.Payload), req.Status, req.CreatedAt)
	if err != nil {
		return fmt.Errorf("approvalRepo.Create: %w", err)
	}
	return nil
}

func (r *approvalRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.ApprovalRequest, error) {
	var req domain.ApprovalRequest
	err := r.db.GetContext(ctx, &req, "SELECT * FROM approval_requests WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("approvalRepo.GetByID: %w", err)
	}
	return &req, nil
}

func (r *approvalRepo) List(ctx context.Context, status domain.ApprovalStatus, typ domain.ApprovalType) ([]domain.ApprovalRequest, error) {
	query := "SELECT * FROM approval_requests WHERE 1=1"
	args := []any{}
	if status != "" {
		args = append(args, status)
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if typ != "" {
		args = append(args, typ)
		query += fmt.Sprintf(" AND type = $%d", len(args))
	}
	query += " ORDER BY created_at"

	var reqs []domain.ApprovalRequest
	if err := r.db.SelectContext(ctx, &reqs, query, args...); err != nil {
		return nil, fmt.Errorf("approvalRepo.List: %w", err)
	}
	return reqs, nil
}

func (r *approvalRepo) FindPending(ctx context.Context, typ domain.ApprovalType, payload []byte) (*domain.ApprovalRequest, error) {
	var req domain.ApprovalRequest
	err := r.db.GetContext(ctx, &req,
		`SELECT * FROM approval_requests
		 WHERE type = $1 AND status = $2 AND payload_json = $3
		 LIMIT 1`,
		typ, domain.ApprovalStatusPending, payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("approvalRepo.FindPending: %w", err)
	}
	return &req, nil
}

func (r *approvalRepo) MarkDecided(ctx context.Context, id uuid.UUID, status domain.ApprovalStatus, approver string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE approval_requests
		 SET status = $1, approver = $2, decided_at = $3
		 WHERE id = $4 AND status = $5`,
		status, approver, time.Now().UTC(), id, domain.ApprovalStatusPending)
	if err != nil {
		return fmt.Errorf("approvalRepo.MarkDecided: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrApprovalDecided
	}
	return nil
}
