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

type runRepo struct {
	db *sqlx.DB
}

// NewRunRepo creates a new PostgreSQL-backed RunRepository.
func NewRunRepo(db *sqlx.DB) port.RunRepository {
	return &runRepo{db: db}
}

func (r *runRepo) Create(ctx context.Context, run *domain.Run) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO runs (run_id, channel, gstin, month, status, input_hash, started_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		run.ID, run.Channel, run.GSTIN, run.Month, run.Status, run.InputHash, run.StartedAt)
	if err != nil {
		return fmt.Errorf("runRepo.Create: %w", err)
	}
	return nil
}

func (r *runRepo) GetByID(ctx context.Context, runID uuid.UUID) (*domain.Run, error) {
	var run domain.Run
	err := r.db.GetContext(ctx, &run, "SELECT * FROM runs WHERE run_id = $1", runID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("runRepo.GetByID: %w", err)
	}
	return &run, nil
}

func (r *runRepo) FindCompleted(ctx context.Context, gstin string, channel domain.Channel, month, inputHash string) (*domain.Run, error) {
	var run domain.Run
	err := r.db.GetContext(ctx, &run,
		`SELECT * FROM runs
		 WHERE gstin = $1 AND channel = $2 AND month = $3 AND input_hash = $4 AND status = $5
		 ORDER BY started_at DESC LIMIT 1`,
		gstin, channel, month, inputHash, domain.RunStatusSuccess)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("runRepo.FindCompleted: %w", err)
	}
	return &run, nil
}

func (r *runRepo) SetTerminalStatus(ctx context.Context, runID uuid.UUID, status domain.RunStatus) error {
	if !status.Terminal() {
		return fmt.Errorf("runRepo.SetTerminalStatus: %s is not terminal", status)
	}
	result, err := r.db.ExecContext(ctx,
		`UPDATE runs SET status = $1, finished_at = $2
		 WHERE run_id = $3 AND status = $4`,
		status, time.Now().UTC(), runID, domain.RunStatusRunning)
	if err != nil {
		return fmt.Errorf("runRepo.SetTerminalStatus: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("runRepo.SetTerminalStatus: run %s is not running", runID)
	}
	return nil
}
