package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"tallyflow/internal/domain"
	"tallyflow/internal/port"
)

type sequenceRepo struct {
	db *sqlx.DB
}

// NewSequenceRepo creates a new PostgreSQL-backed SequenceRepository.
func NewSequenceRepo(db *sqlx.DB) port.SequenceRepository {
	return &sequenceRepo{db: db}
}

func (r *sequenceRepo) NextValue(ctx context.Context, key domain.InvoiceSequence) (int64, error) {
	var next int64
	err := r.db.GetContext(ctx, &next,
		`SELECT next_value FROM invoice_sequences
		 WHERE gstin = $1 AND channel = $2 AND buyer_state = $3 AND month = $4`,
		key.GSTIN, key.Channel, key.BuyerState, key.Month)
	if errors.Is(err, sql.ErrNoRows) {
		return 1, nil
	}
	if err != nil {
		return 0, fmt.Errorf("sequenceRepo.NextValue: %w", err)
	}
	return next, nil
}

// Commit advances the counter with a compare-and-swap. A lost race with
// a concurrent run surfaces as ErrInvoiceSequenceConflict so the caller
// re-reads and re-numbers.
func (r *sequenceRepo) Commit(ctx context.Context, key domain.InvoiceSequence, expected, next int64) error {
	if expected == 1 {
		_, err := r.db.ExecContext(ctx,
			`INSERT INTO invoice_sequences (gstin, channel, buyer_state, month, next_value)
			 VALUES ($1, $2, $3, $4, $5)
			 ON CONFLICT (gstin, channel, buyer_state, month) DO NOTHING`,
			key.GSTIN, key.Channel, key.BuyerState, key.Month, next)
		if err != nil {
			return fmt.Errorf("sequenceRepo.Commit: %w", err)
		}
	}

	result, err := r.db.ExecContext(ctx,
		`UPDATE invoice_sequences SET next_value = $1
		 WHERE gstin = $2 AND channel = $3 AND buyer_state = $4 AND month = $5
		   AND next_value = $6`,
		next, key.GSTIN, key.Channel, key.BuyerState, key.Month, expected)
	if err != nil {
		return fmt.Errorf("sequenceRepo.Commit: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		// Either the insert above won the race (counter already at next)
		// or another run advanced it first.
		var current int64
		err := r.db.GetContext(ctx, &current,
			`SELECT next_value FROM invoice_sequences
			 WHERE gstin = $1 AND channel = $2 AND buyer_state = $3 AND month = $4`,
			key.GSTIN, key.Channel, key.BuyerState, key.Month)
		if err == nil && current == next {
			return nil
		}
		return domain.ErrInvoiceSequenceConflict
	}
	return nil
}
