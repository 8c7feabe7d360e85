package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"tallyflow/internal/domain"
	"tallyflow/internal/port"
)

type masterRepo struct {
	db *sqlx.DB
}

// NewMasterRepo creates a new PostgreSQL-backed MasterRepository.
func NewMasterRepo(db *sqlx.DB) port.MasterRepository {
	return &masterRepo{db: db}
}

func (r *masterRepo) UpsertItem(ctx context.Context, item *domain.ItemMaster) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO item_master (sku, asin, item_code, fg, gst_rate, approved_by)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (sku, asin) DO UPDATE
		 SET item_code = EXCLUDED.item_code, fg = EXCLUDED.fg,
		     gst_rate = EXCLUDED.gst_rate, approved_by = EXCLUDED.approved_by`,
		item.SKU, item.ASIN, item.ItemCode, item.FG, item.GSTRate, item.ApprovedBy)
	if err != nil {
		return fmt.Errorf("masterRepo.UpsertItem: %w", err)
	}
	return nil
}

func (r *masterRepo) UpsertLedger(ctx context.Context, ledger *domain.LedgerMaster) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO ledger_master (channel, buyer_state, ledger_name, approved_by)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (channel, buyer_state) DO UPDATE
		 SET ledger_name = EXCLUDED.ledger_name, approved_by = EXCLUDED.approved_by`,
		ledger.Channel, ledger.BuyerState, ledger.LedgerName, ledger.ApprovedBy)
	if err != nil {
		return fmt.Errorf("masterRepo.UpsertLedger: %w", err)
	}
	return nil
}

func (r *masterRepo) SnapshotItems(ctx context.Context) ([]domain.ItemMaster, error) {
	var items []domain.ItemMaster
	err := r.db.SelectContext(ctx, &items, "SELECT * FROM item_master ORDER BY sku, asin")
	if err != nil {
		return nil, fmt.Errorf("masterRepo.SnapshotItems: %w", err)
	}
	return items, nil
}

func (r *masterRepo) SnapshotLedgers(ctx context.Context) ([]domain.LedgerMaster, error) {
	var ledgers []domain.LedgerMaster
	err := r.db.SelectContext(ctx, &ledgers, "SELECT * FROM ledger_master ORDER BY channel, buyer_state")
	if err != nil {
		return nil, fmt.Errorf("masterRepo.SnapshotLedgers: %w", err)
	}
	return ledgers, nil
}
