package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"tallyflow/internal/domain"
)

// MockMasterRepo is a mock implementation of port.MasterRepository.
type MockMasterRepo struct {
	mock.Mock
}

func (m *MockMasterRepo) UpsertItem(ctx context.Context, item *domain.ItemMaster) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockMasterRepo) UpsertLedger(ctx context.Context, ledger *domain.LedgerMaster) error {
	args := m.Called(ctx, ledger)
	return args.Error(0)
}

func (m *MockMasterRepo) SnapshotItems(ctx context.Context) ([]domain.ItemMaster, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ItemMaster), args.Error(1)
}

func (m *MockMasterRepo) SnapshotLedgers(ctx context.Context) ([]domain.LedgerMaster, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.LedgerMaster), args.Error(1)
}
