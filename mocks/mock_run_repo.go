package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"tallyflow/internal/domain"
)

// MockRunRepo is a mock implementation of port.RunRepository.
type MockRunRepo struct {
	mock.Mock
}

func (m *MockRunRepo) Create(ctx context.Context, run *domain.Run) error {
	args := m.Called(ctx, run)
	return args.Error(0)
}

func (m *MockRunRepo) GetByID(ctx context.Context, runID uuid.UUID) (*domain.Run, error) {
	args := m.Called(ctx, runID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Run), args.Error(1)
}

func (m *MockRunRepo) FindCompleted(ctx context.Context, gstin string, channel domain.Channel, month, inputHash string) (*domain.Run, error) {
	args := m.Called(ctx, gstin, channel, month, inputHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Run), args.Error(1)
}

func (m *MockRunRepo) SetTerminalStatus(ctx context.Context, runID uuid.UUID, status domain.RunStatus) error {
	args := m.Called(ctx, runID, status)
	return args.Error(0)
}
