package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"tallyflow/internal/domain"
)

// MockApprovalRepo is a mock implementation of port.ApprovalRepository.
type MockApprovalRepo struct {
	mock.Mock
}

func (m *MockApprovalRepo) Create(ctx context.Context, req *domain.ApprovalRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

func (m *MockApprovalRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.ApprovalRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ApprovalRequest), args.Error(1)
}

func (m *MockApprovalRepo) List(ctx context.Context, status domain.ApprovalStatus, typ domain.ApprovalType) ([]domain.ApprovalRequest, error) {
	args := m.Called(ctx, status, typ)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ApprovalRequest), args.Error(1)
}

func (m *MockApprovalRepo) FindPending(ctx context.Context, typ domain.ApprovalType, payload []byte) (*domain.ApprovalRequest, error) {
	args := m.Called(ctx, typ, payload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ApprovalRequest), args.Error(1)
}

func (m *MockApprovalRepo) MarkDecided(ctx context.Context, id uuid.UUID, status domain.ApprovalStatus, approver string) error {
	args := m.Called(ctx, id, status, approver)
	return args.Error(0)
}
