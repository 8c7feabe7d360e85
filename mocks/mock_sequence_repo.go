package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"tallyflow/internal/domain"
)

// MockSequenceRepo is a mock implementation of port.SequenceRepository.
type MockSequenceRepo struct {
	mock.Mock
}

func (m *MockSequenceRepo) NextValue(ctx context.Context, key domain.InvoiceSequence) (int64, error) {
	args := m.Called(ctx, key)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockSequenceRepo) Commit(ctx context.Context, key domain.InvoiceSequence, expected, next int64) error {
	args := m.Called(ctx, key, expected, next)
	return args.Error(0)
}
