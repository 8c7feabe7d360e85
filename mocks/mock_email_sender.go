package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockEmailSender is a mock implementation of port.EmailSender.
type MockEmailSender struct {
	mock.Mock
}

func (m *MockEmailSender) SendApprovalDigest(ctx context.Context, toEmail string, pendingItems, pendingLedgers int) error {
	args := m.Called(ctx, toEmail, pendingItems, pendingLedgers)
	return args.Error(0)
}
