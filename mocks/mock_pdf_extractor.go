package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockPDFExtractor is a mock implementation of port.PDFExtractor.
type MockPDFExtractor struct {
	mock.Mock
}

func (m *MockPDFExtractor) ExtractText(ctx context.Context, path string) (string, error) {
	args := m.Called(ctx, path)
	return args.String(0), args.Error(1)
}
