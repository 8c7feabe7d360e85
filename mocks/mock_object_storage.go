package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockObjectStorage is a mock implementation of port.ObjectStorage.
type MockObjectStorage struct {
	mock.Mock
}

func (m *MockObjectStorage) Put(ctx context.Context, localPath, logicalPath string) (string, error) {
	args := m.Called(ctx, localPath, logicalPath)
	return args.String(0), args.Error(1)
}

func (m *MockObjectStorage) Get(ctx context.Context, logicalPath string) (string, error) {
	args := m.Called(ctx, logicalPath)
	return args.String(0), args.Error(1)
}

func (m *MockObjectStorage) Exists(ctx context.Context, logicalPath string) (bool, error) {
	args := m.Called(ctx, logicalPath)
	return args.Bool(0), args.Error(1)
}
