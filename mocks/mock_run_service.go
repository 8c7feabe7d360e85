package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"tallyflow/internal/domain"
	"tallyflow/internal/pipeline"
	"tallyflow/internal/service"
)

// MockRunService is a mock implementation of service.RunService.
type MockRunService struct {
	mock.Mock
}

func (m *MockRunService) StartRun(ctx context.Context, req pipeline.Request) (*pipeline.Summary, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pipeline.Summary), args.Error(1)
}

func (m *MockRunService) StartRunAsync(ctx context.Context, req pipeline.Request) (uuid.UUID, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *MockRunService) GetRun(ctx context.Context, runID uuid.UUID) (*domain.Run, error) {
	args := m.Called(ctx, runID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Run), args.Error(1)
}

func (m *MockRunService) ListArtifacts(ctx context.Context, runID uuid.UUID) ([]domain.ReportArtifact, error) {
	args := m.Called(ctx, runID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ReportArtifact), args.Error(1)
}

func (m *MockRunService) ListExports(ctx context.Context, gstin, month string) (*service.ExportsView, error) {
	args := m.Called(ctx, gstin, month)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ExportsView), args.Error(1)
}
