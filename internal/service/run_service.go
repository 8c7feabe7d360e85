// Package service exposes the application's use cases to the HTTP layer.
package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"tallyflow/internal/domain"
	"tallyflow/internal/pipeline"
	"tallyflow/internal/port"
)

// ExportsView groups the export records for one (gstin, month).
type ExportsView struct {
	TallyExports   []domain.TallyExport   `json:"tally_exports"`
	ExpenseExports []domain.ExpenseExport `json:"expense_exports"`
}

// RunService drives pipeline runs and run-scoped queries.
type RunService interface {
	// StartRun executes the pipeline synchronously.
	StartRun(ctx context.Context, req pipeline.Request) (*pipeline.Summary, error)
	// StartRunAsync queues the run on the dispatcher and returns its id.
	StartRunAsync(ctx context.Context, req pipeline.Request) (uuid.UUID, error)
	GetRun(ctx context.Context, runID uuid.UUID) (*domain.Run, error)
	ListArtifacts(ctx context.Context, runID uuid.UUID) ([]domain.ReportArtifact, error)
	ListExports(ctx context.Context, gstin, month string) (*ExportsView, error)
}

type runService struct {
	coordinator *pipeline.Coordinator
	dispatcher  *RunDispatcher
	runs        port.RunRepository
	artifacts   port.ArtifactRepository
	exports     port.ExportRepository
}

// NewRunService creates the run service.
func NewRunService(coordinator *pipeline.Coordinator, dispatcher *RunDispatcher,
	runs port.RunRepository, artifacts port.ArtifactRepository, exports port.ExportRepository) RunService {
	return &runService{
		coordinator: coordinator,
		dispatcher:  dispatcher,
		runs:        runs,
		artifacts:   artifacts,
		exports:     exports,
	}
}

func (s *runService) StartRun(ctx context.Context, req pipeline.Request) (*pipeline.Summary, error) {
	return s.coordinator.Execute(ctx, req)
}

func (s *runService) StartRunAsync(ctx context.Context, req pipeline.Request) (uuid.UUID, error) {
	if s.dispatcher == nil {
		return uuid.Nil, fmt.Errorf("runService.StartRunAsync: no dispatcher configured")
	}
	req.RunID = uuid.New()
	if err := s.dispatcher.Dispatch(ctx, req); err != nil {
		return uuid.Nil, fmt.Errorf("runService.StartRunAsync: %w", err)
	}
	return req.RunID, nil
}

func (s *runService) GetRun(ctx context.Context, runID uuid.UUID) (*domain.Run, error) {
	return s.runs.GetByID(ctx, runID)
}

func (s *runService) ListArtifacts(ctx context.Context, runID uuid.UUID) ([]domain.ReportArtifact, error) {
	if _, err := s.runs.GetByID(ctx, runID); err != nil {
		return nil, err
	}
	return s.artifacts.ListByRun(ctx, runID)
}

func (s *runService) ListExports(ctx context.Context, gstin, month string) (*ExportsView, error) {
	tally, err := s.exports.ListTallyExports(ctx, gstin, month)
	if err != nil {
		return nil, err
	}
	expenses, err := s.exports.ListExpenseExports(ctx, gstin, month)
	if err != nil {
		return nil, err
	}
	return &ExportsView{TallyExports: tally, ExpenseExports: expenses}, nil
}
