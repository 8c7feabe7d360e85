// Package pipeline runs the end-to-end conversion of one raw
// marketplace report into voucher workbooks, with audit records and
// artifacts persisted after every stage.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"tallyflow/internal/approval"
	"tallyflow/internal/csvexport"
	"tallyflow/internal/domain"
	"tallyflow/internal/invoice"
	"tallyflow/internal/port"
	"tallyflow/internal/template"
)

// Options is the pipeline-level configuration passed to the coordinator.
type Options struct {
	BucketPrefix   string
	StrictMapping  bool
	Overwrite      bool
	DefaultGSTRate decimal.Decimal
	WorkDir        string
	ApproverEmail  string
	StageTimeouts  map[domain.Stage]time.Duration
}

// Request describes one run invocation. RunID may be preassigned by an
// async dispatcher; the zero value generates one.
type Request struct {
	RunID       uuid.UUID
	Channel     domain.Channel
	GSTIN       string
	Month       string
	ReportType  domain.ReportType
	InputPath   string
	ReturnsPath string
	Approver    string
}

// StageResult is the captured outcome of one stage.
type StageResult struct {
	Stage     domain.Stage `json:"stage"`
	Success   bool         `json:"success"`
	Processed int          `json:"processed"`
	Error     string       `json:"error,omitempty"`
}

// Summary is what a run returns to callers, terminal or not.
type Summary struct {
	Run        *domain.Run              `json:"run"`
	Stages     []StageResult            `json:"stages"`
	Artifacts  []domain.ReportArtifact  `json:"artifacts"`
	Exceptions []domain.RunException    `json:"exceptions,omitempty"`
	ErrorKind  domain.ErrorKind         `json:"error_kind,omitempty"`
	Reused     bool                     `json:"reused,omitempty"`
}

// Deps bundles the coordinator's collaborators.
type Deps struct {
	Runs      port.RunRepository
	Artifacts port.ArtifactRepository
	Masters   port.MasterRepository
	Audit     port.AuditRepository
	Exports   port.ExportRepository
	Sequences port.SequenceRepository
	Storage   port.ObjectStorage
	Approvals approval.Service
	Templates *template.Registry
	PDF       port.PDFExtractor
	Log       *logrus.Logger
}

// Coordinator executes runs stage by stage. One coordinator serves many
// concurrent runs; per-run state lives on the stack.
type Coordinator struct {
	deps Deps
	opts Options
}

// NewCoordinator creates a run coordinator.
func NewCoordinator(deps Deps, opts Options) *Coordinator {
	if deps.Log == nil {
		deps.Log = logrus.New()
	}
	return &Coordinator{deps: deps, opts: opts}
}

const (
	retryAttempts = 3
	retryBase     = 100 * time.Millisecond
	retryCap      = 2 * time.Second
)

// Execute runs the full pipeline for one request. The summary is
// populated even when the run fails; err is non-nil only for fatal
// outcomes, carrying the taxonomy sentinel.
func (c *Coordinator) Execute(ctx context.Context, req Request) (*Summary, error) {
	inputHash, err := csvexport.HashFile(req.InputPath)
	if err != nil {
		return nil, fmt.Errorf("pipeline.Execute: %w", err)
	}

	if !c.opts.Overwrite {
		if prior, err := c.deps.Runs.FindCompleted(ctx, req.GSTIN, req.Channel, req.Month, inputHash); err == nil {
			arts, err := c.deps.Artifacts.ListByRun(ctx, prior.ID)
			if err != nil {
				return nil, fmt.Errorf("pipeline.Execute: %w", err)
			}
			c.deps.Log.WithFields(logrus.Fields{
				"run_id": prior.ID, "gstin": req.GSTIN, "month": req.Month,
			}).Info("reusing completed run for identical input")
			return &Summary{Run: prior, Artifacts: arts, Reused: true}, nil
		}
	}

	runID := req.RunID
	if runID == uuid.Nil {
		runID = uuid.New()
	}
	run := &domain.Run{
		ID:        runID,
		Channel:   req.Channel,
		GSTIN:     req.GSTIN,
		Month:     req.Month,
		Status:    domain.RunStatusRunning,
		InputHash: inputHash,
		StartedAt: time.Now().UTC(),
	}
	if err := c.deps.Runs.Create(ctx, run); err != nil {
		return nil, fmt.Errorf("pipeline.Execute: %w", err)
	}

	st := &runState{
		run:     run,
		req:     req,
		summary: &Summary{Run: run},
		workDir: filepath.Join(c.opts.WorkDir, run.ID.String()),
		alloc:   invoice.NewAllocator(c.deps.Sequences),
	}
	if err := os.MkdirAll(st.workDir, 0o755); err != nil {
		return nil, fmt.Errorf("pipeline.Execute: %w", err)
	}
	defer os.RemoveAll(st.workDir)

	var runErr error
	if req.ReportType == domain.ReportTypeSellerInvoice {
		runErr = c.runExpense(ctx, st)
	} else {
		runErr = c.runSales(ctx, st)
	}

	status := domain.RunStatusSuccess
	switch {
	case runErr != nil:
		status = domain.RunStatusFailed
		st.summary.ErrorKind = domain.KindOf(runErr)
	case len(st.summary.Exceptions) > 0:
		status = domain.RunStatusPartial
	}
	if err := c.deps.Runs.SetTerminalStatus(ctx, run.ID, status); err != nil {
		return st.summary, fmt.Errorf("pipeline.Execute: %w", err)
	}
	run.Status = status
	now := time.Now().UTC()
	run.FinishedAt = &now

	c.deps.Log.WithFields(logrus.Fields{
		"run_id": run.ID, "status": status, "stages": len(st.summary.Stages),
	}).Info("run finished")
	return st.summary, runErr
}

// runState is the per-run mutable context threaded through the stages.
type runState struct {
	run     *domain.Run
	req     Request
	summary *Summary
	workDir string
	alloc   *invoice.Allocator

	rows   []domain.CanonicalRow
	enrich []domain.EnrichedRow
	priced []domain.PricedRow
	pivots []domain.PivotRow
}

// stage runs one stage body with its timeout, retry for transient
// failures, and cancellation at the boundary.
func (c *Coordinator) stage(ctx context.Context, st *runState, name domain.Stage, fn func(context.Context) (int, error)) error {
	if err := ctx.Err(); err != nil {
		c.record(st, name, 0, domain.ErrCancelled)
		return domain.ErrCancelled
	}

	log := c.deps.Log.WithFields(logrus.Fields{"run_id": st.run.ID, "stage": name})
	log.Info("stage started")

	var processed int
	var err error
	backoff := retryBase
	for attempt := 1; ; attempt++ {
		processed, err = c.runOnce(ctx, name, fn)
		if err == nil || !domain.Transient(err) || attempt == retryAttempts {
			break
		}
		log.WithError(err).WithField("attempt", attempt).Warn("transient stage failure, retrying")
		if errors.Is(err, domain.ErrInvoiceSequenceConflict) {
			st.alloc.Reset()
		}
		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			c.record(st, name, 0, domain.ErrCancelled)
			return domain.ErrCancelled
		}
		backoff *= 4
		if backoff > retryCap {
			backoff = retryCap
		}
	}

	c.record(st, name, processed, err)
	if err != nil {
		log.WithError(err).Error("stage failed")
		return err
	}
	log.WithField("processed", processed).Info("stage finished")
	return nil
}

func (c *Coordinator) runOnce(ctx context.Context, name domain.Stage, fn func(context.Context) (int, error)) (int, error) {
	if d, ok := c.opts.StageTimeouts[name]; ok && d > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d)
		defer cancel()
	}
	return fn(ctx)
}

func (c *Coordinator) record(st *runState, name domain.Stage, processed int, err error) {
	r := StageResult{Stage: name, Success: err == nil, Processed: processed}
	if err != nil {
		r.Error = err.Error()
	}
	st.summary.Stages = append(st.summary.Stages, r)
}

func (st *runState) addException(stage domain.Stage, kind domain.ErrorKind, count int, sample string) {
	if count == 0 {
		return
	}
	st.summary.Exceptions = append(st.summary.Exceptions, domain.RunException{
		Stage: stage, Kind: kind, Count: count, SampleMessage: sample,
	})
}

// persistArtifact uploads a local file and records the artifact row.
func (c *Coordinator) persistArtifact(ctx context.Context, st *runState, role domain.ArtifactRole, localPath, hash string) error {
	logical := fmt.Sprintf("%s/%s/%s/%s",
		c.opts.BucketPrefix, st.run.ID, role, filepath.Base(localPath))
	remote, err := c.deps.Storage.Put(ctx, localPath, logical)
	if err != nil {
		return err
	}
	art := &domain.ReportArtifact{
		ID:          uuid.New(),
		RunID:       st.run.ID,
		Role:        role,
		FilePath:    remote,
		ContentHash: hash,
		CreatedAt:   time.Now().UTC(),
	}
	if err := c.deps.Artifacts.Create(ctx, art); err != nil {
		return err
	}
	st.summary.Artifacts = append(st.summary.Artifacts, *art)
	return nil
}

// writeAndPersist writes a CSV artifact into the run workdir and persists it.
func (c *Coordinator) writeAndPersist(ctx context.Context, st *runState, role domain.ArtifactRole, name string, write func(io.Writer) error) error {
	path, hash, err := csvexport.WriteTempArtifact(st.workDir, name, write)
	if err != nil {
		return err
	}
	return c.persistArtifact(ctx, st, role, path, hash)
}
