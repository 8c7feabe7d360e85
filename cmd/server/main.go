package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"tallyflow/internal/approval"
	"tallyflow/internal/config"
	"tallyflow/internal/domain"
	"tallyflow/internal/email/noop"
	"tallyflow/internal/email/ses"
	"tallyflow/internal/handler"
	"tallyflow/internal/pdftext"
	"tallyflow/internal/pipeline"
	"tallyflow/internal/port"
	"tallyflow/internal/repository/postgres"
	"tallyflow/internal/router"
	"tallyflow/internal/service"
	s3storage "tallyflow/internal/storage/s3"
	"tallyflow/internal/template"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := newLogger(&cfg.Log)

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	// Initialize repositories
	runRepo := postgres.NewRunRepo(db)
	artifactRepo := postgres.NewArtifactRepo(db)
	masterRepo := postgres.NewMasterRepo(db)
	approvalRepo := postgres.NewApprovalRepo(db)
	sequenceRepo := postgres.NewSequenceRepo(db)
	auditRepo := postgres.NewAuditRepo(db)
	exportRepo := postgres.NewExportRepo(db)

	// Initialize storage
	storage, err := s3storage.NewS3Client(&cfg.S3)
	if err != nil {
		return fmt.Errorf("failed to initialize S3 client: %w", err)
	}

	emailSender, err := newEmailSender(&cfg.Email)
	if err != nil {
		return fmt.Errorf("failed to initialize email sender: %w", err)
	}

	defaultRate, err := decimal.NewFromString(cfg.Pipeline.DefaultGSTRate)
	if err != nil {
		return fmt.Errorf("invalid default GST rate %q: %w", cfg.Pipeline.DefaultGSTRate, err)
	}

	// Initialize services
	approvalSvc := approval.NewService(approvalRepo, masterRepo, emailSender)
	coordinator := pipeline.NewCoordinator(pipeline.Deps{
		Runs:      runRepo,
		Artifacts: artifactRepo,
		Masters:   masterRepo,
		Audit:     auditRepo,
		Exports:   exportRepo,
		Sequences: sequenceRepo,
		Storage:   storage,
		Approvals: approvalSvc,
		Templates: template.NewRegistry(cfg.Pipeline.TemplateDir),
		PDF:       pdftext.New(),
		Log:       logger,
	}, pipeline.Options{
		BucketPrefix:   cfg.Pipeline.BucketPrefix,
		StrictMapping:  cfg.Pipeline.StrictMapping,
		Overwrite:      cfg.Pipeline.Overwrite,
		DefaultGSTRate: defaultRate,
		WorkDir:        cfg.Pipeline.WorkDir,
		ApproverEmail:  cfg.Email.ApproverTo,
		StageTimeouts:  stageTimeouts(cfg.Pipeline.StageTimeoutSecs),
	})
	dispatcher := service.NewRunDispatcher(coordinator, cfg.Queue.Concurrency)
	runSvc := service.NewRunService(coordinator, dispatcher, runRepo, artifactRepo, exportRepo)

	// Initialize handlers
	runH := handler.NewRunHandler(runSvc)
	approvalH := handler.NewApprovalHandler(approvalSvc)
	healthH := handler.NewHealthHandler(db)

	r := router.Setup(cfg.JWT.Secret, logger, runH, approvalH, healthH)

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Server starting on %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case sig := <-quit:
		log.Printf("received %s, shutting down", sig)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	dispatcher.Shutdown()
	return nil
}

func newLogger(cfg *config.LogConfig) *logrus.Logger {
	logger := logrus.New()
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
	if cfg.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	return logger
}

func newEmailSender(cfg *config.EmailConfig) (port.EmailSender, error) {
	switch cfg.Provider {
	case "ses":
		return ses.NewSESSender(cfg.Region, cfg.FromAddress, cfg.FromName)
	default:
		return noop.NewNoopSender(), nil
	}
}

func stageTimeouts(raw map[string]int) map[domain.Stage]time.Duration {
	out := make(map[domain.Stage]time.Duration, len(raw))
	for stage, secs := range raw {
		out[domain.Stage(stage)] = time.Duration(secs) * time.Second
	}
	return out
}
