package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"tallyflow/internal/domain"
	"tallyflow/internal/port"
)

type artifactRepo struct {
	db *sqlx.DB
}

// NewArtifactRepo creates a new PostgreSQL-backed ArtifactRepository.
func NewArtifactRepo(db *sqlx.DB) port.ArtifactRepository {
	return &artifactRepo{db: db}
}

func (r *artifactRepo) Create(ctx context.Context, artifact *domain.ReportArtifact) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO report_artifacts (id, run_id, role, file_path, content_hash, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		artifact.ID, artifact.RunID, artifact.Role, artifact.FilePath,
		artifact.ContentHash, artifact.CreatedAt)
	if err != nil {
		return fmt.Errorf("artifactRepo.Create: %w", err)
	}
	return nil
}

func (r *artifactRepo) ListByRun(ctx context.Context, runID uuid.UUID) ([]domain.ReportArtifact, error) {
	var artifacts []domain.ReportArtifact
	err := r.db.SelectContext(ctx, &artifacts,
		"SELECT * FROM report_artifacts WHERE run_id = $1 ORDER BY created_at", runID)
	if err != nil {
		return nil, fmt.Errorf("artifactRepo.ListByRun: %w", err)
	}
	return artifacts, nil
}
