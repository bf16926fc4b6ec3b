package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"fitroom/internal/domain"
	"fitroom/internal/infra"
	"fitroom/internal/sqlinline"
)

// JobRepositoryPG implements domain.JobRepository. Job rows are insert-only;
// there is no update path.
type JobRepositoryPG struct {
	db infra.SQLExecutor
}

// NewJobRepository creates a job repository backed by PostgreSQL.
func NewJobRepository(db infra.SQLExecutor) *JobRepositoryPG {
	return &JobRepositoryPG{db: db}
}

// Create inserts a terminal job record.
func (r *JobRepositoryPG) Create(ctx context.Context, job *domain.Job) error {
	_, err := r.db.Exec(ctx, sqlinline.QInsertJob,
		job.ID,
		job.OwnerID,
		job.SubjectRef,
		job.ItemRefs,
		nullableString(job.ArtifactRef),
		string(job.Status),
		job.DurationMS,
		job.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert job: %w", err)
	}
	return nil
}

// GetByID fetches a job by its identifier. The lookup is deliberately
// id-only: ownership is enforced by the caller so that "not found" and
// "found but not yours" stay distinguishable.
func (r *JobRepositoryPG) GetByID(ctx context.Context, jobID string) (*domain.Job, error) {
	row := r.db.QueryRow(ctx, sqlinline.QGetJobByID, jobID)
	var job domain.Job
	var artifactRef *string
	var status string
	if err := row.Scan(
		&job.ID,
		&job.OwnerID,
		&job.SubjectRef,
		&job.ItemRefs,
		&artifactRef,
		&status,
		&job.DurationMS,
		&job.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("select job: %w", err)
	}
	if artifactRef != nil {
		job.ArtifactRef = *artifactRef
	}
	job.Status = domain.JobStatus(status)
	return &job, nil
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
