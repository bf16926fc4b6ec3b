package domain

import "context"

// JobRepository persists job rows. Jobs are insert-only.
type JobRepository interface {
	Create(ctx context.Context, job *Job) error
	GetByID(ctx context.Context, jobID string) (*Job, error)
}

// MetricsRepository appends observability records. There is no read path.
type MetricsRepository interface {
	Append(ctx context.Context, rec *MetricsRecord) error
}
