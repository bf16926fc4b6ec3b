package repo

import (
	"context"
	"fmt"

	"fitroom/internal/domain"
	"fitroom/internal/infra"
	"fitroom/internal/sqlinline"
)

// MetricsRepositoryPG implements domain.MetricsRepository as an append-only
// table. There is no read API.
type MetricsRepositoryPG struct {
	db infra.SQLExecutor
}

// NewMetricsRepository creates a metrics repository backed by PostgreSQL.
func NewMetricsRepository(db infra.SQLExecutor) *MetricsRepositoryPG {
	return &MetricsRepositoryPG{db: db}
}

// Append inserts one observability record.
func (r *MetricsRepositoryPG) Append(ctx context.Context, rec *domain.MetricsRecord) error {
	_, err := r.db.Exec(ctx, sqlinline.QInsertJobMetrics,
		rec.JobID,
		rec.OwnerID,
		string(rec.Status),
		rec.DurationMS,
		rec.Detail,
		rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert metrics record: %w", err)
	}
	return nil
}
