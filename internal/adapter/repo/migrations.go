package repo

import (
	"context"
	"fmt"

	"fitroom/internal/infra"
	"fitroom/internal/sqlinline"
)

// RunMigrations applies the schema statements in order.
func RunMigrations(ctx context.Context, db infra.SQLExecutor) error {
	for i, stmt := range sqlinline.Schema {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}
