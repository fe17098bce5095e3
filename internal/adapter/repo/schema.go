package repo

import (
	"context"
	"fmt"

	"dekoassistant/internal/infra"
	"dekoassistant/internal/sqlinline"
)

// Bootstrap creates the tables the service needs when they are missing.
func Bootstrap(ctx context.Context, db infra.SQLExecutor) error {
	for i, stmt := range sqlinline.Schema {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("bootstrap schema step %d: %w", i+1, err)
		}
	}
	return nil
}
