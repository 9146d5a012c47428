package postgresql

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/teamzen/hris-backend-go/internal/pkg/database"
)

//go:embed schema.sql
var schema string

// EnsureSchema creates the tables the repositories use. Every statement is idempotent.
func EnsureSchema(ctx context.Context, db *database.DB) error {
	if _, err := db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
