package db

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"

	libdb "evdash/backend/libs/db"
)

//go:embed schema.sql
var schema string

// NewPostgres reuses shared DB initializer.
func NewPostgres(dsn string, opts libdb.PoolOptions) (*sql.DB, error) {
	return libdb.NewPostgresDB(dsn, opts)
}

// EnsureSchema creates the fleet tables when they are missing.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}
