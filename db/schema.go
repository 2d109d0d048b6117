package db

import (
	"context"
	"database/sql"
	"fmt"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS original_listings (
		id VARCHAR(20) PRIMARY KEY,
		title TEXT NOT NULL,
		bullets JSONB NOT NULL DEFAULT '[]'::jsonb,
		description TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS optimized_listings (
		id VARCHAR(20) PRIMARY KEY,
		opt_title TEXT NOT NULL,
		opt_bullets JSONB NOT NULL DEFAULT '[]'::jsonb,
		opt_description TEXT NOT NULL,
		keywords TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
}

// EnsureSchema creates the listing tables when they do not exist yet.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
