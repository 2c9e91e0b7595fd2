// Package migrations embeds the SQL schema and applies it with goose.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/pressly/goose/v3/lock"
)

//go:embed *.sql
var Migrations embed.FS

// upFunc is a seam for testing provider construction and execution.
var upFunc = func(ctx context.Context, db *sql.DB, fsys fs.FS) ([]*goose.MigrationResult, error) {
	// Session-level advisory lock; concurrent callers wait for the holder.
	locker, err := lock.NewPostgresSessionLocker()
	if err != nil {
		return nil, fmt.Errorf("failed to create migration locker: %w", err)
	}

	provider, err := goose.NewProvider(goose.DialectPostgres, db, fsys, goose.WithSessionLocker(locker))
	if err != nil {
		return nil, fmt.Errorf("failed to create migration provider: %w", err)
	}

	return provider.Up(ctx)
}

// Up applies all pending migrations and returns the versions it applied.
// Running it against an up-to-date schema applies nothing.
func Up(ctx context.Context, pool *pgxpool.Pool) ([]int64, error) {
	// The *sql.DB borrows connections from pool and holds none of its own.
	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	results, err := upFunc(ctx, db, Migrations)
	if err != nil {
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	versions := make([]int64, 0, len(results))
	for _, r := range results {
		versions = append(versions, r.Source.Version)
	}
	return versions, nil
}
