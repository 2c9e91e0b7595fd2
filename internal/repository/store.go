package repository

import (
	"context"
	"fmt"

	"birdfolio-backend/internal/services"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var readOnlyTx = pgx.TxOptions{
	IsoLevel:   pgx.RepeatableRead,
	AccessMode: pgx.ReadOnly,
}

// PostgresStore runs units of work against PostgreSQL
type PostgresStore struct {
	db *pgxpool.Pool
}

// NewPostgresStore creates a new PostgreSQL-backed store
func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

// WithTx runs fn inside a read-write transaction
func (s *PostgresStore) WithTx(ctx context.Context, fn func(ctx context.Context, repos services.Repositories) error) error {
	return s.run(ctx, pgx.TxOptions{}, fn)
}

// WithReadTx runs fn inside a repeatable-read, read-only transaction
func (s *PostgresStore) WithReadTx(ctx context.Context, fn func(ctx context.Context, repos services.Repositories) error) error {
	return s.run(ctx, readOnlyTx, fn)
}

// Ping checks the database connection
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

func (s *PostgresStore) run(ctx context.Context, opts pgx.TxOptions, fn func(ctx context.Context, repos services.Repositories) error) error {
	tx, err := s.db.BeginTx(ctx, opts)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	// Rollback after a successful commit is a no-op.
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if err := fn(ctx, newRepositories(tx)); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func newRepositories(db Querier) services.Repositories {
	return services.Repositories{
		Users:     NewUserRepository(db),
		Sightings: NewSightingRepository(db),
		Checklist: NewChecklistRepository(db),
	}
}
