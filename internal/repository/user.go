package repository

import (
	"context"
	"errors"
	"fmt"

	"birdfolio-backend/internal/models"

	"github.com/jackc/pgx/v5"
)

// UserRepository handles database operations for users
type UserRepository struct {
	db Querier
}

// NewUserRepository creates a new user repository
func NewUserRepository(db Querier) *UserRepository {
	return &UserRepository{db: db}
}

// Upsert creates the user or updates the region of an existing one
func (r *UserRepository) Upsert(ctx context.Context, telegramID int64, region string) (*models.User, error) {
	query := `
		INSERT INTO users (telegram_id, region)
		VALUES ($1, $2)
		ON CONFLICT (telegram_id) DO UPDATE SET region = EXCLUDED.region
		RETURNING telegram_id, region, created_at
	`
	var user models.User
	err := r.db.QueryRow(ctx, query, telegramID, region).Scan(
		&user.TelegramID, &user.Region, &user.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert user: %w", err)
	}
	return &user, nil
}

// GetByTelegramID retrieves a user by Telegram id
func (r *UserRepository) GetByTelegramID(ctx context.Context, telegramID int64) (*models.User, error) {
	query := `
		SELECT telegram_id, region, created_at
		FROM users
		WHERE telegram_id = $1
	`
	var user models.User
	err := r.db.QueryRow(ctx, query, telegramID).Scan(
		&user.TelegramID, &user.Region, &user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

// EnsureExists inserts the user unless one with this Telegram id exists
func (r *UserRepository) EnsureExists(ctx context.Context, telegramID int64, region string) error {
	query := `
		INSERT INTO users (telegram_id, region)
		VALUES ($1, $2)
		ON CONFLICT (telegram_id) DO NOTHING
	`
	if _, err := r.db.Exec(ctx, query, telegramID, region); err != nil {
		return fmt.Errorf("failed to ensure user exists: %w", err)
	}
	return nil
}

// Delete deletes a user; sightings and checklist items go with it
func (r *UserRepository) Delete(ctx context.Context, telegramID int64) error {
	query := `DELETE FROM users WHERE telegram_id = $1`
	result, err := r.db.Exec(ctx, query, telegramID)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}
