package services

import (
	"context"

	"birdfolio-backend/internal/models"

	"github.com/jackc/pgx/v5/pgtype"
)

// UserRepository persists users keyed by Telegram id
type UserRepository interface {
	Upsert(ctx context.Context, telegramID int64, region string) (*models.User, error)
	GetByTelegramID(ctx context.Context, telegramID int64) (*models.User, error)
	// EnsureExists creates the user with the given region unless it already exists.
	EnsureExists(ctx context.Context, telegramID int64, region string) error
	Delete(ctx context.Context, telegramID int64) error
}

// SightingRepository persists sightings
type SightingRepository interface {
	// CreateLifer inserts the sighting as a lifer and reports true, or inserts
	// nothing and reports false when a lifer for the same species already exists.
	CreateLifer(ctx context.Context, sighting *models.Sighting) (bool, error)
	Create(ctx context.Context, sighting *models.Sighting) error
	ListByUser(ctx context.Context, telegramID int64) ([]*models.Sighting, error)
	CountByUser(ctx context.Context, telegramID int64) (int, error)
	ListLifers(ctx context.Context, telegramID int64) ([]*models.Sighting, error)
}

// ChecklistRepository persists checklist items
type ChecklistRepository interface {
	ListByUser(ctx context.Context, telegramID int64) ([]*models.ChecklistItem, error)
	MarkFound(ctx context.Context, telegramID int64, slug string, dateFound pgtype.Date) (*models.ChecklistItem, error)
	BulkCreate(ctx context.Context, telegramID int64, items []models.ChecklistItemInput) (int64, error)
}

// Repositories groups the repositories bound to one transaction
type Repositories struct {
	Users     UserRepository
	Sightings SightingRepository
	Checklist ChecklistRepository
}

// Store runs units of work against the record store. fn's repositories share a
// single transaction which commits when fn returns nil and rolls back otherwise.
type Store interface {
	WithTx(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error
	// WithReadTx runs fn in a read-only snapshot.
	WithReadTx(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error
	Ping(ctx context.Context) error
}
