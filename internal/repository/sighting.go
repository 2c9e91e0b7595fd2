package repository

import (
	"context"
	"errors"
	"fmt"

	"birdfolio-backend/internal/models"

	"github.com/jackc/pgx/v5"
)

const sightingColumns = `id, telegram_id, common_name, scientific_name, rarity, region,
		date_spotted, is_lifer, notes, card_png_url, created_at`

// SightingRepository handles database operations for sightings
type SightingRepository struct {
	db Querier
}

// NewSightingRepository creates a new sighting repository
func NewSightingRepository(db Querier) *SightingRepository {
	return &SightingRepository{db: db}
}

// CreateLifer inserts the sighting flagged as a lifer. The partial unique index
// on (telegram_id, common_name) WHERE is_lifer turns a concurrent or earlier
// lifer into a no-op insert, reported as false.
func (r *SightingRepository) CreateLifer(ctx context.Context, sighting *models.Sighting) (bool, error) {
	query := `
		INSERT INTO sightings (telegram_id, common_name, scientific_name, rarity, region,
			date_spotted, is_lifer, notes, card_png_url)
		VALUES ($1, $2, $3, $4, $5, $6, TRUE, $7, $8)
		ON CONFLICT (telegram_id, common_name) WHERE is_lifer DO NOTHING
		RETURNING id, created_at
	`
	err := r.db.QueryRow(ctx, query,
		sighting.TelegramID, sighting.CommonName, sighting.ScientificName, string(sighting.Rarity),
		sighting.Region, sighting.DateSpotted, sighting.Notes, sighting.CardPNGURL,
	).Scan(&sighting.ID, &sighting.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("failed to create lifer sighting: %w", err)
	}
	sighting.IsLifer = true
	return true, nil
}

// Create inserts the sighting as a repeat observation
func (r *SightingRepository) Create(ctx context.Context, sighting *models.Sighting) error {
	query := `
		INSERT INTO sightings (telegram_id, common_name, scientific_name, rarity, region,
			date_spotted, is_lifer, notes, card_png_url)
		VALUES ($1, $2, $3, $4, $5, $6, FALSE, $7, $8)
		RETURNING id, created_at
	`
	err := r.db.QueryRow(ctx, query,
		sighting.TelegramID, sighting.CommonName, sighting.ScientificName, string(sighting.Rarity),
		sighting.Region, sighting.DateSpotted, sighting.Notes, sighting.CardPNGURL,
	).Scan(&sighting.ID, &sighting.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create sighting: %w", err)
	}
	sighting.IsLifer = false
	return nil
}

// ListByUser retrieves all sightings of a user, most recently logged first
func (r *SightingRepository) ListByUser(ctx context.Context, telegramID int64) ([]*models.Sighting, error) {
	query := `
		SELECT ` + sightingColumns + `
		FROM sightings
		WHERE telegram_id = $1
		ORDER BY created_at DESC, id DESC
	`
	return r.list(ctx, query, telegramID)
}

// ListLifers retrieves the lifer sightings of a user
func (r *SightingRepository) ListLifers(ctx context.Context, telegramID int64) ([]*models.Sighting, error) {
	query := `
		SELECT ` + sightingColumns + `
		FROM sightings
		WHERE telegram_id = $1 AND is_lifer
		ORDER BY id
	`
	return r.list(ctx, query, telegramID)
}

// CountByUser counts all sightings of a user
func (r *SightingRepository) CountByUser(ctx context.Context, telegramID int64) (int, error) {
	query := `SELECT COUNT(*) FROM sightings WHERE telegram_id = $1`
	var total int
	if err := r.db.QueryRow(ctx, query, telegramID).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to count sightings: %w", err)
	}
	return total, nil
}

func (r *SightingRepository) list(ctx context.Context, query string, args ...any) ([]*models.Sighting, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get sightings: %w", err)
	}
	defer rows.Close()

	sightings := make([]*models.Sighting, 0)
	for rows.Next() {
		var (
			sighting models.Sighting
			rarity   string
		)
		err := rows.Scan(
			&sighting.ID, &sighting.TelegramID, &sighting.CommonName, &sighting.ScientificName,
			&rarity, &sighting.Region, &sighting.DateSpotted, &sighting.IsLifer,
			&sighting.Notes, &sighting.CardPNGURL, &sighting.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan sighting: %w", err)
		}
		sighting.Rarity = models.Rarity(rarity)
		sightings = append(sightings, &sighting)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sightings: %w", err)
	}

	return sightings, nil
}
