package repository

import (
	"context"
	"errors"
	"fmt"

	"birdfolio-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

// ChecklistRepository handles database operations for checklist items
type ChecklistRepository struct {
	db Querier
}

// NewChecklistRepository creates a new checklist repository
func NewChecklistRepository(db Querier) *ChecklistRepository {
	return &ChecklistRepository{db: db}
}

// ListByUser retrieves every checklist item of a user
func (r *ChecklistRepository) ListByUser(ctx context.Context, telegramID int64) ([]*models.ChecklistItem, error) {
	query := `
		SELECT id, telegram_id, region, species, slug, rarity_tier, found, date_found
		FROM checklist
		WHERE telegram_id = $1
		ORDER BY id
	`
	rows, err := r.db.Query(ctx, query, telegramID)
	if err != nil {
		return nil, fmt.Errorf("failed to get checklist: %w", err)
	}
	defer rows.Close()

	items := make([]*models.ChecklistItem, 0)
	for rows.Next() {
		item, err := scanChecklistItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan checklist item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating checklist: %w", err)
	}

	return items, nil
}

// MarkFound flags the item with the given slug as found on dateFound. When the
// slug was seeded more than once only the earliest row is updated.
func (r *ChecklistRepository) MarkFound(ctx context.Context, telegramID int64, slug string, dateFound pgtype.Date) (*models.ChecklistItem, error) {
	query := `
		UPDATE checklist
		SET found = TRUE, date_found = $3
		WHERE id = (
			SELECT id FROM checklist
			WHERE telegram_id = $1 AND slug = $2
			ORDER BY id
			LIMIT 1
		)
		RETURNING id, telegram_id, region, species, slug, rarity_tier, found, date_found
	`
	item, err := scanChecklistItem(r.db.QueryRow(ctx, query, telegramID, slug, dateFound))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to mark checklist item found: %w", err)
	}
	return item, nil
}

// BulkCreate seeds checklist items with found = false using COPY
func (r *ChecklistRepository) BulkCreate(ctx context.Context, telegramID int64, items []models.ChecklistItemInput) (int64, error) {
	columns := []string{"telegram_id", "region", "species", "slug", "rarity_tier", "found"}
	source := pgx.CopyFromSlice(len(items), func(i int) ([]any, error) {
		item := items[i]
		return []any{telegramID, item.Region, item.Species, item.Slug, string(item.RarityTier), false}, nil
	})

	n, err := r.db.CopyFrom(ctx, pgx.Identifier{"checklist"}, columns, source)
	if err != nil {
		return 0, fmt.Errorf("failed to create checklist items: %w", err)
	}
	return n, nil
}

func scanChecklistItem(row pgx.Row) (*models.ChecklistItem, error) {
	var (
		item models.ChecklistItem
		tier string
	)
	err := row.Scan(
		&item.ID, &item.TelegramID, &item.Region, &item.Species,
		&item.Slug, &tier, &item.Found, &item.DateFound,
	)
	if err != nil {
		return nil, err
	}
	item.RarityTier = models.Rarity(tier)
	return &item, nil
}
