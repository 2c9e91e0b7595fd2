package services

import (
	"context"
	"fmt"
	"time"

	"birdfolio-backend/internal/events"
	"birdfolio-backend/internal/metrics"
	"birdfolio-backend/internal/models"
)

// ChecklistService handles checklist-related business logic
type ChecklistService struct {
	store     Store
	publisher events.Publisher
	metrics   *metrics.Metrics
	now       func() time.Time
}

// NewChecklistService creates a new checklist service. publisher and m may be nil.
func NewChecklistService(store Store, publisher events.Publisher, m *metrics.Metrics) *ChecklistService {
	return &ChecklistService{
		store:     store,
		publisher: publisher,
		metrics:   m,
		now:       time.Now,
	}
}

// GetChecklist returns every checklist item of the user
func (s *ChecklistService) GetChecklist(ctx context.Context, telegramID int64) (items []*models.ChecklistItem, err error) {
	ctx, span := startSpan(ctx, "ChecklistService.GetChecklist", telegramID)
	defer func() { endSpan(span, err) }()

	err = s.store.WithReadTx(ctx, func(ctx context.Context, repos Repositories) error {
		var txErr error
		items, txErr = repos.Checklist.ListByUser(ctx, telegramID)
		return txErr
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get checklist: %w", err)
	}
	return items, nil
}

// MarkFound flags the item as found today. Marking it again rewrites the date.
// Returns models.ErrNotFound when the user has no item with this slug.
func (s *ChecklistService) MarkFound(ctx context.Context, telegramID int64, slug string) (item *models.ChecklistItem, err error) {
	ctx, span := startSpan(ctx, "ChecklistService.MarkFound", telegramID)
	defer func() { endSpan(span, err) }()

	today := models.NewDate(s.now())
	err = s.store.WithTx(ctx, func(ctx context.Context, repos Repositories) error {
		var txErr error
		item, txErr = repos.Checklist.MarkFound(ctx, telegramID, slug, today)
		return txErr
	})
	if err != nil {
		return nil, fmt.Errorf("failed to mark checklist item found: %w", err)
	}

	if s.metrics != nil {
		s.metrics.ChecklistItemsFound.Inc()
	}
	publish(ctx, s.publisher, events.ChecklistItemFound, telegramID, item)

	return item, nil
}

// BulkCreateChecklist seeds the user's checklist. It is meant to run once per
// user: a second call duplicates the rows. The user is created with the first
// item's region if missing.
func (s *ChecklistService) BulkCreateChecklist(ctx context.Context, telegramID int64, items []models.ChecklistItemInput) (created int64, err error) {
	ctx, span := startSpan(ctx, "ChecklistService.BulkCreateChecklist", telegramID)
	defer func() { endSpan(span, err) }()

	if len(items) == 0 {
		return 0, nil
	}

	err = s.store.WithTx(ctx, func(ctx context.Context, repos Repositories) error {
		if err := repos.Users.EnsureExists(ctx, telegramID, items[0].Region); err != nil {
			return err
		}
		var txErr error
		created, txErr = repos.Checklist.BulkCreate(ctx, telegramID, items)
		return txErr
	})
	if err != nil {
		return 0, fmt.Errorf("failed to create checklist: %w", err)
	}
	return created, nil
}
