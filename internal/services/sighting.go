package services

import (
	"context"
	"fmt"

	"birdfolio-backend/internal/events"
	"birdfolio-backend/internal/metrics"
	"birdfolio-backend/internal/models"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"
)

// SightingService handles sighting-related business logic
type SightingService struct {
	store     Store
	publisher events.Publisher
	metrics   *metrics.Metrics
}

// NewSightingService creates a new sighting service. publisher and m may be nil.
func NewSightingService(store Store, publisher events.Publisher, m *metrics.Metrics) *SightingService {
	return &SightingService{
		store:     store,
		publisher: publisher,
		metrics:   m,
	}
}

// LogSighting persists a sighting, creating the user on first use. The first
// sighting of a species for a user is the lifer; every later one is not,
// whatever its date spotted. Concurrent submits of the same species yield a
// single lifer.
func (s *SightingService) LogSighting(ctx context.Context, telegramID int64, input models.SightingInput) (sighting *models.Sighting, err error) {
	ctx, span := startSpan(ctx, "SightingService.LogSighting", telegramID)
	defer func() { endSpan(span, err) }()

	sighting = &models.Sighting{
		TelegramID:     telegramID,
		CommonName:     input.CommonName,
		ScientificName: input.ScientificName,
		Rarity:         input.Rarity,
		Region:         input.Region,
		DateSpotted:    input.DateSpotted,
		Notes:          input.Notes,
		CardPNGURL:     input.CardPNGURL,
	}

	err = s.store.WithTx(ctx, func(ctx context.Context, repos Repositories) error {
		if err := repos.Users.EnsureExists(ctx, telegramID, input.Region); err != nil {
			return err
		}

		lifer, err := repos.Sightings.CreateLifer(ctx, sighting)
		if err != nil {
			return err
		}
		if lifer {
			return nil
		}
		return repos.Sightings.Create(ctx, sighting)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to log sighting: %w", err)
	}

	span.SetAttributes(attribute.Bool("is_lifer", sighting.IsLifer))
	if s.metrics != nil {
		s.metrics.IncrementSightingsLogged(sighting.IsLifer)
	}
	publish(ctx, s.publisher, events.SightingLogged, telegramID, sighting)

	return sighting, nil
}

// ListSightings returns the user's sightings, most recently logged first
func (s *SightingService) ListSightings(ctx context.Context, telegramID int64) (sightings []*models.Sighting, err error) {
	ctx, span := startSpan(ctx, "SightingService.ListSightings", telegramID)
	defer func() { endSpan(span, err) }()

	err = s.store.WithReadTx(ctx, func(ctx context.Context, repos Repositories) error {
		var txErr error
		sightings, txErr = repos.Sightings.ListByUser(ctx, telegramID)
		return txErr
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list sightings: %w", err)
	}
	return sightings, nil
}

// publish notifies subscribers after commit. Failures are logged only, the
// change is already stored.
func publish(ctx context.Context, publisher events.Publisher, typ events.Type, telegramID int64, payload any) {
	if publisher == nil {
		return
	}

	event, err := events.New(typ, telegramID, payload)
	if err == nil {
		err = publisher.Publish(ctx, event)
	}
	if err != nil {
		log.Error().
			Err(err).
			Int64("telegram_id", telegramID).
			Str("type", string(typ)).
			Msg("Failed to publish event")
	}
}
