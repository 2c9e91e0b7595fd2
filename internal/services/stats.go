package services

import (
	"context"
	"fmt"
	"time"

	"birdfolio-backend/internal/metrics"
	"birdfolio-backend/internal/models"
)

// StatsService aggregates a user's sighting history
type StatsService struct {
	store   Store
	metrics *metrics.Metrics
}

// NewStatsService creates a new stats service. m may be nil.
func NewStatsService(store Store, m *metrics.Metrics) *StatsService {
	return &StatsService{
		store:   store,
		metrics: m,
	}
}

// GetStats computes the stats from the stored history on every call. The
// count and the lifers are read from one snapshot.
func (s *StatsService) GetStats(ctx context.Context, telegramID int64) (stats *models.Stats, err error) {
	ctx, span := startSpan(ctx, "StatsService.GetStats", telegramID)
	defer func() { endSpan(span, err) }()

	if s.metrics != nil {
		defer s.metrics.ObserveStats(time.Now())
	}

	var (
		total  int
		lifers []*models.Sighting
	)
	err = s.store.WithReadTx(ctx, func(ctx context.Context, repos Repositories) error {
		var txErr error
		if total, txErr = repos.Sightings.CountByUser(ctx, telegramID); txErr != nil {
			return txErr
		}
		lifers, txErr = repos.Sightings.ListLifers(ctx, telegramID)
		return txErr
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get stats: %w", err)
	}

	return BuildStats(total, lifers), nil
}

// BuildStats derives the stats from the sighting count and the lifers.
//
// The most recent lifer has the latest date spotted. The rarest has the
// highest rarity rank, then the latest date spotted. Remaining ties go to the
// later logged sighting, then the higher id, so the result does not depend on
// the order of lifers.
func BuildStats(totalSightings int, lifers []*models.Sighting) *models.Stats {
	stats := &models.Stats{
		TotalSightings: totalSightings,
		TotalSpecies:   len(lifers),
	}

	var rarest, recent *models.Sighting
	for _, s := range lifers {
		if recent == nil || newerThan(s, recent) {
			recent = s
		}
		if rarest == nil || rarerThan(s, rarest) {
			rarest = s
		}
	}

	if rarest != nil {
		stats.RarestBird = &models.RarestBird{
			CommonName:  rarest.CommonName,
			Rarity:      rarest.Rarity,
			DateSpotted: rarest.DateSpotted,
		}
	}
	if recent != nil {
		stats.MostRecent = &models.MostRecent{
			CommonName:  recent.CommonName,
			DateSpotted: recent.DateSpotted,
		}
	}
	return stats
}

func rarerThan(a, b *models.Sighting) bool {
	if ra, rb := a.Rarity.Rank(), b.Rarity.Rank(); ra != rb {
		return ra > rb
	}
	return newerThan(a, b)
}

// newerThan orders by date spotted, then creation time, then id
func newerThan(a, b *models.Sighting) bool {
	if !a.DateSpotted.Time.Equal(b.DateSpotted.Time) {
		return a.DateSpotted.Time.After(b.DateSpotted.Time)
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.ID > b.ID
}
