package services_test

import (
	"context"
	"testing"
	"time"

	"birdfolio-backend/internal/metrics"
	"birdfolio-backend/internal/models"
	"birdfolio-backend/internal/repository"
	"birdfolio-backend/internal/services"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatsExample(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	sightings := services.NewSightingService(store, nil, nil)
	stats := services.NewStatsService(store, nil)

	robin, err := sightings.LogSighting(ctx, 42, sightingInput("Robin", models.RarityCommon, 2024, time.January, 1))
	require.NoError(t, err)
	assert.True(t, robin.IsLifer)

	again, err := sightings.LogSighting(ctx, 42, sightingInput("Robin", models.RarityCommon, 2024, time.February, 1))
	require.NoError(t, err)
	assert.False(t, again.IsLifer)

	eagle, err := sightings.LogSighting(ctx, 42, sightingInput("Eagle", models.RaritySuperRare, 2024, time.March, 1))
	require.NoError(t, err)
	assert.True(t, eagle.IsLifer)

	got, err := stats.GetStats(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, 3, got.TotalSightings)
	assert.Equal(t, 2, got.TotalSpecies)
	require.NotNil(t, got.RarestBird)
	assert.Equal(t, "Eagle", got.RarestBird.CommonName)
	assert.Equal(t, models.RaritySuperRare, got.RarestBird.Rarity)
	require.NotNil(t, got.MostRecent)
	assert.Equal(t, "Eagle", got.MostRecent.CommonName)
	assert.Equal(t, calendarDate(2024, time.March, 1), got.MostRecent.DateSpotted)
}

func TestStatsWithoutSightings(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	stats := services.NewStatsService(repository.NewMemoryStore(), m)

	got, err := stats.GetStats(context.Background(), 404)
	require.NoError(t, err)
	assert.Zero(t, got.TotalSightings)
	assert.Zero(t, got.TotalSpecies)
	assert.Nil(t, got.RarestBird)
	assert.Nil(t, got.MostRecent)

	assert.Equal(t, 1, testutil.CollectAndCount(m.StatsDuration))
}

func TestStatsStoreFailure(t *testing.T) {
	_, err := services.NewStatsService(failingStore{}, nil).GetStats(context.Background(), 42)
	assert.ErrorIs(t, err, errBoom)
}

func lifer(id int64, name string, rarity models.Rarity, spotted pgtype.Date, created time.Time) *models.Sighting {
	return &models.Sighting{
		ID:          id,
		CommonName:  name,
		Rarity:      rarity,
		DateSpotted: spotted,
		IsLifer:     true,
		CreatedAt:   created,
	}
}

func TestBuildStats(t *testing.T) {
	base := time.Date(2024, time.January, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		total      int
		lifers     []*models.Sighting
		wantRarest string
		wantRecent string
	}{
		{
			name:  "rank beats date",
			total: 4,
			lifers: []*models.Sighting{
				lifer(1, "Owl", models.RarityRare, calendarDate(2024, time.January, 1), base),
				lifer(2, "Sparrow", models.RarityCommon, calendarDate(2024, time.May, 1), base),
			},
			wantRarest: "Owl",
			wantRecent: "Sparrow",
		},
		{
			name:  "super rare outranks bonus",
			total: 2,
			lifers: []*models.Sighting{
				lifer(1, "Eagle", models.RaritySuperRare, calendarDate(2023, time.January, 1), base),
				lifer(2, "Phoenix", models.RarityBonus, calendarDate(2024, time.January, 1), base),
			},
			wantRarest: "Eagle",
			wantRecent: "Phoenix",
		},
		{
			name:  "equal rank goes to the later date spotted",
			total: 2,
			lifers: []*models.Sighting{
				lifer(1, "Heron", models.RarityRare, calendarDate(2024, time.March, 1), base),
				lifer(2, "Owl", models.RarityRare, calendarDate(2024, time.February, 1), base.Add(time.Hour)),
			},
			wantRarest: "Heron",
			wantRecent: "Heron",
		},
		{
			name:  "equal date goes to the later logged",
			total: 2,
			lifers: []*models.Sighting{
				lifer(5, "Heron", models.RarityRare, calendarDate(2024, time.March, 1), base.Add(time.Hour)),
				lifer(3, "Owl", models.RarityRare, calendarDate(2024, time.March, 1), base),
			},
			wantRarest: "Heron",
			wantRecent: "Heron",
		},
		{
			name:  "full tie goes to the higher id",
			total: 2,
			lifers: []*models.Sighting{
				lifer(8, "Wren", models.RarityCommon, calendarDate(2024, time.March, 1), base),
				lifer(9, "Tit", models.RarityCommon, calendarDate(2024, time.March, 1), base),
			},
			wantRarest: "Tit",
			wantRecent: "Tit",
		},
		{
			name:  "unknown tier ranks with bonus",
			total: 3,
			lifers: []*models.Sighting{
				lifer(1, "Mystery", models.Rarity("legendary"), calendarDate(2025, time.January, 1), base),
				lifer(2, "Phoenix", models.RarityBonus, calendarDate(2024, time.January, 1), base),
			},
			wantRarest: "Mystery",
			wantRecent: "Mystery",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := services.BuildStats(tt.total, tt.lifers)
			assert.Equal(t, tt.total, got.TotalSightings)
			assert.Equal(t, len(tt.lifers), got.TotalSpecies)
			require.NotNil(t, got.RarestBird)
			require.NotNil(t, got.MostRecent)
			assert.Equal(t, tt.wantRarest, got.RarestBird.CommonName)
			assert.Equal(t, tt.wantRecent, got.MostRecent.CommonName)

			reversed := make([]*models.Sighting, len(tt.lifers))
			for i, s := range tt.lifers {
				reversed[len(tt.lifers)-1-i] = s
			}
			assert.Equal(t, got, services.BuildStats(tt.total, reversed), "order of lifers must not matter")
		})
	}
}
