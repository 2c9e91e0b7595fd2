package services_test

import (
	"context"
	"testing"
	"time"

	"birdfolio-backend/internal/metrics"
	"birdfolio-backend/internal/models"
	"birdfolio-backend/internal/repository"
	"birdfolio-backend/internal/services"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpsertUser(t *testing.T) {
	ctx := context.Background()
	m := metrics.New(prometheus.NewRegistry())
	users := services.NewUserService(repository.NewMemoryStore(), m)

	created, err := users.UpsertUser(ctx, 42, "EU")
	require.NoError(t, err)
	assert.Equal(t, int64(42), created.TelegramID)
	assert.Equal(t, "EU", created.Region)

	moved, err := users.UpsertUser(ctx, 42, "NA")
	require.NoError(t, err)
	assert.Equal(t, "NA", moved.Region)
	assert.Equal(t, created.CreatedAt, moved.CreatedAt)

	got, err := users.GetUser(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, "NA", got.Region)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.UsersUpserted))
}

func TestGetUnknownUser(t *testing.T) {
	users := services.NewUserService(repository.NewMemoryStore(), nil)

	_, err := users.GetUser(context.Background(), 404)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestDeleteUserCascades(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	users := services.NewUserService(store, nil)
	sightings := services.NewSightingService(store, nil, nil)
	checklist := services.NewChecklistService(store, nil, nil)

	_, err := sightings.LogSighting(ctx, 42, sightingInput("Robin", models.RarityCommon, 2024, time.January, 1))
	require.NoError(t, err)
	_, err = checklist.BulkCreateChecklist(ctx, 42, seedItems())
	require.NoError(t, err)

	require.NoError(t, users.DeleteUser(ctx, 42))

	_, err = users.GetUser(ctx, 42)
	assert.ErrorIs(t, err, models.ErrNotFound)

	list, err := sightings.ListSightings(ctx, 42)
	require.NoError(t, err)
	assert.Empty(t, list)

	items, err := checklist.GetChecklist(ctx, 42)
	require.NoError(t, err)
	assert.Empty(t, items)

	// Lifer status starts over for a re-created user.
	again, err := sightings.LogSighting(ctx, 42, sightingInput("Robin", models.RarityCommon, 2024, time.February, 1))
	require.NoError(t, err)
	assert.True(t, again.IsLifer)
}

func TestDeleteUnknownUser(t *testing.T) {
	users := services.NewUserService(repository.NewMemoryStore(), nil)
	assert.ErrorIs(t, users.DeleteUser(context.Background(), 404), models.ErrNotFound)
}

func TestUserStoreFailure(t *testing.T) {
	ctx := context.Background()
	users := services.NewUserService(failingStore{}, nil)

	_, err := users.UpsertUser(ctx, 42, "EU")
	assert.ErrorIs(t, err, errBoom)
	_, err = users.GetUser(ctx, 42)
	assert.ErrorIs(t, err, errBoom)
	assert.ErrorIs(t, users.DeleteUser(ctx, 42), errBoom)
}
