//go:build integration

package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"birdfolio-backend/internal/migrations"
	"birdfolio-backend/internal/models"
	"birdfolio-backend/internal/services"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

type PostgresStoreSuite struct {
	suite.Suite
	container *postgres.PostgresContainer
	pool      *pgxpool.Pool
	store     *PostgresStore
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	ctx := context.Background()

	container, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("birdfolio"),
		postgres.WithUsername("birdfolio"),
		postgres.WithPassword("birdfolio"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	s.Require().NoError(err)
	s.container = container

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	s.Require().NoError(err)

	pool, err := pgxpool.New(ctx, dsn)
	s.Require().NoError(err)
	s.pool = pool

	applied, err := migrations.Up(ctx, pool)
	s.Require().NoError(err)
	s.Equal([]int64{1}, applied)

	s.store = NewPostgresStore(pool)
}

func (s *PostgresStoreSuite) TearDownSuite() {
	if s.pool != nil {
		s.pool.Close()
	}
	if s.container != nil {
		_ = s.container.Terminate(context.Background())
	}
}

func (s *PostgresStoreSuite) SetupTest() {
	_, err := s.pool.Exec(context.Background(), `TRUNCATE users, sightings, checklist RESTART IDENTITY CASCADE`)
	s.Require().NoError(err)
}

func input(commonName string, rarity models.Rarity, spotted time.Time) models.SightingInput {
	return models.SightingInput{
		CommonName:     commonName,
		ScientificName: commonName,
		Rarity:         rarity,
		Region:         "EU",
		DateSpotted:    models.NewDate(spotted),
	}
}

func (s *PostgresStoreSuite) TestMigrationsAreIdempotent() {
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make(chan error, 3)
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			applied, err := migrations.Up(ctx, s.pool)
			if err == nil && len(applied) != 0 {
				s.Failf("unexpected migrations", "applied %v", applied)
			}
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		s.NoError(err)
	}
}

func (s *PostgresStoreSuite) TestExampleHistory() {
	ctx := context.Background()
	sightings := services.NewSightingService(s.store, nil, nil)
	stats := services.NewStatsService(s.store, nil)

	robin, err := sightings.LogSighting(ctx, 42, input("Robin", models.RarityCommon, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)))
	s.Require().NoError(err)
	s.True(robin.IsLifer)
	s.NotZero(robin.ID)
	s.False(robin.CreatedAt.IsZero())

	again, err := sightings.LogSighting(ctx, 42, input("Robin", models.RarityCommon, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)))
	s.Require().NoError(err)
	s.False(again.IsLifer)

	eagle, err := sightings.LogSighting(ctx, 42, input("Eagle", models.RaritySuperRare, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)))
	s.Require().NoError(err)
	s.True(eagle.IsLifer)

	list, err := sightings.ListSightings(ctx, 42)
	s.Require().NoError(err)
	s.Require().Len(list, 3)
	s.Equal(eagle.ID, list[0].ID)
	s.Equal(models.NewDate(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)), list[0].DateSpotted)

	got, err := stats.GetStats(ctx, 42)
	s.Require().NoError(err)
	s.Equal(3, got.TotalSightings)
	s.Equal(2, got.TotalSpecies)
	s.Equal("Eagle", got.RarestBird.CommonName)
	s.Equal("Eagle", got.MostRecent.CommonName)
}

func (s *PostgresStoreSuite) TestConcurrentSubmitsYieldOneLifer() {
	ctx := context.Background()
	sightings := services.NewSightingService(s.store, nil, nil)

	const submits = 10
	var wg sync.WaitGroup
	results := make(chan *models.Sighting, submits)
	errs := make(chan error, submits)
	for i := 0; i < submits; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sighting, err := sightings.LogSighting(ctx, 7, input("Robin", models.RarityCommon, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)))
			if err != nil {
				errs <- err
				return
			}
			results <- sighting
		}()
	}
	wg.Wait()
	close(results)
	close(errs)

	for err := range errs {
		s.NoError(err)
	}

	lifers := 0
	for sighting := range results {
		if sighting.IsLifer {
			lifers++
		}
	}
	s.Equal(1, lifers)

	var stored int
	err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM sightings WHERE telegram_id = 7 AND is_lifer`).Scan(&stored)
	s.Require().NoError(err)
	s.Equal(1, stored)
}

func (s *PostgresStoreSuite) TestChecklistWorkflow() {
	ctx := context.Background()
	checklist := services.NewChecklistService(s.store, nil, nil)

	seed := []models.ChecklistItemInput{
		{Region: "EU", Species: "European Robin", Slug: "european-robin", RarityTier: models.RarityCommon},
		{Region: "EU", Species: "Golden Eagle", Slug: "golden-eagle", RarityTier: models.RaritySuperRare},
	}
	created, err := checklist.BulkCreateChecklist(ctx, 42, seed)
	s.Require().NoError(err)
	s.Equal(int64(2), created)
	_, err = checklist.BulkCreateChecklist(ctx, 42, seed)
	s.Require().NoError(err)

	found, err := checklist.MarkFound(ctx, 42, "golden-eagle")
	s.Require().NoError(err)
	s.True(found.Found)
	s.True(found.DateFound.Valid)
	s.Equal(int64(2), found.ID, "lowest id of the duplicated slug")

	_, err = checklist.MarkFound(ctx, 42, "dodo")
	s.ErrorIs(err, models.ErrNotFound)

	items, err := checklist.GetChecklist(ctx, 42)
	s.Require().NoError(err)
	s.Len(items, 4)
	foundCount := 0
	for _, item := range items {
		if item.Found {
			foundCount++
		}
	}
	s.Equal(1, foundCount)
}

func (s *PostgresStoreSuite) TestDeleteUserCascades() {
	ctx := context.Background()
	users := services.NewUserService(s.store, nil)
	sightings := services.NewSightingService(s.store, nil, nil)
	checklist := services.NewChecklistService(s.store, nil, nil)

	_, err := users.UpsertUser(ctx, 42, "EU")
	s.Require().NoError(err)
	_, err = sightings.LogSighting(ctx, 42, input("Robin", models.RarityCommon, time.Now()))
	s.Require().NoError(err)
	_, err = checklist.BulkCreateChecklist(ctx, 42, []models.ChecklistItemInput{{Region: "EU", Species: "Robin", Slug: "robin"}})
	s.Require().NoError(err)

	s.Require().NoError(users.DeleteUser(ctx, 42))
	s.ErrorIs(users.DeleteUser(ctx, 42), models.ErrNotFound)

	var remaining int
	err = s.pool.QueryRow(ctx, `SELECT (SELECT COUNT(*) FROM sightings) + (SELECT COUNT(*) FROM checklist)`).Scan(&remaining)
	s.Require().NoError(err)
	s.Zero(remaining)
}

func (s *PostgresStoreSuite) TestUpsertKeepsCreatedAt() {
	ctx := context.Background()
	users := services.NewUserService(s.store, nil)

	first, err := users.UpsertUser(ctx, 42, "EU")
	s.Require().NoError(err)
	second, err := users.UpsertUser(ctx, 42, "NA")
	s.Require().NoError(err)

	s.Equal("NA", second.Region)
	s.True(first.CreatedAt.Equal(second.CreatedAt))

	_, err = users.GetUser(ctx, 404)
	s.ErrorIs(err, models.ErrNotFound)
}

func (s *PostgresStoreSuite) TestReadTxIsReadOnly() {
	err := s.store.WithReadTx(context.Background(), func(ctx context.Context, repos services.Repositories) error {
		return repos.Users.EnsureExists(ctx, 1, "EU")
	})
	s.Error(err)
}
