package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"birdfolio-backend/internal/config"
	"birdfolio-backend/internal/events"
	"birdfolio-backend/internal/handlers"
	"birdfolio-backend/internal/metrics"
	"birdfolio-backend/internal/migrations"
	"birdfolio-backend/internal/repository"
	"birdfolio-backend/internal/services"
	"birdfolio-backend/internal/telemetry"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 15 * time.Second

func Run() {
	// Load configuration
	cfg, err := config.Load(configPath())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Setup logger
	setupLogger(cfg.Log.Level)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := serve(ctx, cfg); err != nil {
		log.Fatal().Err(err).Msg("Server failed")
	}

	log.Info().Msg("Server exited")
}

func configPath() string {
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		return path
	}
	return "config.yaml"
}

func serve(ctx context.Context, cfg *config.Config) error {
	checks := make(map[string]handlers.Pinger)

	// Connect to database
	var (
		store   services.Store
		migrate handlers.Migrator
	)
	switch cfg.Database.Driver {
	case config.DriverMemory:
		store = repository.NewMemoryStore()
		log.Warn().Msg("Using in-memory store, data is lost on exit")
	case config.DriverPostgres:
		db, err := pgxpool.New(ctx, cfg.Database.DSN())
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer db.Close()

		if err := db.Ping(ctx); err != nil {
			return fmt.Errorf("failed to ping database: %w", err)
		}
		log.Info().Msg("Database connection established")

		migrate = func(ctx context.Context) ([]int64, error) {
			return migrations.Up(ctx, db)
		}
		if cfg.Database.MigrateOnStart {
			applied, err := migrate(ctx)
			if err != nil {
				return err
			}
			log.Info().Ints64("versions", applied).Msg("Migrations applied")
		}

		store = repository.NewPostgresStore(db)
	default:
		return fmt.Errorf("unknown database driver %q", cfg.Database.Driver)
	}
	checks["database"] = store

	// Event delivery
	wsHub := services.NewWSHub()
	redisClient, err := events.Connect(ctx, cfg.Redis.URL)
	if err != nil {
		return err
	}

	var (
		publisher events.Publisher
		redisBus  *events.RedisBus
	)
	if redisClient != nil {
		defer redisClient.Close()
		redisBus = events.NewRedisBus(redisClient, cfg.Redis.Channel)
		publisher = redisBus
		checks["redis"] = handlers.PingFunc(func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		})
		log.Info().Msg("Redis event bus enabled")
	} else {
		publisher = events.NewLocalBus(wsHub.Deliver)
	}

	m := metrics.New(prometheus.DefaultRegisterer)

	// Initialize services
	userService := services.NewUserService(store, m)
	sightingService := services.NewSightingService(store, publisher, m)
	checklistService := services.NewChecklistService(store, publisher, m)
	statsService := services.NewStatsService(store, m)
	cardService, err := services.NewCardService(ctx, services.CardStorageConfig{
		Region:        cfg.AWS.Region,
		Bucket:        cfg.AWS.S3Bucket,
		AccessKey:     cfg.AWS.AccessKey,
		SecretKey:     cfg.AWS.SecretKey,
		Endpoint:      cfg.AWS.Endpoint,
		PublicBaseURL: cfg.AWS.PublicBaseURL,
	})
	if err != nil {
		return fmt.Errorf("failed to create card service: %w", err)
	}
	if !cardService.Enabled() {
		log.Warn().Msg("No S3 bucket configured, card uploads are disabled")
	}

	// Initialize handlers
	router := handlers.NewRouter(handlers.Router{
		Users:     handlers.NewUserHandler(userService),
		Sightings: handlers.NewSightingHandler(sightingService),
		Checklist: handlers.NewChecklistHandler(checklistService),
		Stats:     handlers.NewStatsHandler(statsService),
		Cards:     handlers.NewCardHandler(cardService),
		WebSocket: handlers.NewWebSocketHandler(wsHub),
		System:    handlers.NewSystemHandler(checks, migrate),
		Metrics:   promhttp.Handler(),
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	shutdownTracing, err := telemetry.Setup(cfg.Tracing)
	if err != nil {
		return fmt.Errorf("failed to set up tracing: %w", err)
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info().
			Str("host", cfg.Server.Host).
			Int("port", cfg.Server.Port).
			Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed to start: %w", err)
		}
		return nil
	})

	if redisBus != nil {
		g.Go(func() error {
			return redisBus.Run(ctx, wsHub.Deliver)
		})
	}

	g.Go(func() error {
		<-ctx.Done()
		log.Info().Msg("Shutting down server...")

		// Graceful shutdown with timeout
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Server forced to shutdown")
		}
		if err := shutdownTracing(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Failed to flush traces")
		}
		return nil
	})

	return g.Wait()
}

// setupLogger configures zerolog logger. Unknown levels fall back to info.
func setupLogger(level string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	parsed, err := zerolog.ParseLevel(level)
	if err != nil || parsed == zerolog.NoLevel {
		parsed = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(parsed)
}
