package services

import (
	"context"
	"fmt"

	"birdfolio-backend/internal/metrics"
	"birdfolio-backend/internal/models"
)

// UserService handles user-related business logic
type UserService struct {
	store   Store
	metrics *metrics.Metrics
}

// NewUserService creates a new user service. m may be nil.
func NewUserService(store Store, m *metrics.Metrics) *UserService {
	return &UserService{
		store:   store,
		metrics: m,
	}
}

// UpsertUser creates the user or moves an existing one to region
func (s *UserService) UpsertUser(ctx context.Context, telegramID int64, region string) (user *models.User, err error) {
	ctx, span := startSpan(ctx, "UserService.UpsertUser", telegramID)
	defer func() { endSpan(span, err) }()

	err = s.store.WithTx(ctx, func(ctx context.Context, repos Repositories) error {
		var txErr error
		user, txErr = repos.Users.Upsert(ctx, telegramID, region)
		return txErr
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upsert user: %w", err)
	}

	if s.metrics != nil {
		s.metrics.UsersUpserted.Inc()
	}
	return user, nil
}

// GetUser returns the user or models.ErrNotFound
func (s *UserService) GetUser(ctx context.Context, telegramID int64) (user *models.User, err error) {
	ctx, span := startSpan(ctx, "UserService.GetUser", telegramID)
	defer func() { endSpan(span, err) }()

	err = s.store.WithReadTx(ctx, func(ctx context.Context, repos Repositories) error {
		var txErr error
		user, txErr = repos.Users.GetByTelegramID(ctx, telegramID)
		return txErr
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// DeleteUser removes the user together with its sightings and checklist
func (s *UserService) DeleteUser(ctx context.Context, telegramID int64) (err error) {
	ctx, span := startSpan(ctx, "UserService.DeleteUser", telegramID)
	defer func() { endSpan(span, err) }()

	err = s.store.WithTx(ctx, func(ctx context.Context, repos Repositories) error {
		return repos.Users.Delete(ctx, telegramID)
	})
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}
