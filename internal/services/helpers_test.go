package services_test

import (
	"context"
	"errors"
	"sync"
	"time"

	"birdfolio-backend/internal/events"
	"birdfolio-backend/internal/models"
	"birdfolio-backend/internal/services"

	"github.com/jackc/pgx/v5/pgtype"
)

var errBoom = errors.New("boom")

func calendarDate(year int, month time.Month, day int) pgtype.Date {
	return models.NewDate(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

func sightingInput(commonName string, rarity models.Rarity, year int, month time.Month, day int) models.SightingInput {
	return models.SightingInput{
		CommonName:     commonName,
		ScientificName: commonName + " scientificus",
		Rarity:         rarity,
		Region:         "EU",
		DateSpotted:    calendarDate(year, month, day),
	}
}

// failingStore fails every unit of work
type failingStore struct{}

func (failingStore) WithTx(context.Context, func(context.Context, services.Repositories) error) error {
	return errBoom
}

func (failingStore) WithReadTx(context.Context, func(context.Context, services.Repositories) error) error {
	return errBoom
}

func (failingStore) Ping(context.Context) error { return errBoom }

// recordingPublisher keeps every published event
type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, event events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.err
}

func (p *recordingPublisher) published() []events.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]events.Event(nil), p.events...)
}
