// Package events carries user-facing notifications from the services to the
// WebSocket hub, either in-process or across instances through Redis.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Type identifies the kind of event
type Type string

const (
	SightingLogged     Type = "sighting_logged"
	ChecklistItemFound Type = "checklist_item_found"
)

// Event is a notification addressed to one user
type Event struct {
	ID         string          `json:"id"`
	Type       Type            `json:"type"`
	TelegramID int64           `json:"telegram_id"`
	Timestamp  int64           `json:"timestamp"`
	Data       json.RawMessage `json:"data,omitempty"`
}

// New builds an event with payload encoded as its data
func New(typ Type, telegramID int64, payload any) (Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Event{}, fmt.Errorf("failed to marshal event payload: %w", err)
	}
	return Event{
		ID:         uuid.NewString(),
		Type:       typ,
		TelegramID: telegramID,
		Timestamp:  time.Now().UnixMilli(),
		Data:       data,
	}, nil
}

// Publisher sends events towards subscribers
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// Handler consumes delivered events
type Handler func(Event)

// LocalBus delivers events synchronously within the process
type LocalBus struct {
	handler Handler
}

// NewLocalBus creates a bus delivering to handler
func NewLocalBus(handler Handler) *LocalBus {
	return &LocalBus{handler: handler}
}

// Publish hands the event to the handler
func (b *LocalBus) Publish(_ context.Context, event Event) error {
	b.handler(event)
	return nil
}
