package events

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEncodesPayload(t *testing.T) {
	event, err := New(SightingLogged, 42, map[string]any{"common_name": "Robin", "is_lifer": true})
	require.NoError(t, err)

	assert.NotEmpty(t, event.ID)
	assert.Equal(t, SightingLogged, event.Type)
	assert.Equal(t, int64(42), event.TelegramID)
	assert.NotZero(t, event.Timestamp)

	var payload map[string]any
	require.NoError(t, json.Unmarshal(event.Data, &payload))
	assert.Equal(t, "Robin", payload["common_name"])
	assert.Equal(t, true, payload["is_lifer"])
}

func TestNewRejectsUnencodablePayload(t *testing.T) {
	_, err := New(SightingLogged, 42, make(chan int))
	assert.Error(t, err)
}

func TestLocalBusDeliversSynchronously(t *testing.T) {
	var got []Event
	bus := NewLocalBus(func(e Event) { got = append(got, e) })

	event, err := New(ChecklistItemFound, 7, map[string]string{"slug": "robin"})
	require.NoError(t, err)

	require.NoError(t, bus.Publish(context.Background(), event))
	require.Len(t, got, 1)
	assert.Equal(t, event.ID, got[0].ID)
}

func TestConnectWithoutURL(t *testing.T) {
	client, err := Connect(context.Background(), "")
	require.NoError(t, err)
	assert.Nil(t, client)
}

func TestConnectRejectsMalformedURL(t *testing.T) {
	_, err := Connect(context.Background(), "://nope")
	assert.Error(t, err)
}
