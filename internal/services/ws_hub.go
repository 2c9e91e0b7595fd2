package services

import (
	"encoding/json"
	"fmt"
	"sync"

	"birdfolio-backend/internal/events"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// WSMessage represents a WebSocket message
type WSMessage struct {
	Type      string          `json:"type"`
	Timestamp int64           `json:"timestamp,omitempty"`
	Message   string          `json:"message,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
}

// wsConn serializes writes; gorilla connections allow one concurrent writer
type wsConn struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (c *wsConn) write(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// WSHub manages WebSocket connections, one per user
type WSHub struct {
	mu          sync.RWMutex
	connections map[int64]*wsConn
}

// NewWSHub creates a new WebSocket hub
func NewWSHub() *WSHub {
	return &WSHub{
		connections: make(map[int64]*wsConn),
	}
}

// Register registers a new WebSocket connection for a user, replacing any
// previous one
func (h *WSHub) Register(telegramID int64, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if existing, ok := h.connections[telegramID]; ok {
		existing.conn.Close()
	}

	h.connections[telegramID] = &wsConn{conn: conn}

	log.Info().Int64("telegram_id", telegramID).Msg("WebSocket connection registered")
}

// Unregister removes the user's connection if it is still conn
func (h *WSHub) Unregister(telegramID int64, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if existing, ok := h.connections[telegramID]; ok && existing.conn == conn {
		existing.conn.Close()
		delete(h.connections, telegramID)
		log.Info().Int64("telegram_id", telegramID).Msg("WebSocket connection unregistered")
	}
}

// SendToUser sends a message to a specific user
func (h *WSHub) SendToUser(telegramID int64, message WSMessage) error {
	h.mu.RLock()
	c, exists := h.connections[telegramID]
	h.mu.RUnlock()

	if !exists {
		return fmt.Errorf("user %d is not connected", telegramID)
	}

	data, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	if err := c.write(data); err != nil {
		h.Unregister(telegramID, c.conn)
		return fmt.Errorf("failed to send message: %w", err)
	}

	return nil
}

// IsOnline checks if a user is online
func (h *WSHub) IsOnline(telegramID int64) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, exists := h.connections[telegramID]
	return exists
}

// Deliver forwards an event to its user when they are connected to this
// instance. It is the events.Handler of the hub.
func (h *WSHub) Deliver(event events.Event) {
	if !h.IsOnline(event.TelegramID) {
		return
	}

	message := WSMessage{
		Type:      string(event.Type),
		Timestamp: event.Timestamp,
		Data:      event.Data,
	}
	if err := h.SendToUser(event.TelegramID, message); err != nil {
		log.Error().
			Err(err).
			Int64("telegram_id", event.TelegramID).
			Str("type", string(event.Type)).
			Msg("Failed to deliver event")
	}
}
