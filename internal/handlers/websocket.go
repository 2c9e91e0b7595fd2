package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"birdfolio-backend/internal/middleware"
	"birdfolio-backend/internal/services"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Mini App clients connect from the Telegram web view origin
	},
}

// WebSocketHandler serves the live event feed
type WebSocketHandler struct {
	hub *services.WSHub
}

// NewWebSocketHandler creates a new WebSocket handler
func NewWebSocketHandler(hub *services.WSHub) *WebSocketHandler {
	return &WebSocketHandler{
		hub: hub,
	}
}

// HandleWebSocket handles GET /ws?telegram_id=
//
// The feed is unauthenticated: any client naming a telegram_id receives that
// user's sighting_logged and checklist_item_found events.
func (h *WebSocketHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	id, err := middleware.ParseTelegramID(r.URL.Query().Get("telegram_id"))
	if err != nil {
		respondError(w, "invalid telegram_id", http.StatusBadRequest)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("Failed to upgrade WebSocket connection")
		return
	}

	h.hub.Register(id, conn)
	defer h.hub.Unregister(id, conn)

	if err := h.hub.SendToUser(id, services.WSMessage{Type: "connected", Timestamp: time.Now().UnixMilli()}); err != nil {
		log.Error().Err(err).Int64("telegram_id", id).Msg("Failed to send connected message")
		return
	}

	log.Info().Int64("telegram_id", id).Msg("WebSocket connection established")

	// The feed is server to client; inbound frames only answer pings.
	for {
		_, messageBytes, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				log.Error().Err(err).Int64("telegram_id", id).Msg("WebSocket error")
			}
			return
		}

		var msg services.WSMessage
		if err := json.Unmarshal(messageBytes, &msg); err != nil {
			h.sendError(id, "Invalid message format")
			continue
		}

		switch msg.Type {
		case "ping":
			h.reply(id, services.WSMessage{Type: "pong", Timestamp: time.Now().UnixMilli()})
		default:
			h.sendError(id, "Unknown message type")
		}
	}
}

func (h *WebSocketHandler) sendError(telegramID int64, message string) {
	h.reply(telegramID, services.WSMessage{Type: "error", Message: message})
}

func (h *WebSocketHandler) reply(telegramID int64, msg services.WSMessage) {
	if err := h.hub.SendToUser(telegramID, msg); err != nil {
		log.Error().Err(err).Int64("telegram_id", telegramID).Str("type", msg.Type).Msg("Failed to send WebSocket message")
	}
}
