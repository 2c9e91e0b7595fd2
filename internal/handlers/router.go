package handlers

import (
	"net/http"

	"birdfolio-backend/internal/middleware"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

// Router groups the handlers mounted by NewRouter
type Router struct {
	Users     *UserHandler
	Sightings *SightingHandler
	Checklist *ChecklistHandler
	Stats     *StatsHandler
	Cards     *CardHandler
	WebSocket *WebSocketHandler
	System    *SystemHandler
	Metrics   http.Handler
}

// NewRouter builds the HTTP routes of the service
func NewRouter(h Router) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(middleware.CORS)

	r.Get("/health", h.System.Health)
	r.Post("/setup", h.System.Setup)
	if h.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", h.Metrics)
	}

	r.Post("/users", h.Users.UpsertUser)
	r.Route("/users/{telegram_id}", func(r chi.Router) {
		r.Use(middleware.TelegramID)

		r.Get("/", h.Users.GetUser)
		r.Delete("/", h.Users.DeleteUser)

		r.Post("/sightings", h.Sightings.LogSighting)
		r.Get("/sightings", h.Sightings.ListSightings)

		r.Get("/checklist", h.Checklist.GetChecklist)
		r.Post("/checklist", h.Checklist.BulkCreateChecklist)
		r.Patch("/checklist/{slug}", h.Checklist.MarkFound)

		r.Get("/stats", h.Stats.GetStats)

		r.Post("/cards/upload", h.Cards.UploadCard)
	})

	// WebSocket route
	r.Get("/ws", h.WebSocket.HandleWebSocket)

	return r
}
