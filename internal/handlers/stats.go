package handlers

import (
	"net/http"

	"birdfolio-backend/internal/services"

	"github.com/rs/zerolog/log"
)

// StatsHandler serves the aggregate figures of a user
type StatsHandler struct {
	statsService *services.StatsService
}

// NewStatsHandler creates a new stats handler
func NewStatsHandler(statsService *services.StatsService) *StatsHandler {
	return &StatsHandler{
		statsService: statsService,
	}
}

// GetStats handles GET /users/{telegram_id}/stats
func (h *StatsHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	id := telegramID(r)

	stats, err := h.statsService.GetStats(r.Context(), id)
	if err != nil {
		log.Error().Err(err).Int64("telegram_id", id).Msg("Failed to get stats")
		respondError(w, "Failed to get stats", statusFor(err))
		return
	}

	respondJSON(w, http.StatusOK, stats)
}
