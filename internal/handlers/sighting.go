package handlers

import (
	"encoding/json"
	"net/http"

	"birdfolio-backend/internal/models"
	"birdfolio-backend/internal/services"

	"github.com/rs/zerolog/log"
)

// SightingHandler handles sighting-related HTTP requests
type SightingHandler struct {
	sightingService *services.SightingService
}

// NewSightingHandler creates a new sighting handler
func NewSightingHandler(sightingService *services.SightingService) *SightingHandler {
	return &SightingHandler{
		sightingService: sightingService,
	}
}

// LogSighting handles POST /users/{telegram_id}/sightings
func (h *SightingHandler) LogSighting(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := telegramID(r)

	var req models.SightingInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	// region seeds the user's region on first sighting and is never revised
	for _, field := range []struct{ name, value string }{
		{"common_name", req.CommonName},
		{"scientific_name", req.ScientificName},
		{"rarity", string(req.Rarity)},
		{"region", req.Region},
	} {
		if field.value == "" {
			respondError(w, field.name+" is required", http.StatusBadRequest)
			return
		}
	}
	if !req.DateSpotted.Valid {
		respondError(w, "date_spotted is required", http.StatusBadRequest)
		return
	}

	sighting, err := h.sightingService.LogSighting(ctx, id, req)
	if err != nil {
		log.Error().
			Err(err).
			Int64("telegram_id", id).
			Str("common_name", req.CommonName).
			Msg("Failed to log sighting")
		respondError(w, "Failed to log sighting", statusFor(err))
		return
	}

	log.Info().
		Int64("telegram_id", id).
		Int64("sighting_id", sighting.ID).
		Str("common_name", sighting.CommonName).
		Bool("is_lifer", sighting.IsLifer).
		Msg("Sighting logged")

	respondJSON(w, http.StatusCreated, sighting)
}

// ListSightings handles GET /users/{telegram_id}/sightings
func (h *SightingHandler) ListSightings(w http.ResponseWriter, r *http.Request) {
	id := telegramID(r)

	sightings, err := h.sightingService.ListSightings(r.Context(), id)
	if err != nil {
		log.Error().Err(err).Int64("telegram_id", id).Msg("Failed to list sightings")
		respondError(w, "Failed to list sightings", statusFor(err))
		return
	}

	respondJSON(w, http.StatusOK, sightings)
}
