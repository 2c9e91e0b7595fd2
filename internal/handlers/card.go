package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"birdfolio-backend/internal/services"

	"github.com/rs/zerolog/log"
)

// CardHandler issues upload URLs for rendered sighting cards
type CardHandler struct {
	cardService *services.CardService
}

// NewCardHandler creates a new card handler
func NewCardHandler(cardService *services.CardService) *CardHandler {
	return &CardHandler{
		cardService: cardService,
	}
}

// UploadCard handles POST /users/{telegram_id}/cards/upload
func (h *CardHandler) UploadCard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := telegramID(r)

	// An empty body asks for the default content type.
	var req services.CardUploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	upload, err := h.cardService.CreateUploadURL(ctx, id, req.ContentType)
	if err != nil {
		status := statusFor(err)
		if status == http.StatusServiceUnavailable {
			respondError(w, err.Error(), status)
			return
		}
		log.Error().Err(err).Int64("telegram_id", id).Msg("Failed to generate pre-signed URL")
		respondError(w, "Failed to generate upload URL", status)
		return
	}

	log.Info().
		Int64("telegram_id", id).
		Str("card_png_url", upload.CardPNGURL).
		Msg("Pre-signed URL generated")

	respondJSON(w, http.StatusOK, upload)
}
