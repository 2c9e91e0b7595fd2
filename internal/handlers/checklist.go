package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"birdfolio-backend/internal/models"
	"birdfolio-backend/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// ChecklistHandler handles checklist-related HTTP requests
type ChecklistHandler struct {
	checklistService *services.ChecklistService
}

// NewChecklistHandler creates a new checklist handler
func NewChecklistHandler(checklistService *services.ChecklistService) *ChecklistHandler {
	return &ChecklistHandler{
		checklistService: checklistService,
	}
}

// GetChecklist handles GET /users/{telegram_id}/checklist
func (h *ChecklistHandler) GetChecklist(w http.ResponseWriter, r *http.Request) {
	id := telegramID(r)

	items, err := h.checklistService.GetChecklist(r.Context(), id)
	if err != nil {
		log.Error().Err(err).Int64("telegram_id", id).Msg("Failed to get checklist")
		respondError(w, "Failed to get checklist", statusFor(err))
		return
	}

	respondJSON(w, http.StatusOK, items)
}

// BulkCreateChecklist handles POST /users/{telegram_id}/checklist
func (h *ChecklistHandler) BulkCreateChecklist(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := telegramID(r)

	var items []models.ChecklistItemInput
	if err := json.NewDecoder(r.Body).Decode(&items); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	for i, item := range items {
		if item.Slug == "" || item.Species == "" {
			respondError(w, fmt.Sprintf("item %d: species and slug are required", i), http.StatusBadRequest)
			return
		}
	}

	created, err := h.checklistService.BulkCreateChecklist(ctx, id, items)
	if err != nil {
		log.Error().Err(err).Int64("telegram_id", id).Int("items", len(items)).Msg("Failed to create checklist")
		respondError(w, "Failed to create checklist", statusFor(err))
		return
	}

	log.Info().Int64("telegram_id", id).Int64("created", created).Msg("Checklist created")

	respondJSON(w, http.StatusCreated, map[string]int64{"created": created})
}

// MarkFound handles PATCH /users/{telegram_id}/checklist/{slug}
func (h *ChecklistHandler) MarkFound(w http.ResponseWriter, r *http.Request) {
	id := telegramID(r)
	slug := chi.URLParam(r, "slug")

	item, err := h.checklistService.MarkFound(r.Context(), id, slug)
	if err != nil {
		status := statusFor(err)
		if status == http.StatusNotFound {
			respondError(w, "Checklist item not found", status)
			return
		}
		log.Error().Err(err).Int64("telegram_id", id).Str("slug", slug).Msg("Failed to mark checklist item found")
		respondError(w, "Failed to mark checklist item found", status)
		return
	}

	log.Info().Int64("telegram_id", id).Str("slug", slug).Msg("Checklist item found")

	respondJSON(w, http.StatusOK, item)
}
