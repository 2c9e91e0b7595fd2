package handlers

import (
	"encoding/json"
	"net/http"

	"birdfolio-backend/internal/services"

	"github.com/rs/zerolog/log"
)

// UserHandler handles user-related HTTP requests
type UserHandler struct {
	userService *services.UserService
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// UpsertUserRequest represents the request body for registering a user
type UpsertUserRequest struct {
	TelegramID int64  `json:"telegram_id"`
	Region     string `json:"region"`
}

// UpsertUser handles POST /users
func (h *UserHandler) UpsertUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req UpsertUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.TelegramID == 0 {
		respondError(w, "telegram_id is required", http.StatusBadRequest)
		return
	}

	user, err := h.userService.UpsertUser(ctx, req.TelegramID, req.Region)
	if err != nil {
		log.Error().Err(err).Int64("telegram_id", req.TelegramID).Msg("Failed to upsert user")
		respondError(w, "Failed to upsert user", statusFor(err))
		return
	}

	log.Info().
		Int64("telegram_id", user.TelegramID).
		Str("region", user.Region).
		Msg("User upserted")

	respondJSON(w, http.StatusOK, user)
}

// GetUser handles GET /users/{telegram_id}
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	id := telegramID(r)

	user, err := h.userService.GetUser(r.Context(), id)
	if err != nil {
		status := statusFor(err)
		if status == http.StatusNotFound {
			respondError(w, "User not found", status)
			return
		}
		log.Error().Err(err).Int64("telegram_id", id).Msg("Failed to get user")
		respondError(w, "Failed to get user", status)
		return
	}

	respondJSON(w, http.StatusOK, user)
}

// DeleteUser handles DELETE /users/{telegram_id}
func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id := telegramID(r)

	if err := h.userService.DeleteUser(r.Context(), id); err != nil {
		status := statusFor(err)
		if status == http.StatusNotFound {
			respondError(w, "User not found", status)
			return
		}
		log.Error().Err(err).Int64("telegram_id", id).Msg("Failed to delete user")
		respondError(w, "Failed to delete user", status)
		return
	}

	log.Info().Int64("telegram_id", id).Msg("User deleted")
	w.WriteHeader(http.StatusNoContent)
}
