package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

type contextKey string

const telegramIDKey contextKey = "telegram_id"

// TelegramID parses the {telegram_id} route parameter and stores it in the
// request context. Requests with a malformed id are rejected with 400.
func TelegramID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		telegramID, err := ParseTelegramID(chi.URLParam(r, "telegram_id"))
		if err != nil {
			respondError(w, "invalid telegram_id", http.StatusBadRequest)
			return
		}

		ctx := context.WithValue(r.Context(), telegramIDKey, telegramID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetTelegramID extracts the Telegram id from context
func GetTelegramID(ctx context.Context) (int64, bool) {
	telegramID, ok := ctx.Value(telegramIDKey).(int64)
	return telegramID, ok
}

// ParseTelegramID parses an id supplied outside the route, e.g. a query parameter
func ParseTelegramID(raw string) (int64, error) {
	return strconv.ParseInt(raw, 10, 64)
}

// respondError sends an error response
func respondError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
