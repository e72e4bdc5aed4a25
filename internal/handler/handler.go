package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/samippaudel/engagement-service/internal/domain"
	"github.com/samippaudel/engagement-service/internal/service"
)

type Handler struct {
	service *service.Service
}

func NewHandler(svc *service.Service) *Handler {
	return &Handler{service: svc}
}

// write JSON response
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writes JSON error response.
func writeError(w http.ResponseWriter, status int, errCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Error:   errCode,
		Message: message,
	})
}

// parseUserID reads the optional user_id query parameter. Absent or
// malformed values mean anonymous, never an error: recommendations must
// not block a page render on a bad id.
func parseUserID(r *http.Request) int64 {
	raw := r.URL.Query().Get("user_id")
	if raw == "" {
		return 0
	}
	userID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || userID < 0 {
		return 0
	}
	return userID
}

// parseLimit validates an optional limit parameter against [1, max].
func parseLimit(r *http.Request, fallback, max int) (int, bool) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return fallback, true
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 1 || limit > max {
		return 0, false
	}
	return limit, true
}

// parseStrategy validates an optional strategy parameter; empty selects
// the configured default.
func parseStrategy(r *http.Request) (domain.Strategy, bool) {
	raw := r.URL.Query().Get("strategy")
	if raw == "" {
		return "", true
	}
	strategy := domain.Strategy(raw)
	return strategy, strategy.Valid()
}
