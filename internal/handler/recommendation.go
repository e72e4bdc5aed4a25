package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/samippaudel/engagement-service/internal/domain"
)

// GET /recommendations/posts
func (h *Handler) GetPostRecommendations(w http.ResponseWriter, r *http.Request) {
	userID := parseUserID(r)

	limit, ok := parseLimit(r, 12, 50)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_parameter", "Invalid limit parameter")
		return
	}
	strategy, ok := parseStrategy(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_parameter", "Invalid strategy parameter")
		return
	}

	result, err := h.service.RecommendPosts(r.Context(), userID, limit, strategy)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, PostRecommendationsResponse{
		UserID: userID,
		Posts:  result.Posts,
		Metadata: domain.RecommendationMeta{
			Strategy:    result.Strategy,
			CacheHit:    result.CacheHit,
			GeneratedAt: time.Now().UTC().Format(time.RFC3339),
			TotalCount:  len(result.Posts),
		},
	})
}

// GET /recommendations/users
func (h *Handler) GetUserRecommendations(w http.ResponseWriter, r *http.Request) {
	userID := parseUserID(r)

	limit, ok := parseLimit(r, 12, 50)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_parameter", "Invalid limit parameter")
		return
	}

	result, err := h.service.RecommendUsers(r.Context(), userID, limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, UserRecommendationsResponse{
		UserID: userID,
		Users:  result.Users,
		Metadata: domain.RecommendationMeta{
			CacheHit:    result.CacheHit,
			GeneratedAt: time.Now().UTC().Format(time.RFC3339),
			TotalCount:  len(result.Users),
		},
	})
}

// GET /recommendations — combined posts, users and topics for one render.
func (h *Handler) GetRecommendationOverview(w http.ResponseWriter, r *http.Request) {
	userID := parseUserID(r)

	overview, err := h.service.RecommendationOverview(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, overview)
}

func writeServiceError(w http.ResponseWriter, err error) {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		writeError(w, http.StatusServiceUnavailable, "request_timeout",
			"Request timed out, please try again")
		return
	}
	writeError(w, http.StatusInternalServerError, "internal_error", "An unexpected error occurred")
}
