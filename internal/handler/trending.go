package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/samippaudel/engagement-service/internal/domain"
)

// GET /trending/topics
func (h *Handler) GetTrendingTopics(w http.ResponseWriter, r *http.Request) {
	limit, ok := parseLimit(r, 10, 50)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_parameter", "Invalid limit parameter")
		return
	}

	topics, err := h.service.TrendingTopics(r.Context(), limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, TrendingTopicsResponse{Topics: topics})
}

// GET /trending/posts
func (h *Handler) GetTrendingPosts(w http.ResponseWriter, r *http.Request) {
	limit, ok := parseLimit(r, 12, 50)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_parameter", "Invalid limit parameter")
		return
	}

	posts, err := h.service.TrendingPosts(r.Context(), limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, TrendingPostsResponse{Posts: posts})
}

// GET /posts/{postID}/trending-score
func (h *Handler) GetPostTrendingScore(w http.ResponseWriter, r *http.Request) {
	postIDStr := chi.URLParam(r, "postID")
	postID, err := strconv.ParseInt(postIDStr, 10, 64)
	if err != nil || postID <= 0 {
		writeError(w, http.StatusBadRequest, "invalid_parameter", "Invalid post_id parameter")
		return
	}

	score, err := h.service.PostTrendingScore(r.Context(), postID)
	if err != nil {
		if errors.Is(err, domain.ErrPostNotFound) {
			writeError(w, http.StatusNotFound, "post_not_found",
				fmt.Sprintf("Post with ID %d does not exist", postID))
			return
		}
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, TrendingScoreResponse{PostID: postID, Score: score})
}
