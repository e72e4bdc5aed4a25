package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/samippaudel/engagement-service/internal/domain"
)

// POST /posts/{postID}/views
func (h *Handler) RecordPostView(w http.ResponseWriter, r *http.Request) {
	postID, ok := parsePathID(r, "postID")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_parameter", "Invalid post_id parameter")
		return
	}
	userIDStr := r.URL.Query().Get("user_id")
	userID, err := strconv.ParseInt(userIDStr, 10, 64)
	if err != nil || userID <= 0 {
		writeError(w, http.StatusBadRequest, "invalid_parameter", "Invalid user_id parameter")
		return
	}

	if err := h.service.RecordPostView(r.Context(), postID, userID); err != nil {
		switch {
		case errors.Is(err, domain.ErrUserNotFound):
			writeError(w, http.StatusNotFound, "user_not_found",
				fmt.Sprintf("User with ID %d does not exist", userID))
		case errors.Is(err, domain.ErrPostNotFound):
			writeError(w, http.StatusNotFound, "post_not_found",
				fmt.Sprintf("Post with ID %d does not exist", postID))
		default:
			writeServiceError(w, err)
		}
		return
	}

	writeJSON(w, http.StatusCreated, PostViewResponse{PostID: postID, UserID: userID})
}

// GET /users/{userID}/similarity/{otherID}
func (h *Handler) GetUserSimilarity(w http.ResponseWriter, r *http.Request) {
	userID, ok := parsePathID(r, "userID")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_parameter", "Invalid user_id parameter")
		return
	}
	otherID, ok := parsePathID(r, "otherID")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_parameter", "Invalid user_id parameter")
		return
	}

	pair, err := h.service.UserSimilarity(r.Context(), userID, otherID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, UserSimilarityResponse{
		User1ID: pair.User1ID,
		User2ID: pair.User2ID,
		Score:   pair.Score,
		Overlap: pair.Overlap,
	})
}

func parsePathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
