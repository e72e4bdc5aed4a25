package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/samippaudel/engagement-service/internal/handler"
)

func Setup(h *handler.Handler) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	// Routes
	r.Get("/recommendations", h.GetRecommendationOverview)
	r.Get("/recommendations/posts", h.GetPostRecommendations)
	r.Get("/recommendations/users", h.GetUserRecommendations)
	r.Get("/trending/topics", h.GetTrendingTopics)
	r.Get("/trending/posts", h.GetTrendingPosts)
	r.Get("/posts/{postID}/trending-score", h.GetPostTrendingScore)
	r.Post("/posts/{postID}/views", h.RecordPostView)
	r.Get("/users/{userID}/similarity/{otherID}", h.GetUserSimilarity)
	r.Get("/health", healthCheck)

	return r
}

func healthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
