package handler

import "github.com/samippaudel/engagement-service/internal/domain"

type PostRecommendationsResponse struct {
	UserID   int64                     `json:"user_id"`
	Posts    []domain.ScoredPost       `json:"posts"`
	Metadata domain.RecommendationMeta `json:"metadata"`
}

type UserRecommendationsResponse struct {
	UserID   int64                     `json:"user_id"`
	Users    []domain.ScoredUser       `json:"users"`
	Metadata domain.RecommendationMeta `json:"metadata"`
}

type TrendingTopicsResponse struct {
	Topics []domain.TrendingTopic `json:"topics"`
}

type TrendingPostsResponse struct {
	Posts []domain.ScoredPost `json:"posts"`
}

type TrendingScoreResponse struct {
	PostID int64   `json:"post_id"`
	Score  float64 `json:"score"`
}

type PostViewResponse struct {
	PostID int64 `json:"post_id"`
	UserID int64 `json:"user_id"`
}

type UserSimilarityResponse struct {
	User1ID int64   `json:"user1_id"`
	User2ID int64   `json:"user2_id"`
	Score   float64 `json:"score"`
	Overlap int     `json:"overlap"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
