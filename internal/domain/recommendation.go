package domain

// Strategy selects how post recommendation scores are composed.
type Strategy string

const (
	// StrategyCollaborative ranks purely by summed similarity weights.
	StrategyCollaborative Strategy = "collaborative"
	// StrategyHybrid blends collaborative, content, trending and social
	// components at fixed weights.
	StrategyHybrid Strategy = "hybrid"
)

func (s Strategy) Valid() bool {
	return s == StrategyCollaborative || s == StrategyHybrid
}

type ScoredPost struct {
	PostID int64   `json:"post_id"`
	Score  float64 `json:"score"`
}

type ScoredUser struct {
	UserID int64   `json:"user_id"`
	Score  float64 `json:"score"`
}

// SimilarityPair caches a computed similarity weight between two users,
// keyed by the unordered pair. Overlap is the number of shared interactions
// contributing to the score.
type SimilarityPair struct {
	User1ID int64   `json:"user1_id"`
	User2ID int64   `json:"user2_id"`
	Score   float64 `json:"score"`
	Overlap int     `json:"overlap"`
}

type RecommendationMeta struct {
	Strategy    Strategy `json:"strategy,omitempty"`
	CacheHit    bool     `json:"cache_hit"`
	GeneratedAt string   `json:"generated_at"`
	TotalCount  int      `json:"total_count"`
}

type PostRecommendationResult struct {
	Posts    []ScoredPost
	Strategy Strategy
	CacheHit bool
}

type UserRecommendationResult struct {
	Users    []ScoredUser
	CacheHit bool
}
