package service

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/samippaudel/engagement-service/internal/domain"
	"github.com/samippaudel/engagement-service/internal/engine"
)

const (
	defaultLimit      = 12
	maxLimit          = 50
	defaultTopicLimit = 10
)

// Store is the repository surface the service depends on: the engine's
// read view plus the few lookups and writes the service itself needs.
type Store interface {
	engine.Store
	UserExists(ctx context.Context, userID int64) (bool, error)
	AddPostView(ctx context.Context, postID, userID int64) error
}

// ResultCache holds computed results as a performance aid. Every failure
// is logged and swallowed; correctness never depends on it.
type ResultCache interface {
	GetPosts(ctx context.Context, userID int64, limit int, strategy domain.Strategy) ([]domain.ScoredPost, bool, error)
	SetPosts(ctx context.Context, userID int64, limit int, strategy domain.Strategy, posts []domain.ScoredPost) error
	GetUsers(ctx context.Context, userID int64, limit int) ([]domain.ScoredUser, bool, error)
	SetUsers(ctx context.Context, userID int64, limit int, users []domain.ScoredUser) error
	GetSimilarity(ctx context.Context, user1ID, user2ID int64) (domain.SimilarityPair, bool, error)
	SetSimilarity(ctx context.Context, pair domain.SimilarityPair) error
	ClearUserCache(ctx context.Context, userID int64) error
}

type Service struct {
	repo        Store
	cache       ResultCache
	recommender *engine.Recommender
	topics      *engine.TopicAnalyzer
	strategy    domain.Strategy
	decay       engine.DecayParams
}

func NewService(repo Store, c ResultCache, strategy domain.Strategy, decay engine.DecayParams) *Service {
	recommender := engine.NewRecommender(repo, decay)
	recommender.SetSimilaritySink(&similaritySink{cache: c})
	return &Service{
		repo:        repo,
		cache:       c,
		recommender: recommender,
		topics:      engine.NewTopicAnalyzer(repo),
		strategy:    strategy,
		decay:       decay,
	}
}

// RecommendPosts returns ranked post recommendations for the user. An
// unknown or non-positive user id falls back to trending posts; an empty
// strategy resolves to the configured default, echoed in the result.
func (s *Service) RecommendPosts(ctx context.Context, userID int64, limit int, strategy domain.Strategy) (*domain.PostRecommendationResult, error) {
	limit = clampLimit(limit)
	if strategy == "" {
		strategy = s.strategy
	}

	userID, err := s.resolveUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	cached, found, err := s.cache.GetPosts(ctx, userID, limit, strategy)
	if err != nil {
		log.Printf("[service] cache get error for user %d: %v", userID, err)
	}
	if found {
		return &domain.PostRecommendationResult{Posts: cached, Strategy: strategy, CacheHit: true}, nil
	}

	posts, err := s.recommender.RecommendPosts(ctx, userID, strategy, limit)
	if err != nil {
		return nil, err
	}

	if cacheErr := s.cache.SetPosts(ctx, userID, limit, strategy, posts); cacheErr != nil {
		log.Printf("[service] cache set error for user %d: %v", userID, cacheErr)
	}

	return &domain.PostRecommendationResult{Posts: posts, Strategy: strategy, CacheHit: false}, nil
}

// RecommendUsers returns ranked user recommendations. Unknown and
// anonymous users get the global popularity fallback.
func (s *Service) RecommendUsers(ctx context.Context, userID int64, limit int) (*domain.UserRecommendationResult, error) {
	limit = clampLimit(limit)

	userID, err := s.resolveUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	cached, found, err := s.cache.GetUsers(ctx, userID, limit)
	if err != nil {
		log.Printf("[service] cache get error for user %d: %v", userID, err)
	}
	if found {
		return &domain.UserRecommendationResult{Users: cached, CacheHit: true}, nil
	}

	users, err := s.recommender.RecommendUsers(ctx, userID, limit)
	if err != nil {
		return nil, err
	}

	if cacheErr := s.cache.SetUsers(ctx, userID, limit, users); cacheErr != nil {
		log.Printf("[service] cache set error for user %d: %v", userID, cacheErr)
	}

	return &domain.UserRecommendationResult{Users: users, CacheHit: false}, nil
}

// TrendingPosts lists the trailing week's posts ranked by trending score.
func (s *Service) TrendingPosts(ctx context.Context, limit int) ([]domain.ScoredPost, error) {
	return s.recommender.TrendingPosts(ctx, clampLimit(limit))
}

// TrendingTopics ranks categories by engagement velocity.
func (s *Service) TrendingTopics(ctx context.Context, limit int) ([]domain.TrendingTopic, error) {
	if limit <= 0 {
		limit = defaultTopicLimit
	} else if limit > maxLimit {
		limit = maxLimit
	}
	return s.topics.TrendingTopics(ctx, limit)
}

// PostTrendingScore computes the current trending score of one post.
func (s *Service) PostTrendingScore(ctx context.Context, postID int64) (float64, error) {
	posts, err := s.repo.PostsByIDs(ctx, []int64{postID})
	if err != nil {
		return 0, fmt.Errorf("fetch post %d: %w", postID, err)
	}
	post, ok := posts[postID]
	if !ok {
		return 0, domain.ErrPostNotFound
	}

	counts, err := s.repo.PostCounts(ctx, []int64{postID})
	if err != nil {
		return 0, fmt.Errorf("fetch counts for post %d: %w", postID, err)
	}

	return engine.TrendingScore(counts[postID], post.CreatedAt, time.Now(), s.decay), nil
}

// UserSimilarity returns the similarity weight between two users, served
// from the pair cache when warm. A user is never similar to themself, and
// two users with no shared interactions score zero.
func (s *Service) UserSimilarity(ctx context.Context, userID, otherID int64) (domain.SimilarityPair, error) {
	if cached, found, err := s.cache.GetSimilarity(ctx, userID, otherID); err != nil {
		log.Printf("[service] similarity cache get for users %d/%d: %v", userID, otherID, err)
	} else if found {
		return cached, nil
	}

	sims, err := engine.SimilaritiesFor(ctx, s.repo, userID)
	if err != nil {
		return domain.SimilarityPair{}, err
	}

	pair := domain.SimilarityPair{
		User1ID: userID,
		User2ID: otherID,
		Score:   sims.Weights[otherID],
		Overlap: sims.Overlap[otherID],
	}
	if cacheErr := s.cache.SetSimilarity(ctx, pair); cacheErr != nil {
		log.Printf("[service] similarity cache write for user %d: %v", userID, cacheErr)
	}
	return pair, nil
}

// RecordPostView stores a view interaction and drops the viewer's cached
// recommendations, since views feed the exclusion set.
func (s *Service) RecordPostView(ctx context.Context, postID, userID int64) error {
	exists, err := s.repo.UserExists(ctx, userID)
	if err != nil {
		return fmt.Errorf("check user %d: %w", userID, err)
	}
	if !exists {
		return domain.ErrUserNotFound
	}

	posts, err := s.repo.PostsByIDs(ctx, []int64{postID})
	if err != nil {
		return fmt.Errorf("fetch post %d: %w", postID, err)
	}
	if _, ok := posts[postID]; !ok {
		return domain.ErrPostNotFound
	}

	if err := s.repo.AddPostView(ctx, postID, userID); err != nil {
		return err
	}
	if err := s.cache.ClearUserCache(ctx, userID); err != nil {
		log.Printf("[service] cache invalidation error for user %d: %v", userID, err)
	}
	return nil
}

// Overview bundles post recommendations, user recommendations, and
// trending topics for one page render. The three are independent and run
// concurrently.
type Overview struct {
	Posts  []domain.ScoredPost    `json:"posts"`
	Users  []domain.ScoredUser    `json:"users"`
	Topics []domain.TrendingTopic `json:"trending_topics"`
}

func (s *Service) RecommendationOverview(ctx context.Context, userID int64) (*Overview, error) {
	var overview Overview

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		result, err := s.RecommendPosts(egCtx, userID, defaultLimit, "")
		if err != nil {
			return err
		}
		overview.Posts = result.Posts
		return nil
	})
	eg.Go(func() error {
		result, err := s.RecommendUsers(egCtx, userID, defaultLimit)
		if err != nil {
			return err
		}
		overview.Users = result.Users
		return nil
	})
	eg.Go(func() error {
		topics, err := s.TrendingTopics(egCtx, defaultTopicLimit)
		if err != nil {
			return err
		}
		overview.Topics = topics
		return nil
	})
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return &overview, nil
}

// resolveUser maps unknown ids to the anonymous fallback. Recommendations
// are best-effort and must never block a page render on a stale id.
func (s *Service) resolveUser(ctx context.Context, userID int64) (int64, error) {
	if userID <= 0 {
		return 0, nil
	}
	exists, err := s.repo.UserExists(ctx, userID)
	if err != nil {
		return 0, err
	}
	if !exists {
		log.Printf("[service] unknown user %d, serving popularity fallback", userID)
		return 0, nil
	}
	return userID, nil
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultLimit
	}
	if limit > maxLimit {
		return maxLimit
	}
	return limit
}

// similaritySink warms the pair cache after a similarity computation.
// Cache writes are best-effort: the first failure is logged and the rest
// of the batch dropped.
type similaritySink struct {
	cache ResultCache
}

const similarityCacheTopN = 20

func (s *similaritySink) StoreSimilarities(ctx context.Context, userID int64, sims *engine.Similarities) {
	ids := make([]int64, 0, len(sims.Weights))
	for otherID := range sims.Weights {
		ids = append(ids, otherID)
	}
	sort.Slice(ids, func(i, j int) bool {
		if sims.Weights[ids[i]] != sims.Weights[ids[j]] {
			return sims.Weights[ids[i]] > sims.Weights[ids[j]]
		}
		return ids[i] < ids[j]
	})
	if len(ids) > similarityCacheTopN {
		ids = ids[:similarityCacheTopN]
	}
	for _, otherID := range ids {
		pair := domain.SimilarityPair{
			User1ID: userID,
			User2ID: otherID,
			Score:   sims.Weights[otherID],
			Overlap: sims.Overlap[otherID],
		}
		if err := s.cache.SetSimilarity(ctx, pair); err != nil {
			log.Printf("[service] similarity cache write for user %d: %v", userID, err)
			return
		}
	}
}
