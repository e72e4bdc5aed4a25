package engine

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/samippaudel/engagement-service/internal/domain"
)

const (
	// similarUserPool bounds how many top-weighted similar users feed the
	// post candidate pool.
	similarUserPool = 50

	// trendingWindow is the lookback for the anonymous post fallback.
	trendingWindow = 7 * 24 * time.Hour

	// Hybrid blend weights.
	hybridCollaborative = 0.4
	hybridContent       = 0.3
	hybridTrending      = 0.2
	hybridSocial        = 0.1

	// Preference assigned to a category the user has never liked a post in.
	unseenCategoryPref = 0.1
)

// SimilaritySink receives computed similarity weights as a write-only side
// effect, e.g. to warm a cache. Implementations must swallow their own
// failures; a sink can never fail a recommendation call.
type SimilaritySink interface {
	StoreSimilarities(ctx context.Context, userID int64, sims *Similarities)
}

// Recommender ranks candidate posts and users for a given user via
// collaborative filtering, with popularity fallbacks for anonymous callers.
// It holds no mutable state; every call computes over a fresh snapshot.
type Recommender struct {
	store Store
	decay DecayParams
	sink  SimilaritySink
	now   func() time.Time
}

func NewRecommender(store Store, decay DecayParams) *Recommender {
	return &Recommender{store: store, decay: decay, now: time.Now}
}

// SetSimilaritySink attaches an optional sink for computed similarities.
func (r *Recommender) SetSimilaritySink(sink SimilaritySink) {
	r.sink = sink
}

func (r *Recommender) similaritiesFor(ctx context.Context, userID int64) (*Similarities, error) {
	sims, err := SimilaritiesFor(ctx, r.store, userID)
	if err != nil {
		return nil, err
	}
	if r.sink != nil && len(sims.Weights) > 0 {
		r.sink.StoreSimilarities(ctx, userID, sims)
	}
	return sims, nil
}

// RecommendUsers returns candidate users ordered by similarity weight
// descending, candidate id ascending. Users already followed and the user
// themself are excluded. userID <= 0 means anonymous and falls back to
// global popularity.
func (r *Recommender) RecommendUsers(ctx context.Context, userID int64, limit int) ([]domain.ScoredUser, error) {
	if userID <= 0 {
		return r.popularUsers(ctx, limit)
	}

	sims, err := r.similaritiesFor(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(sims.Weights) == 0 {
		return nil, nil
	}

	followed, err := r.store.FollowedIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("followed ids for user %d: %w", userID, err)
	}

	ranked := make([]domain.ScoredUser, 0, len(sims.Weights))
	for id, score := range sims.Weights {
		if id == userID {
			continue
		}
		if _, ok := followed[id]; ok {
			continue
		}
		ranked = append(ranked, domain.ScoredUser{UserID: id, Score: score})
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].UserID < ranked[j].UserID
	})

	return truncateUsers(ranked, limit), nil
}

func (r *Recommender) popularUsers(ctx context.Context, limit int) ([]domain.ScoredUser, error) {
	popular, err := r.store.PopularUsers(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("popular users: %w", err)
	}
	ranked := make([]domain.ScoredUser, 0, len(popular))
	for _, u := range popular {
		ranked = append(ranked, domain.ScoredUser{UserID: u.ID, Score: float64(u.FollowerCount)})
	}
	return ranked, nil
}

// RecommendPosts returns candidate posts for the user under the given
// strategy. Candidates are the posts liked by the user's top-weighted
// similar users, minus everything the user already liked, commented on, or
// viewed. Ordering is score descending, recency descending, id ascending.
// userID <= 0 falls back to trending posts from the trailing week.
func (r *Recommender) RecommendPosts(ctx context.Context, userID int64, strategy domain.Strategy, limit int) ([]domain.ScoredPost, error) {
	if userID <= 0 {
		return r.TrendingPosts(ctx, limit)
	}

	sims, err := r.similaritiesFor(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(sims.Weights) == 0 {
		return nil, nil
	}

	topUsers := topWeighted(sims.Weights, similarUserPool)
	likedBy, err := r.store.LikedPostsOfUsers(ctx, topUsers)
	if err != nil {
		return nil, fmt.Errorf("liked posts of similar users: %w", err)
	}

	excluded, err := r.interactedPostIDs(ctx, userID)
	if err != nil {
		return nil, err
	}

	// Collaborative score: each contributing user adds their weight.
	collab := make(map[int64]float64)
	for _, uid := range topUsers {
		weight := sims.Weights[uid]
		for _, postID := range likedBy[uid] {
			if _, ok := excluded[postID]; ok {
				continue
			}
			collab[postID] += weight
		}
	}
	if len(collab) == 0 {
		return nil, nil
	}

	candidateIDs := make([]int64, 0, len(collab))
	for id := range collab {
		candidateIDs = append(candidateIDs, id)
	}
	sort.Slice(candidateIDs, func(i, j int) bool { return candidateIDs[i] < candidateIDs[j] })

	posts, err := r.store.PostsByIDs(ctx, candidateIDs)
	if err != nil {
		return nil, fmt.Errorf("candidate posts: %w", err)
	}

	// Drop candidates the store no longer serves (e.g. unpublished).
	if len(posts) < len(candidateIDs) {
		kept := candidateIDs[:0]
		for _, id := range candidateIDs {
			if _, ok := posts[id]; ok {
				kept = append(kept, id)
			} else {
				delete(collab, id)
			}
		}
		candidateIDs = kept
		if len(candidateIDs) == 0 {
			return nil, nil
		}
	}

	scores := collab
	if strategy == domain.StrategyHybrid {
		scores, err = r.hybridScores(ctx, userID, candidateIDs, collab, posts)
		if err != nil {
			return nil, err
		}
	}

	ranked := make([]domain.ScoredPost, 0, len(scores))
	for id, score := range scores {
		ranked = append(ranked, domain.ScoredPost{PostID: id, Score: score})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		ci, cj := posts[ranked[i].PostID].CreatedAt, posts[ranked[j].PostID].CreatedAt
		if !ci.Equal(cj) {
			return ci.After(cj)
		}
		return ranked[i].PostID < ranked[j].PostID
	})

	return truncatePosts(ranked, limit), nil
}

// hybridScores blends four pool-normalized components at fixed weights.
func (r *Recommender) hybridScores(ctx context.Context, userID int64, candidateIDs []int64, collab map[int64]float64, posts map[int64]domain.PostSummary) (map[int64]float64, error) {
	counts, err := r.store.PostCounts(ctx, candidateIDs)
	if err != nil {
		return nil, fmt.Errorf("candidate counts: %w", err)
	}
	likers, err := r.store.LikersOfPosts(ctx, candidateIDs)
	if err != nil {
		return nil, fmt.Errorf("candidate likers: %w", err)
	}
	followed, err := r.store.FollowedIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("followed ids for user %d: %w", userID, err)
	}
	prefs, err := r.categoryPreferences(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := r.now()
	trending := make(map[int64]float64, len(candidateIDs))
	for _, id := range candidateIDs {
		trending[id] = TrendingScore(counts[id], posts[id].CreatedAt, now, r.decay)
	}
	normalize(trending)

	collabNorm := make(map[int64]float64, len(collab))
	for id, score := range collab {
		collabNorm[id] = score
	}
	normalize(collabNorm)

	blended := make(map[int64]float64, len(candidateIDs))
	for _, id := range candidateIDs {
		content, ok := prefs[posts[id].CategoryID]
		if !ok {
			content = unseenCategoryPref
		}

		social := 0.0
		if n := len(likers[id]); n > 0 {
			shared := 0
			for _, likerID := range likers[id] {
				if _, ok := followed[likerID]; ok {
					shared++
				}
			}
			social = float64(shared) / float64(n)
		}

		blended[id] = hybridCollaborative*collabNorm[id] +
			hybridContent*content +
			hybridTrending*trending[id] +
			hybridSocial*social
	}
	return blended, nil
}

// categoryPreferences is the share of the user's liked posts per category.
func (r *Recommender) categoryPreferences(ctx context.Context, userID int64) (map[int64]float64, error) {
	liked, err := r.store.LikedPostIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("liked posts for user %d: %w", userID, err)
	}
	if len(liked) == 0 {
		return map[int64]float64{}, nil
	}
	posts, err := r.store.PostsByIDs(ctx, sortedIDs(liked))
	if err != nil {
		return nil, fmt.Errorf("liked post summaries: %w", err)
	}

	counts := make(map[int64]int)
	for _, post := range posts {
		counts[post.CategoryID]++
	}
	prefs := make(map[int64]float64, len(counts))
	total := float64(len(posts))
	for categoryID, n := range counts {
		prefs[categoryID] = float64(n) / total
	}
	return prefs, nil
}

// TrendingPosts ranks the trailing week's posts by trending score. Counts
// are loaded once into a map before the scoring loop.
func (r *Recommender) TrendingPosts(ctx context.Context, limit int) ([]domain.ScoredPost, error) {
	now := r.now()
	posts, err := r.store.PostsSince(ctx, now.Add(-trendingWindow))
	if err != nil {
		return nil, fmt.Errorf("posts in trending window: %w", err)
	}
	if len(posts) == 0 {
		return nil, nil
	}

	ids := make([]int64, len(posts))
	for i, post := range posts {
		ids[i] = post.ID
	}
	counts, err := r.store.PostCounts(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("counts in trending window: %w", err)
	}

	return truncatePosts(RankPosts(posts, counts, now, r.decay), limit), nil
}

func (r *Recommender) interactedPostIDs(ctx context.Context, userID int64) (map[int64]struct{}, error) {
	liked, err := r.store.LikedPostIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("liked posts for user %d: %w", userID, err)
	}
	commented, err := r.store.CommentedPostIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("commented posts for user %d: %w", userID, err)
	}
	viewed, err := r.store.ViewedPostIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("viewed posts for user %d: %w", userID, err)
	}

	excluded := make(map[int64]struct{}, len(liked)+len(commented)+len(viewed))
	for id := range liked {
		excluded[id] = struct{}{}
	}
	for id := range commented {
		excluded[id] = struct{}{}
	}
	for id := range viewed {
		excluded[id] = struct{}{}
	}
	return excluded, nil
}

// topWeighted returns up to n candidate ids ordered by weight descending,
// id ascending.
func topWeighted(weights map[int64]float64, n int) []int64 {
	ids := make([]int64, 0, len(weights))
	for id := range weights {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		if weights[ids[i]] != weights[ids[j]] {
			return weights[ids[i]] > weights[ids[j]]
		}
		return ids[i] < ids[j]
	})
	if len(ids) > n {
		ids = ids[:n]
	}
	return ids
}

// normalize min-max scales values in place against the map's maximum.
func normalize(scores map[int64]float64) {
	var max float64
	for _, score := range scores {
		if score > max {
			max = score
		}
	}
	if max == 0 {
		return
	}
	for id := range scores {
		scores[id] /= max
	}
}

func truncatePosts(ranked []domain.ScoredPost, limit int) []domain.ScoredPost {
	if limit > 0 && len(ranked) > limit {
		return ranked[:limit]
	}
	return ranked
}

func truncateUsers(ranked []domain.ScoredUser, limit int) []domain.ScoredUser {
	if limit > 0 && len(ranked) > limit {
		return ranked[:limit]
	}
	return ranked
}
