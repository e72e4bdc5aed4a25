package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/samippaudel/engagement-service/internal/domain"
	"github.com/samippaudel/engagement-service/internal/engine"
)

// fakeRepo is an in-memory Store. Nil maps behave as empty tables.
type fakeRepo struct {
	users            map[int64]bool
	counts           map[int64]domain.EngagementCounts
	likedByUser      map[int64][]int64
	commentedByUser  map[int64][]int64
	viewedByUser     map[int64][]int64
	followedByUser   map[int64][]int64
	likersByPost     map[int64][]int64
	commentersByPost map[int64][]int64
	posts            map[int64]domain.PostSummary
	popular          []domain.PopularUser

	views [][2]int64
}

func idSet(ids []int64) map[int64]struct{} {
	set := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

func (f *fakeRepo) PostCounts(_ context.Context, postIDs []int64) (map[int64]domain.EngagementCounts, error) {
	out := make(map[int64]domain.EngagementCounts)
	for _, id := range postIDs {
		if c, ok := f.counts[id]; ok {
			out[id] = c
		}
	}
	return out, nil
}

func (f *fakeRepo) LikedPostIDs(_ context.Context, userID int64) (map[int64]struct{}, error) {
	return idSet(f.likedByUser[userID]), nil
}

func (f *fakeRepo) CommentedPostIDs(_ context.Context, userID int64) (map[int64]struct{}, error) {
	return idSet(f.commentedByUser[userID]), nil
}

func (f *fakeRepo) ViewedPostIDs(_ context.Context, userID int64) (map[int64]struct{}, error) {
	return idSet(f.viewedByUser[userID]), nil
}

func (f *fakeRepo) FollowedIDs(_ context.Context, userID int64) (map[int64]struct{}, error) {
	return idSet(f.followedByUser[userID]), nil
}

func (f *fakeRepo) LikersOfPosts(_ context.Context, postIDs []int64) (map[int64][]int64, error) {
	out := make(map[int64][]int64)
	for _, id := range postIDs {
		if users, ok := f.likersByPost[id]; ok {
			out[id] = users
		}
	}
	return out, nil
}

func (f *fakeRepo) CommentersOfPosts(_ context.Context, postIDs []int64) (map[int64][]int64, error) {
	out := make(map[int64][]int64)
	for _, id := range postIDs {
		if users, ok := f.commentersByPost[id]; ok {
			out[id] = users
		}
	}
	return out, nil
}

func (f *fakeRepo) LikedPostsOfUsers(_ context.Context, userIDs []int64) (map[int64][]int64, error) {
	out := make(map[int64][]int64)
	for _, id := range userIDs {
		if posts, ok := f.likedByUser[id]; ok {
			out[id] = posts
		}
	}
	return out, nil
}

func (f *fakeRepo) PostsSince(_ context.Context, since time.Time) ([]domain.PostSummary, error) {
	var out []domain.PostSummary
	for _, p := range f.posts {
		if !p.CreatedAt.Before(since) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeRepo) PostsByIDs(_ context.Context, postIDs []int64) (map[int64]domain.PostSummary, error) {
	out := make(map[int64]domain.PostSummary)
	for _, id := range postIDs {
		if p, ok := f.posts[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

func (f *fakeRepo) PopularUsers(_ context.Context, limit int) ([]domain.PopularUser, error) {
	if len(f.popular) > limit {
		return f.popular[:limit], nil
	}
	return f.popular, nil
}

func (f *fakeRepo) Categories(_ context.Context) ([]domain.Category, error) {
	return nil, nil
}

func (f *fakeRepo) CategoryWindowTotals(_ context.Context, _ time.Time) (map[int64]domain.WindowTotals, error) {
	return nil, nil
}

func (f *fakeRepo) UserExists(_ context.Context, userID int64) (bool, error) {
	return f.users[userID], nil
}

func (f *fakeRepo) AddPostView(_ context.Context, postID, userID int64) error {
	f.views = append(f.views, [2]int64{postID, userID})
	return nil
}

// fakeCache is an in-memory ResultCache tracking invalidations.
type fakeCache struct {
	posts   map[string][]domain.ScoredPost
	users   map[string][]domain.ScoredUser
	pairs   map[string]domain.SimilarityPair
	cleared []int64
}

func newFakeCache() *fakeCache {
	return &fakeCache{
		posts: make(map[string][]domain.ScoredPost),
		users: make(map[string][]domain.ScoredUser),
		pairs: make(map[string]domain.SimilarityPair),
	}
}

func postKey(userID int64, limit int, strategy domain.Strategy) string {
	return fmt.Sprintf("%d:%d:%s", userID, limit, strategy)
}

func userKey(userID int64, limit int) string {
	return fmt.Sprintf("%d:%d", userID, limit)
}

func pairCacheKey(user1ID, user2ID int64) string {
	if user2ID < user1ID {
		user1ID, user2ID = user2ID, user1ID
	}
	return fmt.Sprintf("%d:%d", user1ID, user2ID)
}

func (f *fakeCache) GetPosts(_ context.Context, userID int64, limit int, strategy domain.Strategy) ([]domain.ScoredPost, bool, error) {
	posts, ok := f.posts[postKey(userID, limit, strategy)]
	return posts, ok, nil
}

func (f *fakeCache) SetPosts(_ context.Context, userID int64, limit int, strategy domain.Strategy, posts []domain.ScoredPost) error {
	f.posts[postKey(userID, limit, strategy)] = posts
	return nil
}

func (f *fakeCache) GetUsers(_ context.Context, userID int64, limit int) ([]domain.ScoredUser, bool, error) {
	users, ok := f.users[userKey(userID, limit)]
	return users, ok, nil
}

func (f *fakeCache) SetUsers(_ context.Context, userID int64, limit int, users []domain.ScoredUser) error {
	f.users[userKey(userID, limit)] = users
	return nil
}

func (f *fakeCache) GetSimilarity(_ context.Context, user1ID, user2ID int64) (domain.SimilarityPair, bool, error) {
	pair, ok := f.pairs[pairCacheKey(user1ID, user2ID)]
	return pair, ok, nil
}

func (f *fakeCache) SetSimilarity(_ context.Context, pair domain.SimilarityPair) error {
	f.pairs[pairCacheKey(pair.User1ID, pair.User2ID)] = pair
	return nil
}

func (f *fakeCache) ClearUserCache(_ context.Context, userID int64) error {
	prefix := fmt.Sprintf("%d:", userID)
	for key := range f.posts {
		if strings.HasPrefix(key, prefix) {
			delete(f.posts, key)
		}
	}
	for key := range f.users {
		if strings.HasPrefix(key, prefix) {
			delete(f.users, key)
		}
	}
	f.cleared = append(f.cleared, userID)
	return nil
}

func newTestService(repo *fakeRepo, c *fakeCache, strategy domain.Strategy) *Service {
	return NewService(repo, c, strategy, engine.DefaultDecayParams())
}

func TestRecommendPostsEchoesResolvedStrategy(t *testing.T) {
	repo := &fakeRepo{users: map[int64]bool{5: true}}
	svc := newTestService(repo, newFakeCache(), domain.StrategyHybrid)

	result, err := svc.RecommendPosts(context.Background(), 5, 12, "")
	if err != nil {
		t.Fatalf("RecommendPosts: %v", err)
	}
	if result.Strategy != domain.StrategyHybrid {
		t.Errorf("strategy = %q, want %q", result.Strategy, domain.StrategyHybrid)
	}
}

func TestRecommendPostsCacheHitCarriesStrategy(t *testing.T) {
	repo := &fakeRepo{users: map[int64]bool{5: true}}
	c := newFakeCache()
	cached := []domain.ScoredPost{{PostID: 42, Score: 3.5}}
	if err := c.SetPosts(context.Background(), 5, 12, domain.StrategyCollaborative, cached); err != nil {
		t.Fatalf("SetPosts: %v", err)
	}
	svc := newTestService(repo, c, domain.StrategyCollaborative)

	result, err := svc.RecommendPosts(context.Background(), 5, 12, "")
	if err != nil {
		t.Fatalf("RecommendPosts: %v", err)
	}
	if !result.CacheHit {
		t.Error("expected cache hit")
	}
	if result.Strategy != domain.StrategyCollaborative {
		t.Errorf("strategy = %q, want %q", result.Strategy, domain.StrategyCollaborative)
	}
	if len(result.Posts) != 1 || result.Posts[0].PostID != 42 {
		t.Errorf("posts = %v, want cached entry for post 42", result.Posts)
	}
}

func TestRecommendPostsUnknownUserServesTrending(t *testing.T) {
	now := time.Now()
	repo := &fakeRepo{
		users:  map[int64]bool{1: true},
		posts:  map[int64]domain.PostSummary{100: {ID: 100, AuthorID: 1, CategoryID: 7, CreatedAt: now.Add(-time.Hour)}},
		counts: map[int64]domain.EngagementCounts{100: {Likes: 4, Comments: 2, Views: 10}},
	}
	c := newFakeCache()
	svc := newTestService(repo, c, domain.StrategyCollaborative)

	result, err := svc.RecommendPosts(context.Background(), 999, 12, domain.StrategyCollaborative)
	if err != nil {
		t.Fatalf("RecommendPosts: %v", err)
	}
	if len(result.Posts) != 1 || result.Posts[0].PostID != 100 {
		t.Fatalf("posts = %v, want trending fallback with post 100", result.Posts)
	}
	// The fallback is cached under the anonymous id, not the stale one.
	if _, ok := c.posts[postKey(0, 12, domain.StrategyCollaborative)]; !ok {
		t.Error("expected fallback result cached for anonymous user")
	}
	if _, ok := c.posts[postKey(999, 12, domain.StrategyCollaborative)]; ok {
		t.Error("unexpected cache entry for unknown user id")
	}
}

func TestRecommendUsersUnknownUserServesPopular(t *testing.T) {
	repo := &fakeRepo{
		users: map[int64]bool{1: true},
		popular: []domain.PopularUser{
			{ID: 9, FollowerCount: 30},
			{ID: 4, FollowerCount: 12},
		},
	}
	svc := newTestService(repo, newFakeCache(), domain.StrategyCollaborative)

	result, err := svc.RecommendUsers(context.Background(), 999, 12)
	if err != nil {
		t.Fatalf("RecommendUsers: %v", err)
	}
	got := make([]int64, len(result.Users))
	for i, u := range result.Users {
		got[i] = u.UserID
	}
	want := []int64{9, 4}
	if len(got) != len(want) {
		t.Fatalf("users = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("users[%d] = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestRecordPostView(t *testing.T) {
	repo := &fakeRepo{
		users: map[int64]bool{7: true},
		posts: map[int64]domain.PostSummary{100: {ID: 100, CreatedAt: time.Now()}},
	}
	c := newFakeCache()
	svc := newTestService(repo, c, domain.StrategyCollaborative)

	if err := svc.RecordPostView(context.Background(), 100, 7); err != nil {
		t.Fatalf("RecordPostView: %v", err)
	}
	if len(repo.views) != 1 || repo.views[0] != [2]int64{100, 7} {
		t.Errorf("views = %v, want one view of post 100 by user 7", repo.views)
	}
	if len(c.cleared) != 1 || c.cleared[0] != 7 {
		t.Errorf("cleared = %v, want invalidation for user 7", c.cleared)
	}
}

func TestRecordPostViewUnknownUser(t *testing.T) {
	repo := &fakeRepo{
		posts: map[int64]domain.PostSummary{100: {ID: 100, CreatedAt: time.Now()}},
	}
	svc := newTestService(repo, newFakeCache(), domain.StrategyCollaborative)

	err := svc.RecordPostView(context.Background(), 100, 99)
	if !errors.Is(err, domain.ErrUserNotFound) {
		t.Errorf("error = %v, want ErrUserNotFound", err)
	}
	if len(repo.views) != 0 {
		t.Errorf("views = %v, want none", repo.views)
	}
}

func TestRecordPostViewUnknownPost(t *testing.T) {
	repo := &fakeRepo{users: map[int64]bool{7: true}}
	svc := newTestService(repo, newFakeCache(), domain.StrategyCollaborative)

	err := svc.RecordPostView(context.Background(), 999, 7)
	if !errors.Is(err, domain.ErrPostNotFound) {
		t.Errorf("error = %v, want ErrPostNotFound", err)
	}
}

func TestUserSimilarityComputesAndWarmsCache(t *testing.T) {
	repo := &fakeRepo{
		users:        map[int64]bool{1: true, 2: true},
		likedByUser:  map[int64][]int64{1: {100}, 2: {100}},
		likersByPost: map[int64][]int64{100: {1, 2}},
	}
	c := newFakeCache()
	svc := newTestService(repo, c, domain.StrategyCollaborative)

	pair, err := svc.UserSimilarity(context.Background(), 1, 2)
	if err != nil {
		t.Fatalf("UserSimilarity: %v", err)
	}
	if pair.User1ID != 1 || pair.User2ID != 2 {
		t.Errorf("pair ids = %d/%d, want 1/2", pair.User1ID, pair.User2ID)
	}
	if pair.Score != 1.0 {
		t.Errorf("score = %v, want 1.0", pair.Score)
	}
	if pair.Overlap != 1 {
		t.Errorf("overlap = %d, want 1", pair.Overlap)
	}
	if _, ok := c.pairs[pairCacheKey(1, 2)]; !ok {
		t.Error("expected computed pair written to cache")
	}
}

func TestUserSimilarityServedFromCache(t *testing.T) {
	c := newFakeCache()
	warm := domain.SimilarityPair{User1ID: 3, User2ID: 4, Score: 0.75, Overlap: 2}
	if err := c.SetSimilarity(context.Background(), warm); err != nil {
		t.Fatalf("SetSimilarity: %v", err)
	}
	// The repo holds no interactions: a fresh computation would score zero.
	svc := newTestService(&fakeRepo{}, c, domain.StrategyCollaborative)

	pair, err := svc.UserSimilarity(context.Background(), 3, 4)
	if err != nil {
		t.Fatalf("UserSimilarity: %v", err)
	}
	if pair.Score != 0.75 || pair.Overlap != 2 {
		t.Errorf("pair = %+v, want cached score 0.75 overlap 2", pair)
	}
}
