package engine

import (
	"context"
	"time"

	"github.com/samippaudel/engagement-service/internal/domain"
)

// fakeStore serves engine tests from in-memory fixtures.
type fakeStore struct {
	counts           map[int64]domain.EngagementCounts
	likedByUser      map[int64][]int64
	commentedByUser  map[int64][]int64
	viewedByUser     map[int64][]int64
	followedByUser   map[int64][]int64
	likersByPost     map[int64][]int64
	commentersByPost map[int64][]int64
	posts            map[int64]domain.PostSummary
	popular          []domain.PopularUser
	categories       []domain.Category
	windowTotals     func(since time.Time) map[int64]domain.WindowTotals
}

func (f *fakeStore) PostCounts(_ context.Context, postIDs []int64) (map[int64]domain.EngagementCounts, error) {
	out := make(map[int64]domain.EngagementCounts)
	for _, id := range postIDs {
		if c, ok := f.counts[id]; ok {
			out[id] = c
		}
	}
	return out, nil
}

func (f *fakeStore) LikedPostIDs(_ context.Context, userID int64) (map[int64]struct{}, error) {
	return toSet(f.likedByUser[userID]), nil
}

func (f *fakeStore) CommentedPostIDs(_ context.Context, userID int64) (map[int64]struct{}, error) {
	return toSet(f.commentedByUser[userID]), nil
}

func (f *fakeStore) ViewedPostIDs(_ context.Context, userID int64) (map[int64]struct{}, error) {
	return toSet(f.viewedByUser[userID]), nil
}

func (f *fakeStore) FollowedIDs(_ context.Context, userID int64) (map[int64]struct{}, error) {
	return toSet(f.followedByUser[userID]), nil
}

func (f *fakeStore) LikersOfPosts(_ context.Context, postIDs []int64) (map[int64][]int64, error) {
	out := make(map[int64][]int64)
	for _, id := range postIDs {
		if likers, ok := f.likersByPost[id]; ok {
			out[id] = likers
		}
	}
	return out, nil
}

func (f *fakeStore) CommentersOfPosts(_ context.Context, postIDs []int64) (map[int64][]int64, error) {
	out := make(map[int64][]int64)
	for _, id := range postIDs {
		if commenters, ok := f.commentersByPost[id]; ok {
			out[id] = commenters
		}
	}
	return out, nil
}

func (f *fakeStore) LikedPostsOfUsers(_ context.Context, userIDs []int64) (map[int64][]int64, error) {
	out := make(map[int64][]int64)
	for _, id := range userIDs {
		if liked, ok := f.likedByUser[id]; ok {
			out[id] = liked
		}
	}
	return out, nil
}

func (f *fakeStore) PostsSince(_ context.Context, since time.Time) ([]domain.PostSummary, error) {
	var out []domain.PostSummary
	for _, post := range f.posts {
		if post.CreatedAt.After(since) {
			out = append(out, post)
		}
	}
	return out, nil
}

func (f *fakeStore) PostsByIDs(_ context.Context, postIDs []int64) (map[int64]domain.PostSummary, error) {
	out := make(map[int64]domain.PostSummary)
	for _, id := range postIDs {
		if post, ok := f.posts[id]; ok {
			out[id] = post
		}
	}
	return out, nil
}

func (f *fakeStore) PopularUsers(_ context.Context, limit int) ([]domain.PopularUser, error) {
	if limit > 0 && len(f.popular) > limit {
		return f.popular[:limit], nil
	}
	return f.popular, nil
}

func (f *fakeStore) Categories(_ context.Context) ([]domain.Category, error) {
	return f.categories, nil
}

func (f *fakeStore) CategoryWindowTotals(_ context.Context, since time.Time) (map[int64]domain.WindowTotals, error) {
	if f.windowTotals == nil {
		return map[int64]domain.WindowTotals{}, nil
	}
	return f.windowTotals(since), nil
}

func toSet(ids []int64) map[int64]struct{} {
	set := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
