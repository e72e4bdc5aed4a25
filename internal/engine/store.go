package engine

import (
	"context"
	"time"

	"github.com/samippaudel/engagement-service/internal/domain"
)

// Store is the read-only view of interaction data the engine computes over.
// Implementations must answer each call with a bounded number of bulk
// queries; the engine never asks for counts one post at a time.
type Store interface {
	// PostCounts returns engagement counts for the given posts in one pass.
	// Posts with no recorded engagement are absent from the map.
	PostCounts(ctx context.Context, postIDs []int64) (map[int64]domain.EngagementCounts, error)

	// Membership sets for one user.
	LikedPostIDs(ctx context.Context, userID int64) (map[int64]struct{}, error)
	CommentedPostIDs(ctx context.Context, userID int64) (map[int64]struct{}, error)
	ViewedPostIDs(ctx context.Context, userID int64) (map[int64]struct{}, error)
	FollowedIDs(ctx context.Context, userID int64) (map[int64]struct{}, error)

	// Batched reverse lookups.
	LikersOfPosts(ctx context.Context, postIDs []int64) (map[int64][]int64, error)
	CommentersOfPosts(ctx context.Context, postIDs []int64) (map[int64][]int64, error)
	LikedPostsOfUsers(ctx context.Context, userIDs []int64) (map[int64][]int64, error)

	// Post snapshots.
	PostsSince(ctx context.Context, since time.Time) ([]domain.PostSummary, error)
	PostsByIDs(ctx context.Context, postIDs []int64) (map[int64]domain.PostSummary, error)

	// Anonymous fallback and topic aggregation. Categories yields only
	// categories holding at least one published post.
	PopularUsers(ctx context.Context, limit int) ([]domain.PopularUser, error)
	Categories(ctx context.Context) ([]domain.Category, error)
	CategoryWindowTotals(ctx context.Context, since time.Time) (map[int64]domain.WindowTotals, error)
}
