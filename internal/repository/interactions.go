package repository

import (
	"context"
	"fmt"
)

// Membership sets per user.

func (r *Repository) LikedPostIDs(ctx context.Context, userID int64) (map[int64]struct{}, error) {
	return r.idSet(ctx,
		`SELECT post_id FROM post_likes WHERE user_id = $1`,
		userID, "liked posts")
}

func (r *Repository) CommentedPostIDs(ctx context.Context, userID int64) (map[int64]struct{}, error) {
	return r.idSet(ctx,
		`SELECT DISTINCT post_id FROM comments WHERE author_id = $1`,
		userID, "commented posts")
}

func (r *Repository) ViewedPostIDs(ctx context.Context, userID int64) (map[int64]struct{}, error) {
	return r.idSet(ctx,
		`SELECT DISTINCT post_id FROM post_views WHERE user_id = $1`,
		userID, "viewed posts")
}

func (r *Repository) FollowedIDs(ctx context.Context, userID int64) (map[int64]struct{}, error) {
	return r.idSet(ctx,
		`SELECT following_id FROM follows WHERE follower_id = $1`,
		userID, "followed users")
}

func (r *Repository) idSet(ctx context.Context, query string, userID int64, what string) (map[int64]struct{}, error) {
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("query %s for user %d: %w", what, userID, err)
	}
	defer rows.Close()

	set := make(map[int64]struct{})
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan %s id: %w", what, err)
		}
		set[id] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", what, err)
	}
	return set, nil
}

// Batched reverse lookups. Each is one query regardless of input size.

func (r *Repository) LikersOfPosts(ctx context.Context, postIDs []int64) (map[int64][]int64, error) {
	return r.idLists(ctx,
		`SELECT post_id, user_id FROM post_likes WHERE post_id = ANY($1) ORDER BY post_id, user_id`,
		postIDs, "likers")
}

func (r *Repository) CommentersOfPosts(ctx context.Context, postIDs []int64) (map[int64][]int64, error) {
	return r.idLists(ctx,
		`SELECT DISTINCT post_id, author_id FROM comments WHERE post_id = ANY($1) ORDER BY post_id, author_id`,
		postIDs, "commenters")
}

func (r *Repository) LikedPostsOfUsers(ctx context.Context, userIDs []int64) (map[int64][]int64, error) {
	return r.idLists(ctx,
		`SELECT user_id, post_id FROM post_likes WHERE user_id = ANY($1) ORDER BY user_id, post_id`,
		userIDs, "liked posts of users")
}

func (r *Repository) idLists(ctx context.Context, query string, ids []int64, what string) (map[int64][]int64, error) {
	out := make(map[int64][]int64, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", what, err)
	}
	defer rows.Close()

	for rows.Next() {
		var key, val int64
		if err := rows.Scan(&key, &val); err != nil {
			return nil, fmt.Errorf("scan %s pair: %w", what, err)
		}
		out[key] = append(out[key], val)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", what, err)
	}
	return out, nil
}
