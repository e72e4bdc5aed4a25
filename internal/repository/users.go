package repository

import (
	"context"
	"fmt"

	"github.com/samippaudel/engagement-service/internal/domain"
)

// PopularUsers ranks users with at least one published post by follower
// count, then total likes received across their posts, then id. The order
// is fully resolved in SQL so identical data always yields identical pages.
func (r *Repository) PopularUsers(ctx context.Context, limit int) ([]domain.PopularUser, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT u.id,
			COALESCE(f.n, 0) AS followers,
			COALESCE(l.n, 0) AS likes_received,
			COALESCE(p.n, 0) AS published_posts
		FROM users u
		LEFT JOIN (SELECT following_id, COUNT(*) AS n FROM follows GROUP BY following_id) f ON f.following_id = u.id
		LEFT JOIN (
			SELECT p.author_id, COUNT(*) AS n
			FROM post_likes pl
			JOIN posts p ON p.id = pl.post_id
			GROUP BY p.author_id
		) l ON l.author_id = u.id
		LEFT JOIN (SELECT author_id, COUNT(*) AS n FROM posts WHERE is_published GROUP BY author_id) p ON p.author_id = u.id
		WHERE COALESCE(p.n, 0) > 0
		ORDER BY followers DESC, likes_received DESC, u.id ASC
		LIMIT $1`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query popular users: %w", err)
	}
	defer rows.Close()

	var users []domain.PopularUser
	for rows.Next() {
		var u domain.PopularUser
		var followers, likes, posts int64
		if err := rows.Scan(&u.ID, &followers, &likes, &posts); err != nil {
			return nil, fmt.Errorf("scan popular user: %w", err)
		}
		u.FollowerCount = int(followers)
		u.LikesReceived = int(likes)
		u.PublishedPosts = int(posts)
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate popular users: %w", err)
	}
	return users, nil
}
