package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/samippaudel/engagement-service/internal/domain"
)

// PostCounts loads engagement counts for all given posts in a single
// query. Posts with no engagement at all are omitted from the map.
func (r *Repository) PostCounts(ctx context.Context, postIDs []int64) (map[int64]domain.EngagementCounts, error) {
	if len(postIDs) == 0 {
		return map[int64]domain.EngagementCounts{}, nil
	}

	rows, err := r.pool.Query(ctx,
		`SELECT p.id, COALESCE(l.n, 0), COALESCE(c.n, 0), COALESCE(v.n, 0)
		FROM posts p
		LEFT JOIN (SELECT post_id, COUNT(*) AS n FROM post_likes WHERE post_id = ANY($1) GROUP BY post_id) l ON l.post_id = p.id
		LEFT JOIN (SELECT post_id, COUNT(*) AS n FROM comments WHERE post_id = ANY($1) GROUP BY post_id) c ON c.post_id = p.id
		LEFT JOIN (SELECT post_id, COUNT(*) AS n FROM post_views WHERE post_id = ANY($1) GROUP BY post_id) v ON v.post_id = p.id
		WHERE p.id = ANY($1)`, postIDs,
	)
	if err != nil {
		return nil, fmt.Errorf("query post counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[int64]domain.EngagementCounts, len(postIDs))
	for rows.Next() {
		var id int64
		var likes, comments, views int64
		if err := rows.Scan(&id, &likes, &comments, &views); err != nil {
			return nil, fmt.Errorf("scan post counts: %w", err)
		}
		counts[id] = domain.EngagementCounts{
			Likes:    int(likes),
			Comments: int(comments),
			Views:    int(views),
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate post counts: %w", err)
	}
	return counts, nil
}

// PostsSince returns published posts created after the cutoff.
func (r *Repository) PostsSince(ctx context.Context, since time.Time) ([]domain.PostSummary, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, author_id, category_id, created_at
		FROM posts
		WHERE is_published AND created_at >= $1
		ORDER BY id`, since,
	)
	if err != nil {
		return nil, fmt.Errorf("query posts since %s: %w", since, err)
	}
	defer rows.Close()

	var posts []domain.PostSummary
	for rows.Next() {
		var p domain.PostSummary
		if err := rows.Scan(&p.ID, &p.AuthorID, &p.CategoryID, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate posts: %w", err)
	}
	return posts, nil
}

// PostsByIDs returns snapshots for the given posts, keyed by id.
func (r *Repository) PostsByIDs(ctx context.Context, postIDs []int64) (map[int64]domain.PostSummary, error) {
	if len(postIDs) == 0 {
		return map[int64]domain.PostSummary{}, nil
	}

	rows, err := r.pool.Query(ctx,
		`SELECT id, author_id, category_id, created_at
		FROM posts
		WHERE is_published AND id = ANY($1)`, postIDs,
	)
	if err != nil {
		return nil, fmt.Errorf("query posts by ids: %w", err)
	}
	defer rows.Close()

	posts := make(map[int64]domain.PostSummary, len(postIDs))
	for rows.Next() {
		var p domain.PostSummary
		if err := rows.Scan(&p.ID, &p.AuthorID, &p.CategoryID, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		posts[p.ID] = p
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate posts: %w", err)
	}
	return posts, nil
}
