package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/samippaudel/engagement-service/internal/domain"
)

// Categories returns every category holding at least one published post,
// regardless of the post's age.
func (r *Repository) Categories(ctx context.Context) ([]domain.Category, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT c.id, c.name, c.slug
		FROM categories c
		WHERE EXISTS (SELECT 1 FROM posts p WHERE p.category_id = c.id AND p.is_published)
		ORDER BY c.id`,
	)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()

	var categories []domain.Category
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate categories: %w", err)
	}
	return categories, nil
}

// CategoryWindowTotals aggregates engagement per category for all
// published posts created after the cutoff, in one pass. Categories with
// no posts in the window are absent from the map.
func (r *Repository) CategoryWindowTotals(ctx context.Context, since time.Time) (map[int64]domain.WindowTotals, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT p.category_id,
			COUNT(*) AS post_count,
			COALESCE(SUM(l.n), 0) AS likes,
			COALESCE(SUM(c.n), 0) AS comments,
			COALESCE(SUM(v.n), 0) AS views
		FROM posts p
		LEFT JOIN (SELECT post_id, COUNT(*) AS n FROM post_likes GROUP BY post_id) l ON l.post_id = p.id
		LEFT JOIN (SELECT post_id, COUNT(*) AS n FROM comments GROUP BY post_id) c ON c.post_id = p.id
		LEFT JOIN (SELECT post_id, COUNT(*) AS n FROM post_views GROUP BY post_id) v ON v.post_id = p.id
		WHERE p.is_published AND p.created_at >= $1
		GROUP BY p.category_id`, since,
	)
	if err != nil {
		return nil, fmt.Errorf("query category totals since %s: %w", since, err)
	}
	defer rows.Close()

	totals := make(map[int64]domain.WindowTotals)
	for rows.Next() {
		var categoryID int64
		var posts, likes, comments, views int64
		if err := rows.Scan(&categoryID, &posts, &likes, &comments, &views); err != nil {
			return nil, fmt.Errorf("scan category totals: %w", err)
		}
		totals[categoryID] = domain.WindowTotals{
			PostCount: int(posts),
			Likes:     int(likes),
			Comments:  int(comments),
			Views:     int(views),
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate category totals: %w", err)
	}
	return totals, nil
}
