package repository

import (
	"context"
	"fmt"
)

// AddPostView records that a user viewed a post. Repeat views of the same
// post are collapsed into one row.
func (r *Repository) AddPostView(ctx context.Context, postID, userID int64) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO post_views (post_id, user_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		postID, userID,
	)
	if err != nil {
		return fmt.Errorf("insert view of post %d by user %d: %w", postID, userID, err)
	}
	return nil
}
