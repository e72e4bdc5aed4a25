package domain

import "time"

// EngagementCounts is a read-only snapshot of a post's interaction totals.
type EngagementCounts struct {
	Likes    int `json:"likes"`
	Comments int `json:"comments"`
	Views    int `json:"views"`
}

type PostSummary struct {
	ID         int64     `json:"id"`
	AuthorID   int64     `json:"author_id"`
	CategoryID int64     `json:"category_id"`
	CreatedAt  time.Time `json:"created_at"`
}
