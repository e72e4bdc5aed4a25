package domain

type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// WindowTotals aggregates engagement for one category over one time window.
type WindowTotals struct {
	PostCount int `json:"post_count"`
	Likes     int `json:"likes"`
	Comments  int `json:"comments"`
	Views     int `json:"views"`
}

// TrendingTopic is one entry of the ranked trending-topics list. Count is
// the display number shown to end users, not the ranking score.
type TrendingTopic struct {
	CategoryID int64   `json:"category_id"`
	Name       string  `json:"name"`
	Slug       string  `json:"slug"`
	Score      float64 `json:"score"`
	Count      int     `json:"count"`
}
