package domain

// PopularUser is an entry of the anonymous user-recommendation fallback,
// ranked by follower count then total likes received.
type PopularUser struct {
	ID             int64 `json:"id"`
	FollowerCount  int   `json:"follower_count"`
	LikesReceived  int   `json:"likes_received"`
	PublishedPosts int   `json:"published_posts"`
}
