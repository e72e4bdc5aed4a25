package engine

import (
	"context"
	"fmt"
	"sort"
)

// Co-interaction weights: sharing a like is a stronger signal than sharing
// a comment thread.
const (
	coLikeWeight    = 1.0
	coCommentWeight = 0.5
)

// Similarities holds per-candidate similarity weights computed for one
// source user. Weights lie in [0,1] and are normalized against the maximum
// raw score in this candidate pool, so they are only comparable within a
// single result set. Overlap counts the shared interactions behind each
// weight.
type Similarities struct {
	Weights map[int64]float64
	Overlap map[int64]int
}

// SimilaritiesFor scores every user who shares a liked or commented post
// with the source user. The source user never appears in the result; an
// empty interaction history yields an empty result, not an error.
func SimilaritiesFor(ctx context.Context, store Store, userID int64) (*Similarities, error) {
	liked, err := store.LikedPostIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("liked posts for user %d: %w", userID, err)
	}
	commented, err := store.CommentedPostIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("commented posts for user %d: %w", userID, err)
	}

	raw := make(map[int64]float64)
	overlap := make(map[int64]int)

	if len(liked) > 0 {
		likers, err := store.LikersOfPosts(ctx, sortedIDs(liked))
		if err != nil {
			return nil, fmt.Errorf("likers of liked posts: %w", err)
		}
		accumulate(raw, overlap, likers, userID, coLikeWeight)
	}
	if len(commented) > 0 {
		commenters, err := store.CommentersOfPosts(ctx, sortedIDs(commented))
		if err != nil {
			return nil, fmt.Errorf("commenters of commented posts: %w", err)
		}
		accumulate(raw, overlap, commenters, userID, coCommentWeight)
	}

	// Min-max scale against this pool's maximum.
	var max float64
	for _, score := range raw {
		if score > max {
			max = score
		}
	}
	if max > 0 {
		for id := range raw {
			raw[id] /= max
		}
	}

	return &Similarities{Weights: raw, Overlap: overlap}, nil
}

func accumulate(raw map[int64]float64, overlap map[int64]int, byPost map[int64][]int64, selfID int64, weight float64) {
	for _, actors := range byPost {
		for _, actor := range actors {
			if actor == selfID {
				continue
			}
			raw[actor] += weight
			overlap[actor]++
		}
	}
}

func sortedIDs(set map[int64]struct{}) []int64 {
	ids := make([]int64, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
