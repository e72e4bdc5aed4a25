package engine

import (
	"math"
	"runtime"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/samippaudel/engagement-service/internal/domain"
)

// Engagement weights for the trending score.
const (
	commentWeight = 5.0
	likeWeight    = 3.0
	viewWeight    = 1.0
)

// DecayParams controls the plateau-then-decay curve: a score holds steady
// for DecayHours after creation, then decays exponentially at LambdaDecay.
type DecayParams struct {
	DecayHours  float64
	LambdaDecay float64
}

func DefaultDecayParams() DecayParams {
	return DecayParams{DecayHours: 24, LambdaDecay: 0.1}
}

// TrendingScore maps a post's engagement counts and age to a single score.
// New posts get an undiminished grace window before novelty starts fading,
// so they are not unfairly compared against older posts while still
// accumulating signal. Pure arithmetic: never errors, always finite.
func TrendingScore(counts domain.EngagementCounts, createdAt, now time.Time, p DecayParams) float64 {
	weighted := commentWeight*float64(counts.Comments) +
		likeWeight*float64(counts.Likes) +
		viewWeight*float64(counts.Views)

	hoursElapsed := now.Sub(createdAt).Hours()
	timeFactor := 1.0
	if hoursElapsed > p.DecayHours {
		timeFactor = math.Exp(-p.LambdaDecay * (hoursElapsed - p.DecayHours))
	}

	return math.Round(weighted*timeFactor*100) / 100
}

// scoreFanoutThreshold is the post-count above which RankPosts spreads
// scoring across workers.
const scoreFanoutThreshold = 512

// RankPosts scores every post against a prefetched counts map and returns
// them ordered by score descending, recency descending, then id ascending.
// Posts missing from counts score as zero engagement.
func RankPosts(posts []domain.PostSummary, counts map[int64]domain.EngagementCounts, now time.Time, p DecayParams) []domain.ScoredPost {
	scores := make([]float64, len(posts))

	score := func(i int) {
		scores[i] = TrendingScore(counts[posts[i].ID], posts[i].CreatedAt, now, p)
	}

	if len(posts) < scoreFanoutThreshold {
		for i := range posts {
			score(i)
		}
	} else {
		// Each post's score depends only on its own snapshot, so slices of
		// the input can be scored independently.
		var eg errgroup.Group
		workers := runtime.GOMAXPROCS(0)
		chunk := (len(posts) + workers - 1) / workers
		for start := 0; start < len(posts); start += chunk {
			start := start
			end := min(start+chunk, len(posts))
			eg.Go(func() error {
				for i := start; i < end; i++ {
					score(i)
				}
				return nil
			})
		}
		_ = eg.Wait() // workers never return errors
	}

	ranked := make([]domain.ScoredPost, len(posts))
	for i, post := range posts {
		ranked[i] = domain.ScoredPost{PostID: post.ID, Score: scores[i]}
	}

	byID := make(map[int64]domain.PostSummary, len(posts))
	for _, post := range posts {
		byID[post.ID] = post
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		ci, cj := byID[ranked[i].PostID].CreatedAt, byID[ranked[j].PostID].CreatedAt
		if !ci.Equal(cj) {
			return ci.After(cj)
		}
		return ranked[i].PostID < ranked[j].PostID
	})

	return ranked
}
