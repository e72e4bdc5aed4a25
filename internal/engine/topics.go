package engine

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/samippaudel/engagement-service/internal/domain"
)

// The four nested aggregation windows.
const (
	recentWindow   = 3 * 24 * time.Hour
	weeklyWindow   = 7 * 24 * time.Hour
	monthlyWindow  = 30 * 24 * time.Hour
	baselineWindow = 365 * 24 * time.Hour
)

const (
	velocityCap    = 5.0
	consistencyCap = 2.0
)

// windowMetrics is one category's engagement aggregated over one window.
type windowMetrics struct {
	postCount     int
	avgEngagement float64
	total         float64
}

// TopicAnalyzer ranks categories by multi-window engagement velocity.
// Ephemeral: all metrics are recomputed per call from bulk aggregates.
type TopicAnalyzer struct {
	store Store
	now   func() time.Time
}

func NewTopicAnalyzer(store Store) *TopicAnalyzer {
	return &TopicAnalyzer{store: store, now: time.Now}
}

// TrendingTopics returns up to limit categories ordered by trending score
// descending. The store only yields categories holding at least one
// published post; categories whose posts all predate every window score
// zero but still appear. Only when no category has any post at all is a
// single synthetic "General" entry returned, so callers always have a
// topic to render.
func (a *TopicAnalyzer) TrendingTopics(ctx context.Context, limit int) ([]domain.TrendingTopic, error) {
	categories, err := a.store.Categories(ctx)
	if err != nil {
		return nil, fmt.Errorf("categories: %w", err)
	}

	now := a.now()
	windows := []time.Duration{recentWindow, weeklyWindow, monthlyWindow, baselineWindow}
	totals := make([]map[int64]domain.WindowTotals, len(windows))

	// One bulk aggregate per window; the four windows are independent.
	eg, egCtx := errgroup.WithContext(ctx)
	for i, window := range windows {
		i, window := i, window
		eg.Go(func() error {
			t, err := a.store.CategoryWindowTotals(egCtx, now.Add(-window))
			if err != nil {
				return fmt.Errorf("window totals (%s): %w", window, err)
			}
			totals[i] = t
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	topics := make([]domain.TrendingTopic, 0, len(categories))
	for _, category := range categories {
		recent := metricsFor(totals[0][category.ID])
		weekly := metricsFor(totals[1][category.ID])
		monthly := metricsFor(totals[2][category.ID])
		baseline := metricsFor(totals[3][category.ID])

		velocity := 1.0
		if baseline.avgEngagement > 0 {
			velocity = math.Min(recent.avgEngagement/baseline.avgEngagement, velocityCap)
		}
		consistency := 1.0
		if weekly.avgEngagement > 0 {
			consistency = math.Min(recent.avgEngagement/weekly.avgEngagement, consistencyCap)
		}

		score := recent.avgEngagement*velocity*consistency +
			weekly.avgEngagement*0.7 +
			monthly.avgEngagement*0.4 +
			baseline.avgEngagement*0.1

		switch {
		case recent.postCount > 0:
			score *= 1.5
		case weekly.postCount > 0:
			score *= 1.2
		}

		// Displayed count reads as "recent activity", deliberately decoupled
		// from the ranking score.
		display := int(math.Round(0.6*recent.total + 0.3*weekly.total + 0.1*monthly.total))
		if display < baseline.postCount {
			display = baseline.postCount
		}

		topics = append(topics, domain.TrendingTopic{
			CategoryID: category.ID,
			Name:       category.Name,
			Slug:       category.Slug,
			Score:      math.Round(score*100) / 100,
			Count:      display,
		})
	}

	if len(topics) == 0 {
		return []domain.TrendingTopic{{Name: "General", Slug: "general", Score: 0, Count: 0}}, nil
	}

	sort.Slice(topics, func(i, j int) bool {
		if topics[i].Score != topics[j].Score {
			return topics[i].Score > topics[j].Score
		}
		return topics[i].CategoryID < topics[j].CategoryID
	})

	if limit > 0 && len(topics) > limit {
		topics = topics[:limit]
	}
	return topics, nil
}

func metricsFor(t domain.WindowTotals) windowMetrics {
	total := float64(t.Likes)*3 + float64(t.Comments)*5 + float64(t.Views)
	divisor := t.PostCount
	if divisor < 1 {
		divisor = 1
	}
	return windowMetrics{
		postCount:     t.PostCount,
		avgEngagement: total / float64(divisor),
		total:         total,
	}
}
