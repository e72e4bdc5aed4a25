package seeds

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

func Setup(ctx context.Context, pool *pgxpool.Pool) error {
	rng := rand.New(rand.NewSource(42))

	// Truncate existing data before insert
	log.Println("[seed] truncating existing data")
	if _, err := pool.Exec(ctx, `
		TRUNCATE follows, comments, post_views, post_likes, posts, categories, users RESTART IDENTITY CASCADE
	`); err != nil {
		return fmt.Errorf("truncate: %w", err)
	}

	log.Println("[seed] inserting users")
	if err := seedUsers(ctx, pool, 20); err != nil {
		return fmt.Errorf("seed users: %w", err)
	}

	log.Println("[seed] inserting categories")
	if err := seedCategories(ctx, pool); err != nil {
		return fmt.Errorf("seed categories: %w", err)
	}

	log.Println("[seed] inserting posts")
	if err := seedPosts(ctx, pool, rng, 60); err != nil {
		return fmt.Errorf("seed posts: %w", err)
	}

	log.Println("[seed] inserting interactions")
	if err := seedInteractions(ctx, pool, rng); err != nil {
		return fmt.Errorf("seed interactions: %w", err)
	}

	log.Println("[seed] seeding complete")
	return nil
}

func seedUsers(ctx context.Context, pool *pgxpool.Pool, n int) error {
	rows := []string{}
	args := []any{}

	for i := 0; i < n; i++ {
		rows = append(rows, fmt.Sprintf("($%d)", i+1))
		args = append(args, fmt.Sprintf("user_%02d", i+1))
	}

	query := "INSERT INTO users (username) VALUES " + strings.Join(rows, ", ")
	if _, err := pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("insert users: %w", err)
	}
	return nil
}

func seedCategories(ctx context.Context, pool *pgxpool.Pool) error {
	names := []string{"Technology", "Travel", "Food", "Culture", "Sports", "Finance"}

	rows := []string{}
	args := []any{}
	for i, name := range names {
		base := i * 2
		rows = append(rows, fmt.Sprintf("($%d, $%d)", base+1, base+2))
		args = append(args, name, strings.ToLower(name))
	}

	query := "INSERT INTO categories (name, slug) VALUES " + strings.Join(rows, ", ")
	if _, err := pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("insert categories: %w", err)
	}
	return nil
}

func seedPosts(ctx context.Context, pool *pgxpool.Pool, rng *rand.Rand, n int) error {
	rows := []string{}
	args := []any{}

	for i := 0; i < n; i++ {
		authorID := int64(rng.Intn(20) + 1)
		categoryID := int64(rng.Intn(6) + 1)
		// Cluster most posts into the trailing month so the trending
		// windows have signal.
		ageHours := rng.Intn(24 * 30)
		if rng.Float64() < 0.2 {
			ageHours = 24*30 + rng.Intn(24*300)
		}
		createdAt := time.Now().Add(-time.Duration(ageHours) * time.Hour)

		base := i * 4
		rows = append(rows, fmt.Sprintf("($%d, $%d, $%d, $%d)", base+1, base+2, base+3, base+4))
		args = append(args, authorID, categoryID, fmt.Sprintf("Post %d", i+1), createdAt)
	}

	query := "INSERT INTO posts (author_id, category_id, title, created_at) VALUES " + strings.Join(rows, ", ")
	if _, err := pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("insert posts: %w", err)
	}
	return nil
}

func seedInteractions(ctx context.Context, pool *pgxpool.Pool, rng *rand.Rand) error {
	if err := seedPairs(ctx, pool, rng, "post_likes", "post_id", 60, "user_id", 20, 250); err != nil {
		return err
	}
	if err := seedPairs(ctx, pool, rng, "post_views", "post_id", 60, "user_id", 20, 500); err != nil {
		return err
	}
	if err := seedPairs(ctx, pool, rng, "follows", "follower_id", 20, "following_id", 20, 60); err != nil {
		return err
	}
	return seedComments(ctx, pool, rng, 120)
}

// seedPairs inserts up to n distinct (a, b) pairs.
func seedPairs(ctx context.Context, pool *pgxpool.Pool, rng *rand.Rand, table, colA string, maxA int, colB string, maxB, n int) error {
	seen := make(map[[2]int64]bool)
	rows := []string{}
	args := []any{}

	for len(seen) < n && len(seen) < maxA*maxB-maxA {
		a := int64(rng.Intn(maxA) + 1)
		b := int64(rng.Intn(maxB) + 1)
		if a == b && table == "follows" {
			continue
		}
		if seen[[2]int64{a, b}] {
			continue
		}
		seen[[2]int64{a, b}] = true

		base := len(args)
		rows = append(rows, fmt.Sprintf("($%d, $%d)", base+1, base+2))
		args = append(args, a, b)
	}

	query := fmt.Sprintf("INSERT INTO %s (%s, %s) VALUES %s", table, colA, colB, strings.Join(rows, ", "))
	if _, err := pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("insert %s: %w", table, err)
	}
	return nil
}

func seedComments(ctx context.Context, pool *pgxpool.Pool, rng *rand.Rand, n int) error {
	rows := []string{}
	args := []any{}

	for i := 0; i < n; i++ {
		postID := int64(rng.Intn(60) + 1)
		authorID := int64(rng.Intn(20) + 1)

		base := i * 3
		rows = append(rows, fmt.Sprintf("($%d, $%d, $%d)", base+1, base+2, base+3))
		args = append(args, postID, authorID, fmt.Sprintf("Comment %d", i+1))
	}

	query := "INSERT INTO comments (post_id, author_id, body) VALUES " + strings.Join(rows, ", ")
	if _, err := pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("insert comments: %w", err)
	}
	return nil
}
