package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/samippaudel/engagement-service/internal/domain"
)

const defaultTTL = 10 * time.Minute

// Cache stores computed recommendation lists and similarity pairs. It is a
// performance aid only: recompute-on-read is always correct, and callers
// must treat every failure here as non-fatal.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Cache{client: client, ttl: ttl}
}

func postRecKey(userID int64, limit int, strategy domain.Strategy) string {
	return fmt.Sprintf("rec:posts:user:%d:limit:%d:%s", userID, limit, strategy)
}

func userRecKey(userID int64, limit int) string {
	return fmt.Sprintf("rec:users:user:%d:limit:%d", userID, limit)
}

// pairKey is unordered: both directions of a user pair share one entry.
func pairKey(user1ID, user2ID int64) string {
	if user2ID < user1ID {
		user1ID, user2ID = user2ID, user1ID
	}
	return fmt.Sprintf("sim:pair:%d:%d", user1ID, user2ID)
}

// GetPosts returns a cached post recommendation list, reporting a miss via
// the second return.
func (c *Cache) GetPosts(ctx context.Context, userID int64, limit int, strategy domain.Strategy) ([]domain.ScoredPost, bool, error) {
	var posts []domain.ScoredPost
	found, err := c.get(ctx, postRecKey(userID, limit, strategy), &posts)
	return posts, found, err
}

func (c *Cache) SetPosts(ctx context.Context, userID int64, limit int, strategy domain.Strategy, posts []domain.ScoredPost) error {
	return c.set(ctx, postRecKey(userID, limit, strategy), posts)
}

func (c *Cache) GetUsers(ctx context.Context, userID int64, limit int) ([]domain.ScoredUser, bool, error) {
	var users []domain.ScoredUser
	found, err := c.get(ctx, userRecKey(userID, limit), &users)
	return users, found, err
}

func (c *Cache) SetUsers(ctx context.Context, userID int64, limit int, users []domain.ScoredUser) error {
	return c.set(ctx, userRecKey(userID, limit), users)
}

func (c *Cache) GetSimilarity(ctx context.Context, user1ID, user2ID int64) (domain.SimilarityPair, bool, error) {
	var pair domain.SimilarityPair
	found, err := c.get(ctx, pairKey(user1ID, user2ID), &pair)
	return pair, found, err
}

func (c *Cache) SetSimilarity(ctx context.Context, pair domain.SimilarityPair) error {
	return c.set(ctx, pairKey(pair.User1ID, pair.User2ID), pair)
}

func (c *Cache) get(ctx context.Context, key string, v any) (bool, error) {
	val, err := c.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("cache get %s: %w", key, err)
	}
	if err := json.Unmarshal([]byte(val), v); err != nil {
		return false, fmt.Errorf("cache unmarshal %s: %w", key, err)
	}
	return true, nil
}

func (c *Cache) set(ctx context.Context, key string, v any) error {
	val, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("cache marshal %s: %w", key, err)
	}
	if err := c.client.Set(ctx, key, val, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache set %s: %w", key, err)
	}
	return nil
}

// ClearUserCache drops a user's recommendation entries, used when their
// interactions change.
func (c *Cache) ClearUserCache(ctx context.Context, userID int64) error {
	for _, pattern := range []string{
		fmt.Sprintf("rec:posts:user:%d:limit:*", userID),
		fmt.Sprintf("rec:users:user:%d:limit:*", userID),
	} {
		iter := c.client.Scan(ctx, 0, pattern, 100).Iterator()
		for iter.Next(ctx) {
			if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
				return fmt.Errorf("cache delete %s: %w", iter.Val(), err)
			}
		}
		if err := iter.Err(); err != nil {
			return err
		}
	}
	return nil
}

// Ping connectivity
func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
