// Package cache provides an optional Redis-backed snapshot cache for poll
// reads. The process runs fine without Redis; when the initial ping fails the
// cache is simply not wired up.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"quickpoll-backend/models"

	"github.com/redis/go-redis/v9"
)

const defaultTTL = 5 * time.Minute

// PollCache caches session-free poll snapshots keyed by poll id. Mutations
// invalidate before the response is returned, so a caller always reads its
// own writes.
type PollCache struct {
	client *redis.Client
	ttl    time.Duration
}

// InitFromEnv connects to Redis using REDIS_ADDR / REDIS_PASSWORD / REDIS_DB.
// Returns (nil, nil) when REDIS_ADDR is unset.
func InitFromEnv() (*PollCache, error) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		return nil, nil
	}

	db := 0
	if dbStr := os.Getenv("REDIS_DB"); dbStr != "" {
		if parsed, err := strconv.Atoi(dbStr); err == nil {
			db = parsed
		}
	}

	client := redis.NewClient(&redis.Options{
		Addr:        addr,
		Password:    os.Getenv("REDIS_PASSWORD"),
		DB:          db,
		DialTimeout: 3 * time.Second,
		ReadTimeout: 3 * time.Second,
		PoolSize:    10,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &PollCache{client: client, ttl: defaultTTL}, nil
}

// GetPoll returns the cached snapshot, if any.
func (c *PollCache) GetPoll(ctx context.Context, pollID string) (*models.Poll, bool) {
	data, err := c.client.Get(ctx, pollKey(pollID)).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Printf("cache read failed for poll %s: %v", pollID, err)
		}
		return nil, false
	}

	var poll models.Poll
	if err := json.Unmarshal(data, &poll); err != nil {
		log.Printf("cache entry for poll %s is corrupt, dropping: %v", pollID, err)
		c.client.Del(ctx, pollKey(pollID))
		return nil, false
	}
	return &poll, true
}

// SetPoll stores a snapshot. Failures are logged and ignored; the cache is
// best-effort.
func (c *PollCache) SetPoll(ctx context.Context, poll *models.Poll) {
	data, err := json.Marshal(poll)
	if err != nil {
		log.Printf("failed to marshal poll %s for cache: %v", poll.PollID, err)
		return
	}
	if err := c.client.Set(ctx, pollKey(poll.PollID), data, c.ttl).Err(); err != nil {
		log.Printf("cache write failed for poll %s: %v", poll.PollID, err)
	}
}

// Invalidate drops the cached snapshot for a poll.
func (c *PollCache) Invalidate(ctx context.Context, pollID string) error {
	return c.client.Del(ctx, pollKey(pollID)).Err()
}

// Close releases the underlying connection pool.
func (c *PollCache) Close() error {
	return c.client.Close()
}

func pollKey(pollID string) string {
	return fmt.Sprintf("poll:%s:snapshot", pollID)
}
