package scheduling

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"hangout-service/internal/models"
)

// OverlapCache is a read-through Redis cache for computed overlap lists.
// It is strictly advisory: any Redis failure falls through to the database.
// A nil *OverlapCache (or one built over a nil client) disables caching.
type OverlapCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewOverlapCache constructs a cache; client may be nil.
func NewOverlapCache(client *redis.Client, ttl time.Duration) *OverlapCache {
	if client == nil {
		return nil
	}
	return &OverlapCache{client: client, ttl: ttl}
}

// Keys are directional: the result list tags the first user as reference.
func overlapKey(userA, userB int) string {
	return fmt.Sprintf("overlaps:%d:%d", userA, userB)
}

// Get returns a cached overlap list, or ok=false on miss or any error.
func (c *OverlapCache) Get(ctx context.Context, userA, userB int) ([]models.AvailabilityWindow, bool) {
	if c == nil {
		return nil, false
	}

	raw, err := c.client.Get(ctx, overlapKey(userA, userB)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Printf("overlap cache get failed: %v", err)
		}
		return nil, false
	}

	var overlaps []models.AvailabilityWindow
	if err := json.Unmarshal(raw, &overlaps); err != nil {
		log.Printf("overlap cache decode failed: %v", err)
		return nil, false
	}
	return overlaps, true
}

// Set stores an overlap list; failures are logged and ignored.
func (c *OverlapCache) Set(ctx context.Context, userA, userB int, overlaps []models.AvailabilityWindow) {
	if c == nil {
		return
	}

	raw, err := json.Marshal(overlaps)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, overlapKey(userA, userB), raw, c.ttl).Err(); err != nil {
		log.Printf("overlap cache set failed: %v", err)
	}
}

// InvalidateUser drops every cached pair involving the user; called whenever
// the user's windows change.
func (c *OverlapCache) InvalidateUser(ctx context.Context, userID int) {
	if c == nil {
		return
	}

	for _, pattern := range []string{
		fmt.Sprintf("overlaps:%d:*", userID),
		fmt.Sprintf("overlaps:*:%d", userID),
	} {
		iter := c.client.Scan(ctx, 0, pattern, 0).Iterator()
		for iter.Next(ctx) {
			if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
				log.Printf("overlap cache invalidate failed: %v", err)
			}
		}
		if err := iter.Err(); err != nil {
			log.Printf("overlap cache scan failed: %v", err)
		}
	}
}
