package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/sav-suite/reclamation-service/internal/domain"
)

// ReclamationCache keeps read-through snapshots of reclamations in
// Redis. Cache misses and Redis outages degrade to the repository; the
// workflow never depends on the cache for correctness.
type ReclamationCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewReclamationCache builds the cache. A nil client disables it.
func NewReclamationCache(client *redis.Client, ttl time.Duration, logger *zap.Logger) *ReclamationCache {
	return &ReclamationCache{client: client, ttl: ttl, logger: logger}
}

func cacheKey(id int64) string {
	return fmt.Sprintf("reclamation:%d", id)
}

// Get returns the cached snapshot if present.
func (c *ReclamationCache) Get(ctx context.Context, id int64) (*domain.Reclamation, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}
	raw, err := c.client.Get(ctx, cacheKey(id)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Debug("cache get failed", zap.Int64("reclamation_id", id), zap.Error(err))
		}
		return nil, false
	}
	var rec domain.Reclamation
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, false
	}
	return &rec, true
}

// Set stores a snapshot with the configured TTL.
func (c *ReclamationCache) Set(ctx context.Context, rec *domain.Reclamation) {
	if c == nil || c.client == nil || rec == nil || c.ttl <= 0 {
		return
	}
	raw, err := json.Marshal(rec)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, cacheKey(rec.ID), raw, c.ttl).Err(); err != nil {
		c.logger.Debug("cache set failed", zap.Int64("reclamation_id", rec.ID), zap.Error(err))
	}
}

// Invalidate drops the snapshot after a workflow mutation.
func (c *ReclamationCache) Invalidate(ctx context.Context, id int64) {
	if c == nil || c.client == nil {
		return
	}
	if err := c.client.Del(ctx, cacheKey(id)).Err(); err != nil {
		c.logger.Debug("cache invalidate failed", zap.Int64("reclamation_id", id), zap.Error(err))
	}
}
