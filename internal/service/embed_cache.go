package service

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/embed-service/internal/domain"
	"github.com/spec-kit/embed-service/internal/persistence"
)

const embedCacheKeyPrefix = "embed:snapshot:"

// embedSnapshot is the cached view consulted on the validation path:
// the project display fields plus the embed configuration, if any.
type embedSnapshot struct {
	Project domain.Project      `json:"project"`
	Config  *domain.EmbedConfig `json:"config,omitempty"`
}

// EmbedSnapshotCache is a read-through Redis cache for embed validation
// lookups. Rotations and project updates invalidate the key; a cache
// failure always degrades to the database.
type EmbedSnapshotCache struct {
	redis  *persistence.Redis
	ttl    time.Duration
	logger *zap.Logger
}

// NewEmbedSnapshotCache constructs the cache. A nil redis handle or a
// non-positive TTL disables caching.
func NewEmbedSnapshotCache(redis *persistence.Redis, ttl time.Duration, logger *zap.Logger) *EmbedSnapshotCache {
	return &EmbedSnapshotCache{redis: redis, ttl: ttl, logger: logger}
}

func (c *EmbedSnapshotCache) enabled() bool {
	return c != nil && c.redis != nil && c.redis.Handle() != nil && c.ttl > 0
}

func (c *EmbedSnapshotCache) get(ctx context.Context, projectID string) (*embedSnapshot, bool) {
	if !c.enabled() {
		return nil, false
	}
	raw, err := c.redis.Handle().Get(ctx, embedCacheKeyPrefix+projectID).Bytes()
	if err != nil {
		return nil, false
	}
	var snapshot embedSnapshot
	if err := json.Unmarshal(raw, &snapshot); err != nil {
		c.logger.Debug("discarding malformed embed snapshot", zap.String("project_id", projectID), zap.Error(err))
		return nil, false
	}
	return &snapshot, true
}

func (c *EmbedSnapshotCache) set(ctx context.Context, projectID string, snapshot *embedSnapshot) {
	if !c.enabled() {
		return
	}
	raw, err := json.Marshal(snapshot)
	if err != nil {
		return
	}
	if err := c.redis.Handle().Set(ctx, embedCacheKeyPrefix+projectID, raw, c.ttl).Err(); err != nil {
		c.logger.Debug("embed snapshot cache write failed", zap.String("project_id", projectID), zap.Error(err))
	}
}

// Invalidate drops the snapshot for a project. Called on token rotation
// and on project update/delete.
func (c *EmbedSnapshotCache) Invalidate(ctx context.Context, projectID string) {
	if !c.enabled() {
		return
	}
	if err := c.redis.Handle().Del(ctx, embedCacheKeyPrefix+projectID).Err(); err != nil {
		c.logger.Debug("embed snapshot cache invalidation failed", zap.String("project_id", projectID), zap.Error(err))
	}
}
