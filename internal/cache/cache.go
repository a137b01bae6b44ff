// FilePath: internal/cache/cache.go
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/agrirobotics/datalake/internal/config"
	"github.com/agrirobotics/datalake/internal/models"
	"github.com/redis/go-redis/v9"
	nuts "github.com/vaudience/go-nuts"
)

// ErrMiss is returned when no cached value exists for a mission.
var ErrMiss = redis.Nil

// StateCache keeps the most recent robot state per mission in Redis so
// the latest-state endpoint does not hit Postgres on every poll. Cache
// failures are logged and never fail the write path.
type StateCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func New(cfg config.RedisConfig) *StateCache {
	rdb := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return &StateCache{rdb: rdb, ttl: cfg.CacheTTL}
}

func cacheKeyLatestState(missionID int64) string {
	return fmt.Sprintf("mission:%d:latest_state", missionID)
}

// SetLatestState stores the newest sample of a batch.
func (c *StateCache) SetLatestState(ctx context.Context, missionID int64, state *models.RobotState) error {
	payload, err := json.Marshal(state)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, cacheKeyLatestState(missionID), payload, c.ttl).Err()
}

// GetLatestState returns the cached newest sample, or ErrMiss.
func (c *StateCache) GetLatestState(ctx context.Context, missionID int64) (*models.RobotState, error) {
	raw, err := c.rdb.Get(ctx, cacheKeyLatestState(missionID)).Result()
	if err != nil {
		return nil, err
	}
	state := &models.RobotState{}
	if err := json.Unmarshal([]byte(raw), state); err != nil {
		return nil, err
	}
	return state, nil
}

// Ping verifies connectivity at startup.
func (c *StateCache) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// Close releases the underlying connection pool.
func (c *StateCache) Close() error {
	if err := c.rdb.Close(); err != nil {
		nuts.L.Warnf("[StateCache] Failed to close redis client: %v", err)
		return err
	}
	return nil
}
