package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/BradenHooton/vigil/internal/models"
)

const banStatusKeyPrefix = "vigil:ban-status:"

// BanStatusCache fronts the ban-status read path with a short-TTL Redis
// cache. Every write-side ban mutation invalidates the key, so the TTL only
// bounds staleness when an invalidation is missed. Redis failures degrade to
// cache misses; the database stays the source of truth.
type BanStatusCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

func NewBanStatusCache(client *redis.Client, ttl time.Duration, logger *slog.Logger) *BanStatusCache {
	return &BanStatusCache{
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

// Get returns the cached ban status, or ok=false on a miss or any Redis error.
func (c *BanStatusCache) Get(ctx context.Context, userID string) (*models.BanInfo, bool) {
	data, err := c.client.Get(ctx, banStatusKeyPrefix+userID).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.WarnContext(ctx, "ban status cache read failed",
				slog.String("user_id", userID),
				slog.String("error", err.Error()),
			)
		}
		return nil, false
	}

	var info models.BanInfo
	if err := json.Unmarshal(data, &info); err != nil {
		c.logger.WarnContext(ctx, "ban status cache entry corrupt",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
		return nil, false
	}

	return &info, true
}

// Set stores the ban status under the configured TTL.
func (c *BanStatusCache) Set(ctx context.Context, userID string, info *models.BanInfo) {
	data, err := json.Marshal(info)
	if err != nil {
		return
	}

	if err := c.client.Set(ctx, banStatusKeyPrefix+userID, data, c.ttl).Err(); err != nil {
		c.logger.WarnContext(ctx, "ban status cache write failed",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
	}
}

// Invalidate drops the cached status after a ban mutation.
func (c *BanStatusCache) Invalidate(ctx context.Context, userID string) {
	if err := c.client.Del(ctx, banStatusKeyPrefix+userID).Err(); err != nil {
		c.logger.WarnContext(ctx, "ban status cache invalidation failed",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
	}
}
