package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/alphanest/arbscan/internal/domain"
)

// latestKey holds the most recent cycle result as a JSON blob.
const latestKey = "arbscan:cycle:latest"

// ResultCache implements domain.ResultCache on Redis. The latest cycle
// result is stored as a single JSON value with a TTL so a stalled poller
// does not serve arbitrarily old data.
type ResultCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewResultCache creates a ResultCache backed by the given Client. ttl <= 0
// disables expiry.
func NewResultCache(c *Client, ttl time.Duration) *ResultCache {
	return &ResultCache{rdb: c.Underlying(), ttl: ttl}
}

// SetLatest stores the cycle result, replacing any previous one.
func (rc *ResultCache) SetLatest(ctx context.Context, res domain.CycleResult) error {
	data, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("redis: marshal cycle %s: %w", res.ID, err)
	}
	if err := rc.rdb.Set(ctx, latestKey, data, rc.ttl).Err(); err != nil {
		return fmt.Errorf("redis: set latest cycle: %w", err)
	}
	return nil
}

// GetLatest returns the most recently stored cycle result. It returns
// domain.ErrNotFound when no result has been stored or the stored one
// expired.
func (rc *ResultCache) GetLatest(ctx context.Context) (domain.CycleResult, error) {
	data, err := rc.rdb.Get(ctx, latestKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.CycleResult{}, domain.ErrNotFound
		}
		return domain.CycleResult{}, fmt.Errorf("redis: get latest cycle: %w", err)
	}

	var res domain.CycleResult
	if err := json.Unmarshal(data, &res); err != nil {
		return domain.CycleResult{}, fmt.Errorf("redis: unmarshal latest cycle: %w", err)
	}
	return res, nil
}

// Compile-time interface check.
var _ domain.ResultCache = (*ResultCache)(nil)
