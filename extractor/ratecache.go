package extractor

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// RateCache throttles repeated extraction attempts for the same tenant and
// deduplicates identical decision statements within a short window, so a
// retry storm from one client doesn't multiply LLM spend. It is ambient
// infrastructure only: no decision state is ever persisted here, and
// entries expire on their own.
type RateCache struct {
	client *redis.Client
	window time.Duration
	limit  int64
}

// NewRateCache constructs a RateCache backed by client. window bounds how
// long an attempt counter or dedup key lives; limit is the maximum number
// of extraction attempts allowed per tenant per window.
func NewRateCache(client *redis.Client, window time.Duration, limit int64) *RateCache {
	return &RateCache{client: client, window: window, limit: limit}
}

// Allow increments the attempt counter for tenantID and reports whether
// the tenant is still within its rate limit for the current window.
func (c *RateCache) Allow(ctx context.Context, tenantID string) (bool, error) {
	if c == nil || c.client == nil {
		return true, nil
	}
	key := fmt.Sprintf("extract:rate:%s", tenantID)
	count, err := c.client.Incr(ctx, key).Result()
	if err != nil {
		return true, fmt.Errorf("extractor: rate cache incr: %w", err)
	}
	if count == 1 {
		if err := c.client.Expire(ctx, key, c.window).Err(); err != nil {
			return true, fmt.Errorf("extractor: rate cache expire: %w", err)
		}
	}
	return count <= c.limit, nil
}

// SeenRecently reports whether this exact statement was already submitted
// for tenantID within the dedup window, marking it seen if not.
func (c *RateCache) SeenRecently(ctx context.Context, tenantID, statement string) (bool, error) {
	if c == nil || c.client == nil {
		return false, nil
	}
	key := fmt.Sprintf("extract:dedup:%s:%x", tenantID, hashStatement(statement))
	set, err := c.client.SetNX(ctx, key, "1", c.window).Result()
	if err != nil {
		return false, fmt.Errorf("extractor: rate cache setnx: %w", err)
	}
	return !set, nil
}
