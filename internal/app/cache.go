package app

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/shrimpsizemoose/lussekatt/internal/rollcall"
)

const summaryKeyTpl = "summary:%s:%s" // summary:${rangeStart}:${rangeEnd}

// summaryRedis is the slice of the redis client the cache needs.
type summaryRedis interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Scan(ctx context.Context, cursor uint64, match string, count int64) *redis.ScanCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// SummaryCache is a transient, invalidation-driven cache of monthly rollups.
// Keys carry the full query parameters, so a late-arriving computation for an
// old range can never be served against a different one. Every write to
// students, attendance or holidays flushes it: summaries are always
// recomputable from table contents and are never the source of truth.
type SummaryCache struct {
	enabled bool
	redis   summaryRedis
	ttl     time.Duration
}

func NewSummaryCache(config *Config, client *redis.Client) *SummaryCache {
	if !config.Cache.Enabled || client == nil {
		return &SummaryCache{enabled: false}
	}
	return &SummaryCache{
		enabled: true,
		redis:   client,
		ttl:     time.Duration(config.Cache.TTLSeconds) * time.Second,
	}
}

func SummaryKey(rangeStart, rangeEnd string) string {
	return fmt.Sprintf(summaryKeyTpl, rangeStart, rangeEnd)
}

func (c *SummaryCache) Get(ctx context.Context, key string) ([]rollcall.Summary, bool) {
	if !c.enabled {
		return nil, false
	}

	data, err := c.redis.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		logger.Debug.Printf("Summary cache read failed for %s: %v", key, err)
		return nil, false
	}

	var summaries []rollcall.Summary
	if err := json.Unmarshal(data, &summaries); err != nil {
		logger.Debug.Printf("Summary cache payload corrupt for %s: %v", key, err)
		return nil, false
	}
	return summaries, true
}

func (c *SummaryCache) Put(ctx context.Context, key string, summaries []rollcall.Summary) {
	if !c.enabled {
		return
	}

	data, err := json.Marshal(summaries)
	if err != nil {
		logger.Debug.Printf("Summary cache marshal failed for %s: %v", key, err)
		return
	}
	if err := c.redis.Set(ctx, key, data, c.ttl).Err(); err != nil {
		logger.Debug.Printf("Summary cache write failed for %s: %v", key, err)
	}
}

// Invalidate drops every cached summary.
func (c *SummaryCache) Invalidate(ctx context.Context) {
	if !c.enabled {
		return
	}

	iter := c.redis.Scan(ctx, 0, "summary:*", 0).Iterator()
	for iter.Next(ctx) {
		if err := c.redis.Del(ctx, iter.Val()).Err(); err != nil {
			logger.Debug.Printf("Failed to drop cached summary %s: %v", iter.Val(), err)
		}
	}
	if err := iter.Err(); err != nil {
		logger.Debug.Printf("Summary cache invalidation scan failed: %v", err)
	}
}
