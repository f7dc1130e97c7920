package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"jewelshop/internal/infra"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const statsGenerationKey = "stats:generation"

// StatsCache keeps computed stats in Redis. Every sale or expense mutation
// bumps a generation counter that is part of each key, so stale entries are
// never read again and simply expire. A nil *StatsCache, or one without a
// client, caches nothing.
type StatsCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewStatsCache(rdb *redis.Client, ttl time.Duration) *StatsCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &StatsCache{rdb: rdb, ttl: ttl}
}

func (c *StatsCache) enabled() bool { return c != nil && c.rdb != nil }

// Invalidate makes every cached result unreachable.
func (c *StatsCache) Invalidate(ctx context.Context) {
	if !c.enabled() {
		return
	}
	if err := c.rdb.Incr(ctx, statsGenerationKey).Err(); err != nil {
		log.Warn().Err(err).Msg("stats cache: invalidate failed")
	}
}

// snapshotKey names the entry for [start, end] at the current generation.
// Take it once, before reading the database, and use it for both load and
// store. ok is false when caching is off or the generation cannot be read.
func (c *StatsCache) snapshotKey(ctx context.Context, start, end time.Time) (key string, ok bool) {
	if !c.enabled() {
		return "", false
	}
	gen, err := c.rdb.Get(ctx, statsGenerationKey).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		infra.StatsCacheLookups.WithLabelValues("error").Inc()
		log.Warn().Err(err).Msg("stats cache: read generation failed")
		return "", false
	}
	return fmt.Sprintf("stats:%d:%d:%d", gen, start.UTC().UnixNano(), end.UTC().UnixNano()), true
}

// load decodes the entry at key into dest. It reports false on a miss or any
// Redis failure; the caller then recomputes.
func (c *StatsCache) load(ctx context.Context, key string, dest interface{}) bool {
	raw, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			infra.StatsCacheLookups.WithLabelValues("miss").Inc()
		} else {
			infra.StatsCacheLookups.WithLabelValues("error").Inc()
			log.Warn().Err(err).Msg("stats cache: get failed")
		}
		return false
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		infra.StatsCacheLookups.WithLabelValues("error").Inc()
		return false
	}
	infra.StatsCacheLookups.WithLabelValues("hit").Inc()
	return true
}

func (c *StatsCache) store(ctx context.Context, key string, value interface{}) {
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		log.Warn().Err(err).Msg("stats cache: set failed")
	}
}
