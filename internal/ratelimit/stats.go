package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Event describes one throttle decision.
type Event struct {
	Key     string
	Allowed bool
	Method  string
	Path    string
	At      time.Time
}

// StatsRecorder records throttle decisions for later inspection.
type StatsRecorder interface {
	Record(ctx context.Context, ev Event) error
}

// RedisStats accumulates allow/deny counters in Redis: a cumulative total
// hash plus per-minute buckets that expire.
type RedisStats struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisStats creates a recorder writing under the funnelcast prefix with
// 24h retention for the minute buckets.
func NewRedisStats(rdb *redis.Client) *RedisStats {
	return &RedisStats{
		rdb:    rdb,
		prefix: "funnelcast:ratelimit",
		ttl:    24 * time.Hour,
	}
}

// Record increments the counters for one decision in a single pipeline.
func (s *RedisStats) Record(ctx context.Context, ev Event) error {
	if s == nil || s.rdb == nil {
		return nil
	}

	at := ev.At
	if at.IsZero() {
		at = time.Now()
	}

	field := "denied"
	if ev.Allowed {
		field = "allowed"
	}

	pipe := s.rdb.Pipeline()
	pipe.HIncrBy(ctx, s.prefix+":total", field, 1)

	bucketKey := fmt.Sprintf("%s:minute:%s", s.prefix, at.UTC().Format("200601021504"))
	pipe.HIncrBy(ctx, bucketKey, field, 1)
	if s.ttl > 0 {
		pipe.Expire(ctx, bucketKey, s.ttl)
	}

	_, err := pipe.Exec(ctx)
	return err
}
