package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"github.com/redis/go-redis/v9"
	"math"
	"pricecrowd-backend/internal/metrics"
	"time"
)

var ErrRateLimitTimeout = errors.New("rate limit wait timeout")

// sendSlotLua keeps the theoretical arrival time of the next send (GCRA) in
// one key. It returns 0 when a slot was taken, otherwise the ms to wait.
const sendSlotLua = `
local now = tonumber(ARGV[1])
local interval = tonumber(ARGV[2])
local tolerance = tonumber(ARGV[3])

local tat = math.max(tonumber(redis.call("GET", KEYS[1])) or now, now)
if now < tat - tolerance then
  return tat - tolerance - now
end

tat = tat + interval
redis.call("SET", KEYS[1], tat, "PX", tat - now + interval)
return 0
`

// RateLimiter spaces outbound sends through redis, so every replica shares
// one budget of rate sends per second with bursts of up to burst.
type RateLimiter struct {
	rdb       *redis.Client
	key       string
	interval  int64
	tolerance int64
	script    *redis.Script
}

// NewRedisRateLimiter returns a limiter that never blocks when rdb is nil or
// rate or burst is not positive.
func NewRedisRateLimiter(rdb *redis.Client, key string, rate float64, burst float64) *RateLimiter {
	if rdb == nil || rate <= 0 || burst <= 0 {
		return &RateLimiter{}
	}
	interval := int64(math.Ceil(1000 / rate))
	return &RateLimiter{
		rdb:       rdb,
		key:       key,
		interval:  interval,
		tolerance: interval * int64(math.Max(math.Floor(burst)-1, 0)),
		script:    redis.NewScript(sendSlotLua),
	}
}

// Acquire blocks until a send slot is free. It returns ErrRateLimitTimeout
// when ctx ends first.
func (r *RateLimiter) Acquire(ctx context.Context) error {
	if r == nil || r.rdb == nil {
		return nil
	}

	start := time.Now()
	for {
		waitMs, err := r.script.Run(ctx, r.rdb, []string{r.key}, time.Now().UnixMilli(), r.interval, r.tolerance).Int64()
		if err != nil {
			return fmt.Errorf("ratelimit eval: %w", err)
		}
		if waitMs <= 0 {
			metrics.RateLimitWaitDuration.Observe(time.Since(start).Seconds())
			return nil
		}

		timer := time.NewTimer(time.Duration(waitMs) * time.Millisecond)
		select {
		case <-ctx.Done():
			timer.Stop()
			metrics.RateLimitTimeoutTotal.Inc()
			return ErrRateLimitTimeout
		case <-timer.C:
		}
	}
}
