package dedup

import (
	"context"
	"fmt"
	"github.com/redis/go-redis/v9"
	"time"
)

const keyPrefix = "pricecrowd:dedup:"

// Deduplicator remembers keys for a TTL. A nil Deduplicator, or one without
// a client, reports nothing as duplicate.
type Deduplicator struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewDeduplicator(rdb *redis.Client, ttl time.Duration) *Deduplicator {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Deduplicator{
		rdb: rdb,
		ttl: ttl,
	}
}

func (d *Deduplicator) IsDuplicate(ctx context.Context, key string) (bool, error) {
	if d == nil || d.rdb == nil || key == "" {
		return false, nil
	}
	ok, err := d.rdb.SetNX(ctx, keyPrefix+key, "1", d.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("dedup setnx: %w", err)
	}
	return !ok, nil
}
