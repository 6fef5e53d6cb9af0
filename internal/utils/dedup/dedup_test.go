package dedup

import (
	"context"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"testing"
	"time"
)

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	s, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	t.Cleanup(s.Close)

	rdb := redis.NewClient(&redis.Options{Addr: s.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return s, rdb
}

func TestDeduplicator_IsDuplicate(t *testing.T) {
	_, rdb := newRedis(t)
	d := NewDeduplicator(rdb, time.Minute)
	ctx := context.Background()

	dup, err := d.IsDuplicate(ctx, "tg-update:100")
	if err != nil {
		t.Fatalf("first dedup: %v", err)
	}
	if dup {
		t.Fatalf("expected first to be non-duplicate")
	}

	dup, err = d.IsDuplicate(ctx, "tg-update:100")
	if err != nil {
		t.Fatalf("second dedup: %v", err)
	}
	if !dup {
		t.Fatalf("expected second to be duplicate")
	}
}

func TestDeduplicator_Expires(t *testing.T) {
	s, rdb := newRedis(t)
	d := NewDeduplicator(rdb, time.Minute)
	ctx := context.Background()

	if _, err := d.IsDuplicate(ctx, "k"); err != nil {
		t.Fatalf("dedup: %v", err)
	}
	s.FastForward(2 * time.Minute)

	dup, err := d.IsDuplicate(ctx, "k")
	if err != nil {
		t.Fatalf("dedup after ttl: %v", err)
	}
	if dup {
		t.Fatalf("expected key to expire")
	}
}

func TestDeduplicator_NilPassesThrough(t *testing.T) {
	ctx := context.Background()

	var none *Deduplicator
	if dup, err := none.IsDuplicate(ctx, "k"); dup || err != nil {
		t.Fatalf("nil deduplicator should pass through, got %v %v", dup, err)
	}
	if dup, err := NewDeduplicator(nil, 0).IsDuplicate(ctx, "k"); dup || err != nil {
		t.Fatalf("deduplicator without redis should pass through, got %v %v", dup, err)
	}
}
