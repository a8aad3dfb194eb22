package ratelimit

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newRedisLimiterForTest(t *testing.T) (*miniredis.Miniredis, *RedisFixedWindowLimiter) {
	t.Helper()
	m := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: m.Addr()})
	t.Cleanup(func() {
		_ = client.Close()
		m.Close()
	})
	return m, NewRedisFixedWindowLimiter(client, "rl_test")
}

func TestRedisFixedWindowLimiterAllowDenyAndReset(t *testing.T) {
	m, limiter := newRedisLimiterForTest(t)
	ctx := context.Background()
	key := Key(OperationDeleteUser, "admin-1")

	for i := 0; i < 3; i++ {
		ok, _, err := limiter.Allow(ctx, key, 3, 15*time.Minute)
		if err != nil || !ok {
			t.Fatalf("call %d: expected allow, got ok=%v err=%v", i+1, ok, err)
		}
	}
	for i := 0; i < 2; i++ {
		ok, retryAfter, err := limiter.Allow(ctx, key, 3, 15*time.Minute)
		if err != nil {
			t.Fatalf("deny call: %v", err)
		}
		if ok {
			t.Fatal("expected deny beyond limit")
		}
		if retryAfter <= 0 || retryAfter > 15*time.Minute {
			t.Fatalf("unexpected retry-after %v", retryAfter)
		}
	}

	stored, err := m.Get("rl_test:" + key)
	if err != nil {
		t.Fatalf("read counter: %v", err)
	}
	if stored != "3" {
		t.Fatalf("expected counter pinned at limit, got %s", stored)
	}

	m.FastForward(15*time.Minute + time.Millisecond)
	ok, _, err := limiter.Allow(ctx, key, 3, 15*time.Minute)
	if err != nil || !ok {
		t.Fatalf("expected allow after window expiry, got ok=%v err=%v", ok, err)
	}
}

func TestRedisFixedWindowLimiterBackendAndNilClientErrors(t *testing.T) {
	limiter := NewRedisFixedWindowLimiter(nil, "")
	if _, _, err := limiter.Allow(context.Background(), "k", 1, time.Second); err == nil {
		t.Fatal("expected nil client error")
	}

	badClient := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 20 * time.Millisecond, ReadTimeout: 20 * time.Millisecond, WriteTimeout: 20 * time.Millisecond})
	t.Cleanup(func() { _ = badClient.Close() })
	limiter = NewRedisFixedWindowLimiter(badClient, "")
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if _, _, err := limiter.Allow(ctx, "k", 1, time.Second); err == nil {
		t.Fatal("expected backend error")
	}
}

func TestParseRedisInt64Branches(t *testing.T) {
	if v, err := parseRedisInt64(int64(4)); err != nil || v != 4 {
		t.Fatalf("int64 parse mismatch v=%d err=%v", v, err)
	}
	if v, err := parseRedisInt64(int(3)); err != nil || v != 3 {
		t.Fatalf("int parse mismatch v=%d err=%v", v, err)
	}
	if _, err := parseRedisInt64(uint64(math.MaxUint64)); err == nil {
		t.Fatal("expected overflow error for uint64")
	}
	if _, err := parseRedisInt64("1"); err == nil {
		t.Fatal("expected string type error")
	}
	if _, err := parseRedisInt64(errors.New("x")); err == nil {
		t.Fatal("expected unexpected type error")
	}
}
