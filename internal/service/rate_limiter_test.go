package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

type mockRedisEvaler struct {
	lastScript string
	lastKeys   []string
	lastArgs   []interface{}
	result     int64
	err        error
}

func (m *mockRedisEvaler) Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd {
	m.lastScript = script
	m.lastKeys = keys
	m.lastArgs = args
	cmd := redis.NewCmd(ctx)
	if m.err != nil {
		cmd.SetErr(m.err)
		return cmd
	}
	cmd.SetVal(m.result)
	return cmd
}

func TestRedisRateLimiterAllow(t *testing.T) {
	ctx := context.Background()

	t.Run("nil receiver fail-open", func(t *testing.T) {
		var l *redisRateLimiter
		if !l.Allow(ctx, "user@example.com") {
			t.Fatalf("expected fail-open for nil limiter")
		}
	})

	t.Run("empty key rejected", func(t *testing.T) {
		l := NewRedisRateLimiter(&mockRedisEvaler{result: 1}, "rl:login:", time.Minute, 3)
		if l.Allow(ctx, "   ") {
			t.Fatalf("expected empty key to be rejected")
		}
	})

	t.Run("allow when count within max", func(t *testing.T) {
		mock := &mockRedisEvaler{result: 2}
		l := NewRedisRateLimiter(mock, "rl:login:", 2*time.Minute, 3)
		if !l.Allow(ctx, " User@Example.com ") {
			t.Fatalf("expected allow when count <= max")
		}
		if len(mock.lastKeys) != 1 || mock.lastKeys[0] != "rl:login:user@example.com" {
			t.Fatalf("unexpected key normalization, got %+v", mock.lastKeys)
		}
		if len(mock.lastArgs) != 1 || mock.lastArgs[0] != 120 {
			t.Fatalf("expected TTL seconds=120, got %+v", mock.lastArgs)
		}
		if mock.lastScript != redisAllowScript {
			t.Fatalf("expected script to match")
		}
	})

	t.Run("deny when count exceeds max", func(t *testing.T) {
		l := NewRedisRateLimiter(&mockRedisEvaler{result: 4}, "rl:login:", time.Minute, 3)
		if l.Allow(ctx, "user@example.com") {
			t.Fatalf("expected deny when count > max")
		}
	})

	t.Run("redis error fail-open", func(t *testing.T) {
		l := NewRedisRateLimiter(&mockRedisEvaler{err: errors.New("redis down")}, "rl:login:", time.Minute, 3)
		if !l.Allow(ctx, "user@example.com") {
			t.Fatalf("expected fail-open on redis errors")
		}
	})
}

func TestRedisRateLimiter_AgainstMiniredis(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	l := NewRedisRateLimiter(client, "rl:test:", time.Minute, 2)
	ctx := context.Background()
	if !l.Allow(ctx, "k") || !l.Allow(ctx, "k") {
		t.Fatalf("expected first two attempts allowed")
	}
	if l.Allow(ctx, "k") {
		t.Fatalf("expected third attempt denied")
	}
	mr.FastForward(2 * time.Minute)
	if !l.Allow(ctx, "k") {
		t.Fatalf("expected window reset after expiry")
	}
}

func TestMemoryRateLimiter_SlidingWindow(t *testing.T) {
	l := NewMemoryRateLimiter(time.Minute, 2).(*memoryRateLimiter)
	base := time.Now().UTC()
	l.now = func() time.Time { return base }
	ctx := context.Background()

	if !l.Allow(ctx, "a") || !l.Allow(ctx, "A ") {
		t.Fatalf("expected first two attempts allowed")
	}
	if l.Allow(ctx, "a") {
		t.Fatalf("expected third attempt denied")
	}
	if !l.Allow(ctx, "b") {
		t.Fatalf("expected other keys unaffected")
	}

	l.now = func() time.Time { return base.Add(61 * time.Second) }
	if !l.Allow(ctx, "a") {
		t.Fatalf("expected attempt allowed after window")
	}
}

func TestMemoryRateLimiter_DropsStaleKeys(t *testing.T) {
	l := NewMemoryRateLimiter(time.Minute, 3).(*memoryRateLimiter)
	base := time.Now().UTC()
	l.now = func() time.Time { return base }
	ctx := context.Background()

	for i := 0; i < 1000; i++ {
		l.Allow(ctx, fmt.Sprintf("user%d@example.com", i))
	}
	if got := len(l.hits); got != 1000 {
		t.Fatalf("expected 1000 keys, got %d", got)
	}

	l.now = func() time.Time { return base.Add(24 * time.Hour) }
	if !l.Allow(ctx, "fresh@example.com") {
		t.Fatalf("expected fresh key allowed")
	}
	if got := len(l.hits); got != 1 {
		t.Fatalf("expected stale keys dropped, %d keys left", got)
	}
}
