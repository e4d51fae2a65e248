//go:build !integration

package redis

import (
	"context"
	"errors"
	"testing"
	"time"
)

type MockRedisClient struct {
	IncrWithTTLFunc func(ctx context.Context, key string, ttl time.Duration) (int64, error)
	SetWithTTLFunc  func(ctx context.Context, key, value string, ttl time.Duration) error
	ExistsFunc      func(ctx context.Context, key string) (bool, error)
}

func (m *MockRedisClient) Ping(ctx context.Context) error { return nil }
func (m *MockRedisClient) IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	return m.IncrWithTTLFunc(ctx, key, ttl)
}
func (m *MockRedisClient) SetWithTTL(ctx context.Context, key, value string, ttl time.Duration) error {
	return m.SetWithTTLFunc(ctx, key, value, ttl)
}
func (m *MockRedisClient) Exists(ctx context.Context, key string) (bool, error) {
	return m.ExistsFunc(ctx, key)
}
func (m *MockRedisClient) Close() error { return nil }

// counting returns a client that counts hits per key.
func counting(t *testing.T, wantTTL time.Duration) (*MockRedisClient, map[string]int64) {
	counts := map[string]int64{}
	return &MockRedisClient{
		IncrWithTTLFunc: func(ctx context.Context, key string, ttl time.Duration) (int64, error) {
			if ttl != wantTTL {
				t.Errorf("unexpected ttl %v", ttl)
			}
			counts[key]++
			return counts[key], nil
		},
	}, counts
}

func TestRateLimiter(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)

	t.Run("should block over the limit within one window", func(t *testing.T) {
		client, counts := counting(t, time.Minute)
		rl := NewRateLimiter(client, 2, time.Minute)
		rl.now = func() time.Time { return start }

		for i, want := range []bool{true, true, false} {
			ok, err := rl.AllowCommand(ctx, 9, "search")
			if err != nil {
				t.Fatal(err)
			}
			if ok != want {
				t.Errorf("call %d: expected %v, got %v", i+1, want, ok)
			}
		}
		if len(counts) != 1 {
			t.Errorf("expected a single bucket key, got %v", counts)
		}
	})

	t.Run("should start over in the next window", func(t *testing.T) {
		client, counts := counting(t, time.Minute)
		rl := NewRateLimiter(client, 1, time.Minute)
		now := start
		rl.now = func() time.Time { return now }

		if ok, _ := rl.Allow(ctx, "k"); !ok {
			t.Fatal("first hit must pass")
		}
		if ok, _ := rl.Allow(ctx, "k"); ok {
			t.Fatal("second hit in the same window must be blocked")
		}
		now = now.Add(time.Minute)
		if ok, _ := rl.Allow(ctx, "k"); !ok {
			t.Fatal("first hit of a new window must pass")
		}
		if len(counts) != 2 {
			t.Errorf("expected two bucket keys, got %v", counts)
		}
	})

	t.Run("should surface redis errors", func(t *testing.T) {
		client := &MockRedisClient{
			IncrWithTTLFunc: func(context.Context, string, time.Duration) (int64, error) { return 0, errors.New("down") },
		}
		ok, err := NewRateLimiter(client, 5, time.Minute).Allow(ctx, "k")
		if err == nil || ok {
			t.Errorf("expected error and denial, got ok=%v err=%v", ok, err)
		}
	})
}

func TestUserCommandKey(t *testing.T) {
	if got := UserCommandKey(7, "tv"); got != "rate_limit:7:tv" {
		t.Fatalf("key = %q", got)
	}
}

func TestMembershipCache(t *testing.T) {
	ctx := context.Background()
	store := map[string]string{}
	var ttls []time.Duration
	client := &MockRedisClient{
		SetWithTTLFunc: func(_ context.Context, key, value string, ttl time.Duration) error {
			store[key] = value
			ttls = append(ttls, ttl)
			return nil
		},
		ExistsFunc: func(_ context.Context, key string) (bool, error) {
			_, ok := store[key]
			return ok, nil
		},
	}
	cache := NewMembershipCache(client, time.Hour)

	if joined, _ := cache.Joined(ctx, 42); joined {
		t.Fatal("unknown user must miss")
	}
	if err := cache.RememberJoined(ctx, 42); err != nil {
		t.Fatal(err)
	}
	if joined, _ := cache.Joined(ctx, 42); !joined {
		t.Fatal("remembered user must hit")
	}
	if len(ttls) != 1 || ttls[0] != time.Hour {
		t.Fatalf("ttls = %v", ttls)
	}
}
