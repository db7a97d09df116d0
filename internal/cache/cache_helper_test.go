package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestCache(t *testing.T) (*CacheHelper, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewCacheHelper(client, "progress:"), mr
}

type testPayload struct {
	UserID string `json:"user_id"`
	Count  int    `json:"count"`
}

func TestCacheHelper_GetSet(t *testing.T) {
	ctx := context.Background()
	cache, _ := newTestCache(t)

	in := testPayload{UserID: "u1", Count: 3}
	if err := cache.Set(ctx, "user:u1", in, time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	var out testPayload
	if err := cache.Get(ctx, "user:u1", &out); err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if out != in {
		t.Errorf("roundtrip mismatch: got %+v, want %+v", out, in)
	}
}

func TestCacheHelper_GetMiss(t *testing.T) {
	ctx := context.Background()
	cache, _ := newTestCache(t)

	var out testPayload
	err := cache.Get(ctx, "user:missing", &out)
	if !errors.Is(err, ErrCacheNotFound) {
		t.Fatalf("expected ErrCacheNotFound, got %v", err)
	}
}

func TestCacheHelper_NilClientDegradation(t *testing.T) {
	ctx := context.Background()
	cache := NewCacheHelper(nil, "progress:")

	if err := cache.Set(ctx, "k", "v", time.Minute); err != nil {
		t.Errorf("Set with nil client should be a no-op, got %v", err)
	}
	if err := cache.Delete(ctx, "k"); err != nil {
		t.Errorf("Delete with nil client should be a no-op, got %v", err)
	}

	var out string
	if err := cache.Get(ctx, "k", &out); !errors.Is(err, ErrCacheNotAvailable) {
		t.Errorf("expected ErrCacheNotAvailable, got %v", err)
	}
}

func TestCacheHelper_Delete(t *testing.T) {
	ctx := context.Background()
	cache, _ := newTestCache(t)

	if err := cache.SetString(ctx, "user:u1", "x", time.Minute); err != nil {
		t.Fatalf("SetString failed: %v", err)
	}
	if err := cache.SetString(ctx, "user:u2", "y", time.Minute); err != nil {
		t.Fatalf("SetString failed: %v", err)
	}

	if err := cache.Delete(ctx, "user:u1", "user:u2"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	for _, key := range []string{"user:u1", "user:u2"} {
		exists, err := cache.Exists(ctx, key)
		if err != nil {
			t.Fatalf("Exists failed: %v", err)
		}
		if exists {
			t.Errorf("key %s should be gone", key)
		}
	}
}

func TestCacheHelper_InvalidatePattern(t *testing.T) {
	ctx := context.Background()
	cache, _ := newTestCache(t)

	keys := []string{"user:u1", "user:u2", "report:stage_stats"}
	for _, key := range keys {
		if err := cache.SetString(ctx, key, "v", time.Minute); err != nil {
			t.Fatalf("SetString failed: %v", err)
		}
	}

	if err := cache.InvalidatePattern(ctx, "user:*"); err != nil {
		t.Fatalf("InvalidatePattern failed: %v", err)
	}

	for _, key := range []string{"user:u1", "user:u2"} {
		if exists, _ := cache.Exists(ctx, key); exists {
			t.Errorf("key %s should be invalidated", key)
		}
	}
	if exists, _ := cache.Exists(ctx, "report:stage_stats"); !exists {
		t.Error("unrelated key should survive pattern invalidation")
	}
}

func TestCacheManager_NilClient(t *testing.T) {
	cm := NewCacheManager(nil)

	if err := cm.HealthCheck(context.Background()); !errors.Is(err, ErrCacheNotAvailable) {
		t.Fatalf("expected ErrCacheNotAvailable, got %v", err)
	}
}
