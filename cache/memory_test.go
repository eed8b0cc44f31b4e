package cache

import (
	"context"
	"testing"
	"time"

	"github.com/xraph/wami"
)

func TestMemoryCacheHitMiss(t *testing.T) {
	ctx := context.Background()
	c := NewMemory(WithTTL(time.Minute))

	result := &wami.Result{Allowed: true, Decision: wami.DecisionAllow}

	// Miss
	_, ok := c.Get(ctx, "t1", "u1", "iam:GetUser", "arn:r1")
	if ok {
		t.Fatal("expected cache miss")
	}

	// Set + Hit
	c.Set(ctx, "t1", "u1", "iam:GetUser", "arn:r1", result)
	got, ok := c.Get(ctx, "t1", "u1", "iam:GetUser", "arn:r1")
	if !ok {
		t.Fatal("expected cache hit")
	}
	if !got.Allowed {
		t.Fatal("expected allowed")
	}
}

func TestMemoryCacheTTLExpiry(t *testing.T) {
	ctx := context.Background()
	c := NewMemory(WithTTL(1 * time.Millisecond))

	c.Set(ctx, "t1", "u1", "iam:GetUser", "arn:r1", &wami.Result{Allowed: true})
	time.Sleep(5 * time.Millisecond)

	_, ok := c.Get(ctx, "t1", "u1", "iam:GetUser", "arn:r1")
	if ok {
		t.Fatal("expected cache miss after TTL expiry")
	}
}

func TestMemoryCacheInvalidateTenant(t *testing.T) {
	ctx := context.Background()
	c := NewMemory()

	c.Set(ctx, "t1", "u1", "iam:GetUser", "arn:r1", &wami.Result{Allowed: true})
	c.Set(ctx, "t1", "u2", "iam:PutUser", "arn:r2", &wami.Result{Allowed: false})
	c.Set(ctx, "t2", "u1", "iam:GetUser", "arn:r1", &wami.Result{Allowed: true})

	c.InvalidateTenant(ctx, "t1")

	if _, ok := c.Get(ctx, "t1", "u1", "iam:GetUser", "arn:r1"); ok {
		t.Fatal("t1 u1 should be invalidated")
	}
	if _, ok := c.Get(ctx, "t1", "u2", "iam:PutUser", "arn:r2"); ok {
		t.Fatal("t1 u2 should be invalidated")
	}
	if _, ok := c.Get(ctx, "t2", "u1", "iam:GetUser", "arn:r1"); !ok {
		t.Fatal("t2 u1 should still be cached")
	}
}

func TestMemoryCacheInvalidateCaller(t *testing.T) {
	ctx := context.Background()
	c := NewMemory()

	c.Set(ctx, "t1", "u1", "iam:GetUser", "arn:r1", &wami.Result{Allowed: true})
	c.Set(ctx, "t1", "u2", "iam:GetUser", "arn:r1", &wami.Result{Allowed: true})

	c.InvalidateCaller(ctx, "t1", "u1")

	if _, ok := c.Get(ctx, "t1", "u1", "iam:GetUser", "arn:r1"); ok {
		t.Fatal("u1 should be invalidated")
	}
	if _, ok := c.Get(ctx, "t1", "u2", "iam:GetUser", "arn:r1"); !ok {
		t.Fatal("u2 should still be cached")
	}
}

func TestMemoryCacheMaxSize(t *testing.T) {
	ctx := context.Background()
	c := NewMemory(WithMaxSize(2))

	for i := 0; i < 5; i++ {
		c.Set(ctx, "t1", "u1", "iam:GetUser", string(rune('a'+i)), &wami.Result{Allowed: true})
	}

	c.mu.RLock()
	size := len(c.entries)
	c.mu.RUnlock()
	if size > 2 {
		t.Fatalf("expected max 2 entries, got %d", size)
	}
}
