package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"
)

// failingBackend always errors, standing in for an unreachable Redis.
type failingBackend struct {
	calls int
}

func (f *failingBackend) CheckRateLimit(context.Context, string, int, float64, int) (bool, int, error) {
	f.calls++
	return false, 0, errors.New("connection refused")
}

func TestLocalBackend_AllowAndDeny(t *testing.T) {
	b := NewLocalTokenBucketBackend()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		allowed, _, err := b.CheckRateLimit(ctx, "ip:10.0.0.1", 3, 1.0, 1)
		if err != nil {
			t.Fatalf("CheckRateLimit failed: %v", err)
		}
		if !allowed {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}

	allowed, remaining, err := b.CheckRateLimit(ctx, "ip:10.0.0.1", 3, 1.0, 1)
	if err != nil {
		t.Fatalf("CheckRateLimit failed: %v", err)
	}
	if allowed {
		t.Fatal("request should be denied when tokens exhausted")
	}
	if remaining != 0 {
		t.Fatalf("expected 0 remaining, got %d", remaining)
	}
}

func TestLocalBackend_Refill(t *testing.T) {
	b := NewLocalTokenBucketBackend()
	ctx := context.Background()

	b.CheckRateLimit(ctx, "ip:10.0.0.2", 2, 100.0, 2)
	time.Sleep(50 * time.Millisecond)

	allowed, _, err := b.CheckRateLimit(ctx, "ip:10.0.0.2", 2, 100.0, 1)
	if err != nil {
		t.Fatalf("CheckRateLimit failed: %v", err)
	}
	if !allowed {
		t.Fatal("request should be allowed after refill period")
	}
}

func TestLocalBackend_BucketsAreIndependent(t *testing.T) {
	b := NewLocalTokenBucketBackend()
	ctx := context.Background()

	b.CheckRateLimit(ctx, "ip:10.0.0.3", 1, 0.001, 1)

	allowed, _, err := b.CheckRateLimit(ctx, "ip:10.0.0.4", 1, 0.001, 1)
	if err != nil {
		t.Fatalf("CheckRateLimit failed: %v", err)
	}
	if !allowed {
		t.Fatal("exhausting one client's bucket must not affect another")
	}
}

func TestFallbackBackend_DegradesOnPrimaryError(t *testing.T) {
	primary := &failingBackend{}
	fb := NewFallbackBackend(primary)
	ctx := context.Background()

	allowed, _, err := fb.CheckRateLimit(ctx, "ip:10.0.0.5", 5, 1.0, 1)
	if err != nil {
		t.Fatalf("fallback leaked primary error: %v", err)
	}
	if !allowed {
		t.Fatal("local fallback should allow the first request")
	}
	if !fb.Degraded() {
		t.Fatal("backend should report degraded after primary failure")
	}

	// Subsequent checks go straight to the local buckets without
	// hammering the primary (probe throttling aside).
	before := primary.calls
	fb.CheckRateLimit(ctx, "ip:10.0.0.5", 5, 1.0, 1)
	if primary.calls != before {
		t.Fatalf("degraded check hit the primary %d extra times", primary.calls-before)
	}
}

func TestFallbackBackend_LocalLimitStillEnforced(t *testing.T) {
	fb := NewFallbackBackend(&failingBackend{})
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		fb.CheckRateLimit(ctx, "ip:10.0.0.6", 2, 0.001, 1)
	}

	allowed, _, err := fb.CheckRateLimit(ctx, "ip:10.0.0.6", 2, 0.001, 1)
	if err != nil {
		t.Fatalf("CheckRateLimit failed: %v", err)
	}
	if allowed {
		t.Fatal("degraded mode must still deny exhausted buckets")
	}
}

func TestFallbackBackend_InterfaceCompliance(t *testing.T) {
	var _ Backend = (*FallbackBackend)(nil)
	var _ Backend = (*LocalTokenBucketBackend)(nil)
}
