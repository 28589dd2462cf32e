package registry

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"go.uber.org/zap"
)

// newRedisRegistry returns a registry backed by an in-process miniredis
// server, with cleanup registered on the test.
func newRedisRegistry(t *testing.T) *RedisRegistry {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis run: %v", err)
	}
	t.Cleanup(mr.Close)

	reg, err := NewRedisRegistry(mr.Addr(), "", 0, "lockd:", zap.NewNop())
	if err != nil {
		t.Fatalf("NewRedisRegistry: %v", err)
	}
	t.Cleanup(func() { _ = reg.Close() })

	return reg
}

func TestRedisRoundTrip(t *testing.T) {
	reg := newRedisRegistry(t)
	ctx := context.Background()

	if err := reg.Acquire(ctx, "room1", "tok-abc"); err != nil {
		t.Fatalf("Acquire: %v", err)
	}

	lock, err := reg.Release(ctx, "room1")
	if err != nil {
		t.Fatalf("Release: %v", err)
	}
	if lock.Token != "tok-abc" {
		t.Errorf("expected token %q, got %q", "tok-abc", lock.Token)
	}

	if _, err := reg.Release(ctx, "room1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound on second release, got %v", err)
	}
}

func TestRedisOverwrite(t *testing.T) {
	reg := newRedisRegistry(t)
	ctx := context.Background()

	if err := reg.Acquire(ctx, "room1", "t1"); err != nil {
		t.Fatalf("Acquire t1: %v", err)
	}
	if err := reg.Acquire(ctx, "room1", "t2"); err != nil {
		t.Fatalf("Acquire t2: %v", err)
	}

	lock, err := reg.Release(ctx, "room1")
	if err != nil {
		t.Fatalf("Release: %v", err)
	}
	if lock.Token != "t2" {
		t.Errorf("expected later token %q to win, got %q", "t2", lock.Token)
	}
}

func TestRedisPurgeAndLen(t *testing.T) {
	reg := newRedisRegistry(t)
	ctx := context.Background()

	if err := reg.Purge(ctx); err != nil {
		t.Fatalf("Purge on empty registry: %v", err)
	}

	for i := 0; i < 250; i++ {
		if err := reg.Acquire(ctx, fmt.Sprintf("k%d", i), "tok"); err != nil {
			t.Fatalf("Acquire: %v", err)
		}
	}

	n, err := reg.Len(ctx)
	if err != nil {
		t.Fatalf("Len: %v", err)
	}
	if n != 250 {
		t.Fatalf("expected 250 locks, got %d", n)
	}

	if err := reg.Purge(ctx); err != nil {
		t.Fatalf("Purge: %v", err)
	}
	if n, _ := reg.Len(ctx); n != 0 {
		t.Errorf("expected empty registry after purge, got %d locks", n)
	}
	if _, err := reg.Release(ctx, "k0"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after purge, got %v", err)
	}
}
