package cache

import (
	"context"
	"testing"
	"time"
)

func newTestStore(t *testing.T) (*MemoryStore, *time.Time) {
	t.Helper()
	store := NewMemoryStore()
	t.Cleanup(store.Close)
	clock := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return clock }
	return store, &clock
}

func TestMemoryStore_SetGetExpire(t *testing.T) {
	store, clock := newTestStore(t)

	store.Set("k", "v", time.Minute)
	if v, ok := store.Get("k"); !ok || v != "v" {
		t.Fatalf("Get = %q, %v", v, ok)
	}

	*clock = clock.Add(2 * time.Minute)
	if _, ok := store.Get("k"); ok {
		t.Error("expired key still readable")
	}
}

func TestMemoryStore_SetNX(t *testing.T) {
	store, clock := newTestStore(t)

	if !store.SetNX("lock", "a", time.Minute) {
		t.Fatal("first SetNX failed")
	}
	if store.SetNX("lock", "b", time.Minute) {
		t.Fatal("second SetNX took a held key")
	}

	*clock = clock.Add(time.Minute + time.Second)
	if !store.SetNX("lock", "b", time.Minute) {
		t.Fatal("SetNX on an expired key failed")
	}
	if store.DeleteIf("lock", "a") {
		t.Error("stale holder deleted the new value")
	}
	if !store.DeleteIf("lock", "b") {
		t.Error("owner could not delete")
	}
}

func TestMemoryLocker(t *testing.T) {
	store, _ := newTestStore(t)
	locker := NewMemoryLocker(store)
	ctx := context.Background()

	release, ok, err := locker.TryLock(ctx, "sweep", time.Minute)
	if err != nil || !ok {
		t.Fatalf("TryLock = %v, %v", ok, err)
	}

	if _, ok, _ := locker.TryLock(ctx, "sweep", time.Minute); ok {
		t.Fatal("lock granted twice")
	}

	release()
	if _, ok, _ := locker.TryLock(ctx, "sweep", time.Minute); !ok {
		t.Fatal("lock not released")
	}
}
