package cache

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jmagar/workshop-cli/internal/model"
)

type fakeSource struct {
	mu    sync.Mutex
	calls int
	info  model.ItemInfo
	err   error
}

func (f *fakeSource) ItemDetails(ctx context.Context, itemID string) (model.ItemInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.info, f.err
}

func TestItemCache_RoundTrip(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	want := model.ItemInfo{Title: "Nacht der Untoten", FileSizeBytes: 4096}
	if err := WriteItemCache("42", want); err != nil {
		t.Fatalf("WriteItemCache: %v", err)
	}
	got, cachedAt, err := ReadItemCache("42")
	if err != nil {
		t.Fatalf("ReadItemCache: %v", err)
	}
	if got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}
	if time.Since(cachedAt) > time.Minute {
		t.Fatalf("unexpected cachedAt %v", cachedAt)
	}
}

func TestGetItemCachePath_RejectsTraversal(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	if _, err := GetItemCachePath("../42"); !errors.Is(err, model.ErrInvalidItemID) {
		t.Fatalf("expected ErrInvalidItemID, got %v", err)
	}
}

func TestCachedMetadata_UsesFreshCacheAndFallsBackToStale(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	src := &fakeSource{info: model.ItemInfo{Title: "Fresh", FileSizeBytes: 10}}
	now := time.Now()
	c := CachedMetadata{Source: src, TTL: time.Hour, Now: func() time.Time { return now }}

	for i := 0; i < 2; i++ {
		info, err := c.ItemDetails(context.Background(), "7")
		if err != nil || info.Title != "Fresh" {
			t.Fatalf("ItemDetails = %+v, %v", info, err)
		}
	}
	if src.calls != 1 {
		t.Fatalf("source called %d times, want 1", src.calls)
	}

	now = now.Add(2 * time.Hour)
	src.err = errors.New("offline")
	info, err := c.ItemDetails(context.Background(), "7")
	if err != nil || info.Title != "Fresh" {
		t.Fatalf("expected stale fallback, got %+v, %v", info, err)
	}

	if _, err := c.ItemDetails(context.Background(), "8"); err == nil {
		t.Fatal("expected error with no cache and failing source")
	}
}

func TestTryAcquisitionLock_Exclusive(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	first, err := TryAcquisitionLock()
	if err != nil {
		t.Fatalf("first lock: %v", err)
	}
	if _, err := TryAcquisitionLock(); err == nil {
		t.Fatal("second lock should fail while the first is held")
	}
	if err := first.Release(); err != nil {
		t.Fatalf("Release: %v", err)
	}
	if err := first.Release(); err != nil {
		t.Fatalf("second Release: %v", err)
	}
	again, err := TryAcquisitionLock()
	if err != nil {
		t.Fatalf("lock after release: %v", err)
	}
	_ = again.Release()
}
