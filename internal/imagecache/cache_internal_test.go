package imagecache

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"apod/internal/fileutil"
)

func mustOpen(t *testing.T, dir string) *Cache {
	t.Helper()
	cache, err := Open(context.Background(), Options{Dir: dir})
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { _ = cache.Close() })
	return cache
}

func countWrites(c *Cache) *int {
	var writes int
	c.writeFile = func(path string, data []byte, mode os.FileMode) error {
		writes++
		return fileutil.WriteFileAtomic(path, data, mode)
	}
	return &writes
}

func TestEnsureCachedSkipsWriteWhenDigestKnown(t *testing.T) {
	cache := mustOpen(t, t.TempDir())
	writes := countWrites(cache)
	ctx := context.Background()

	for range 3 {
		if _, err := cache.EnsureCached(ctx, "Orion", "", "https://example.com/o.jpg", []byte("orion")); err != nil {
			t.Fatalf("EnsureCached failed: %v", err)
		}
	}
	if *writes != 1 {
		t.Errorf("writes = %d, want 1", *writes)
	}
}

func TestEnsureCachedReusesOrphanedFile(t *testing.T) {
	dir := t.TempDir()
	cache := mustOpen(t, dir)
	writes := countWrites(cache)
	data := []byte("orphan")

	// File left behind by a run that crashed before inserting its row.
	orphan := filepath.Join(dir, "Orphan.png")
	if err := os.WriteFile(orphan, data, 0o644); err != nil {
		t.Fatalf("write orphan: %v", err)
	}

	entry, err := cache.EnsureCached(context.Background(), "Orphan", "", "https://example.com/o.png", data)
	if err != nil {
		t.Fatalf("EnsureCached failed: %v", err)
	}
	if entry.FilePath != orphan {
		t.Errorf("FilePath = %q, want %q", entry.FilePath, orphan)
	}
	if *writes != 0 {
		t.Errorf("writes = %d, want orphan reused", *writes)
	}
}

func TestEnsureCachedRecoversFromLostInsertRace(t *testing.T) {
	dir := t.TempDir()
	loser := mustOpen(t, dir)
	winner := mustOpen(t, dir)
	ctx := context.Background()
	data := []byte("race")

	var winnerEntry *Entry
	loser.beforeInsert = func(ctx context.Context) {
		entry, err := winner.EnsureCached(ctx, "Race", "", "https://example.com/r.jpg", data)
		if err != nil {
			t.Errorf("winner EnsureCached failed: %v", err)
			return
		}
		winnerEntry = entry
	}

	got, err := loser.EnsureCached(ctx, "Race", "", "https://example.com/r.jpg", data)
	if err != nil {
		t.Fatalf("loser EnsureCached failed: %v", err)
	}
	if winnerEntry == nil {
		t.Fatal("winner did not insert")
	}
	if got.ID != winnerEntry.ID {
		t.Errorf("loser returned id %d, want winner id %d", got.ID, winnerEntry.ID)
	}

	entries, err := loser.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("expected 1 row, got %d", len(entries))
	}
}

func TestEnsureCachedConcurrentCaches(t *testing.T) {
	dir := t.TempDir()
	const workers = 6
	caches := make([]*Cache, workers)
	for i := range caches {
		caches[i] = mustOpen(t, dir)
	}

	data := []byte("concurrent")
	ids := make([]int64, workers)
	errs := make([]error, workers)
	var wg sync.WaitGroup
	for i, cache := range caches {
		wg.Add(1)
		go func() {
			defer wg.Done()
			entry, err := cache.EnsureCached(context.Background(), "Shared", "", "https://example.com/s.jpg", data)
			errs[i] = err
			if entry != nil {
				ids[i] = entry.ID
			}
		}()
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("worker %d failed: %v", i, err)
		}
		if ids[i] != ids[0] {
			t.Errorf("worker %d got id %d, want %d", i, ids[i], ids[0])
		}
	}

	entries, err := caches[0].List(context.Background())
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("expected exactly 1 row, got %d", len(entries))
	}
}
