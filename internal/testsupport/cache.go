package testsupport

import (
	"context"
	"testing"

	"apod/internal/config"
	"apod/internal/imagecache"
)

// MustOpenCache opens the image cache configured in cfg and registers cleanup.
func MustOpenCache(t testing.TB, cfg *config.Config) *imagecache.Cache {
	t.Helper()

	cache, err := imagecache.Open(context.Background(), imagecache.Options{Dir: cfg.Paths.CacheDir})
	if err != nil {
		t.Fatalf("imagecache.Open: %v", err)
	}
	t.Cleanup(func() {
		_ = cache.Close()
	})
	return cache
}
