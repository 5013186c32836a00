package workflow_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"apod/internal/apod"
	"apod/internal/imagecache"
	"apod/internal/services"
	"apod/internal/testsupport"
	"apod/internal/workflow"
)

type recordingSetter struct {
	paths []string
	err   error
}

func (s *recordingSetter) SetBackground(_ context.Context, path string) error {
	s.paths = append(s.paths, path)
	return s.err
}

type fixture struct {
	server *testsupport.APODServer
	cache  *imagecache.Cache
	runner *workflow.Runner
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	server := testsupport.NewAPODServer(t)
	cfg := testsupport.NewConfig(t, testsupport.WithBaseURL(server.BaseURL()))
	client, err := apod.New(cfg.APOD.APIKey, cfg.APOD.BaseURL, apod.WithHTTPClient(server.Client()))
	if err != nil {
		t.Fatalf("apod.New: %v", err)
	}
	cache := testsupport.MustOpenCache(t, cfg)
	return &fixture{
		server: server,
		cache:  cache,
		runner: &workflow.Runner{Client: client, Cache: cache},
	}
}

func mustDate(t *testing.T, value string) time.Time {
	t.Helper()
	date, err := time.Parse(apod.DateLayout, value)
	if err != nil {
		t.Fatalf("parse %s: %v", value, err)
	}
	return date
}

func TestRunCachesImage(t *testing.T) {
	f := newFixture(t)
	f.server.AddImage("2024-01-12", "NGC 3521: Galaxy in a Bubble", "A spiral galaxy.", "NGC3521.jpg", []byte("galaxy"))

	result, err := f.runner.Run(context.Background(), mustDate(t, "2024-01-12"))
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if result.Cached {
		t.Error("expected first run to download a new image")
	}
	if result.ImageURL != f.server.MediaURL("NGC3521.jpg") {
		t.Errorf("ImageURL = %q, want hd url", result.ImageURL)
	}
	if result.RequestID == "" {
		t.Error("expected correlation id")
	}
	if filepath.Base(result.Entry.FilePath) != "NGC_3521_Galaxy_in_a_Bubble.jpg" {
		t.Errorf("FilePath = %q", result.Entry.FilePath)
	}
	data, err := os.ReadFile(result.Entry.FilePath)
	if err != nil {
		t.Fatalf("read cached image: %v", err)
	}
	if string(data) != "galaxy" {
		t.Errorf("cached bytes = %q", data)
	}
	if result.BackgroundSet {
		t.Error("background set without a setter")
	}
}

func TestRunTwiceReusesEntry(t *testing.T) {
	f := newFixture(t)
	f.server.AddImage("2024-01-12", "Galaxy", "", "galaxy.jpg", []byte("galaxy"))
	ctx := context.Background()
	date := mustDate(t, "2024-01-12")

	first, err := f.runner.Run(ctx, date)
	if err != nil {
		t.Fatalf("first Run failed: %v", err)
	}
	second, err := f.runner.Run(ctx, date)
	if err != nil {
		t.Fatalf("second Run failed: %v", err)
	}
	if !second.Cached {
		t.Error("expected second run to report a cache hit")
	}
	if *first.Entry != *second.Entry {
		t.Errorf("entries differ: %+v vs %+v", first.Entry, second.Entry)
	}
	titles, err := f.cache.ListTitles(ctx)
	if err != nil {
		t.Fatalf("ListTitles failed: %v", err)
	}
	if len(titles) != 1 {
		t.Errorf("expected 1 cached title, got %v", titles)
	}
}

func TestRunVideoUsesThumbnail(t *testing.T) {
	f := newFixture(t)
	f.server.AddVideo("2024-02-01", "Solar Eclipse Timelapse", "eclipse.jpg", []byte("thumb"))

	result, err := f.runner.Run(context.Background(), mustDate(t, "2024-02-01"))
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if result.ImageURL != f.server.MediaURL("eclipse.jpg") {
		t.Errorf("ImageURL = %q, want thumbnail", result.ImageURL)
	}
	if filepath.Base(result.Entry.FilePath) != "Solar_Eclipse_Timelapse.jpg" {
		t.Errorf("FilePath = %q", result.Entry.FilePath)
	}
}

func TestRunMissingDateCreatesNoEntry(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.runner.Run(ctx, mustDate(t, "2024-01-13"))
	if !errors.Is(err, services.ErrFetch) {
		t.Fatalf("expected fetch error, got %v", err)
	}
	if f.server.MediaRequests() != 0 {
		t.Errorf("media requested after metadata failure")
	}
	titles, err := f.cache.ListTitles(ctx)
	if err != nil {
		t.Fatalf("ListTitles failed: %v", err)
	}
	if len(titles) != 0 {
		t.Errorf("expected empty cache, got %v", titles)
	}
}

func TestRunFailuresCreateNoEntry(t *testing.T) {
	tests := []struct {
		name   string
		setup  func(*testsupport.APODServer)
		marker error
	}{
		{
			name: "image download fails",
			setup: func(s *testsupport.APODServer) {
				s.AddEntry(apod.Info{Date: "2024-01-12", Title: "Gone", MediaType: "image", URL: s.MediaURL("gone.jpg")})
			},
			marker: services.ErrFetch,
		},
		{
			name: "unsupported media",
			setup: func(s *testsupport.APODServer) {
				s.AddEntry(apod.Info{Date: "2024-01-12", Title: "Interactive", MediaType: "other", URL: s.MediaURL("page.html")})
			},
			marker: services.ErrValidation,
		},
		{
			name: "url without extension",
			setup: func(s *testsupport.APODServer) {
				s.AddEntry(apod.Info{Date: "2024-01-12", Title: "No Ext", MediaType: "image", URL: s.MediaURL("noext")})
				s.SetMedia("noext", []byte("bytes"))
			},
			marker: services.ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			tt.setup(f.server)
			ctx := context.Background()

			if _, err := f.runner.Run(ctx, mustDate(t, "2024-01-12")); !errors.Is(err, tt.marker) {
				t.Fatalf("expected %v, got %v", tt.marker, err)
			}
			entries, err := f.cache.List(ctx)
			if err != nil {
				t.Fatalf("List failed: %v", err)
			}
			if len(entries) != 0 {
				t.Fatalf("expected no entries, got %d", len(entries))
			}
		})
	}
}

func TestRunSetsBackground(t *testing.T) {
	f := newFixture(t)
	f.server.AddImage("2024-01-12", "Moon", "", "moon.png", []byte("moon"))
	setter := &recordingSetter{}
	f.runner.Setter = setter

	result, err := f.runner.Run(context.Background(), mustDate(t, "2024-01-12"))
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !result.BackgroundSet {
		t.Error("expected BackgroundSet")
	}
	if len(setter.paths) != 1 || setter.paths[0] != result.Entry.FilePath {
		t.Errorf("setter received %v, want [%s]", setter.paths, result.Entry.FilePath)
	}
}

func TestRunSetterFailureKeepsCacheEntry(t *testing.T) {
	f := newFixture(t)
	f.server.AddImage("2024-01-12", "Moon", "", "moon.png", []byte("moon"))
	f.runner.Setter = &recordingSetter{err: services.Wrap(services.ErrExternalTool, "desktop", "set background", "boom", nil)}
	ctx := context.Background()

	if _, err := f.runner.Run(ctx, mustDate(t, "2024-01-12")); !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool error, got %v", err)
	}
	entries, err := f.cache.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected cached entry to survive setter failure, got %d", len(entries))
	}
}

func TestRunRequiresDependencies(t *testing.T) {
	runner := &workflow.Runner{}
	if _, err := runner.Run(context.Background(), time.Now()); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}
