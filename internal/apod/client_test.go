package apod_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"apod/internal/apod"
	"apod/internal/services"
)

var testDate = time.Date(2024, time.January, 12, 0, 0, 0, 0, time.UTC)

func TestNewRequiresAPIKeyAndBaseURL(t *testing.T) {
	if _, err := apod.New("", "https://example.com"); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error when api key missing, got %v", err)
	}
	if _, err := apod.New("key", " "); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error when base url missing, got %v", err)
	}
}

func TestFetchInfoSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		if query.Get("api_key") != "key" {
			t.Errorf("expected api_key query parameter, got %q", r.URL.RawQuery)
		}
		if query.Get("date") != "2024-01-12" {
			t.Errorf("expected date query parameter, got %q", query.Get("date"))
		}
		if query.Get("thumbs") != "true" {
			t.Errorf("expected thumbs=true, got %q", query.Get("thumbs"))
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"date":"2024-01-12","title":"NGC 3521","explanation":"Galaxy.","media_type":"image","url":"https://x/a.jpg","hdurl":"https://x/a_big.jpg"}`))
	}))
	t.Cleanup(server.Close)

	client, err := apod.New("key", server.URL+"/")
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	info, err := client.FetchInfo(context.Background(), testDate)
	if err != nil {
		t.Fatalf("FetchInfo returned error: %v", err)
	}
	if info.Title != "NGC 3521" || info.HDURL != "https://x/a_big.jpg" || info.MediaType != "image" {
		t.Fatalf("unexpected info: %#v", info)
	}
}

func TestFetchInfoNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"code":404,"msg":"No data available for date: 2024-01-12"}`))
	}))
	t.Cleanup(server.Close)

	client, err := apod.New("key", server.URL)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	_, err = client.FetchInfo(context.Background(), testDate)
	if !errors.Is(err, services.ErrFetch) {
		t.Fatalf("expected fetch error, got %v", err)
	}
	if apod.StatusCode(err) != http.StatusNotFound {
		t.Fatalf("StatusCode = %d, want 404", apod.StatusCode(err))
	}
	if !strings.Contains(err.Error(), "No data available") {
		t.Fatalf("expected api message in error, got %v", err)
	}
}

func TestFetchInfoGatewayError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":{"code":"API_KEY_INVALID","message":"An invalid api_key was supplied."}}`))
	}))
	t.Cleanup(server.Close)

	client, err := apod.New("bad", server.URL)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	_, err = client.FetchInfo(context.Background(), testDate)
	if !errors.Is(err, services.ErrFetch) || !strings.Contains(err.Error(), "invalid api_key") {
		t.Fatalf("expected fetch error with gateway message, got %v", err)
	}
}

func TestFetchInfoBadPayload(t *testing.T) {
	cases := map[string]struct {
		body   string
		marker error
	}{
		"malformed json": {body: `{"title":`, marker: services.ErrFetch},
		"blank title":    {body: `{"title":"  ","media_type":"image"}`, marker: services.ErrValidation},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(tc.body))
			}))
			t.Cleanup(server.Close)

			client, err := apod.New("key", server.URL)
			if err != nil {
				t.Fatalf("New returned error: %v", err)
			}
			if _, err := client.FetchInfo(context.Background(), testDate); !errors.Is(err, tc.marker) {
				t.Fatalf("expected %v, got %v", tc.marker, err)
			}
		})
	}
}

func TestFetchInfoNetworkFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	client, err := apod.New("key", url, apod.WithTimeout(time.Second))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if _, err := client.FetchInfo(context.Background(), testDate); !errors.Is(err, services.ErrFetch) {
		t.Fatalf("expected fetch error, got %v", err)
	}
}

func TestFetchImage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok.jpg":
			_, _ = w.Write([]byte("jpeg-bytes"))
		case "/empty.jpg":
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)

	client, err := apod.New("key", server.URL, apod.WithHTTPClient(server.Client()))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	ctx := context.Background()

	data, err := client.FetchImage(ctx, server.URL+"/ok.jpg")
	if err != nil {
		t.Fatalf("FetchImage returned error: %v", err)
	}
	if string(data) != "jpeg-bytes" {
		t.Fatalf("FetchImage = %q", data)
	}

	if _, err := client.FetchImage(ctx, server.URL+"/empty.jpg"); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error for empty body, got %v", err)
	}
	_, err = client.FetchImage(ctx, server.URL+"/missing.jpg")
	if !errors.Is(err, services.ErrFetch) || apod.StatusCode(err) != http.StatusNotFound {
		t.Fatalf("expected 404 fetch error, got %v", err)
	}
}
