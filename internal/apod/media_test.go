package apod_test

import (
	"errors"
	"testing"

	"apod/internal/apod"
	"apod/internal/services"
)

func TestImageURL(t *testing.T) {
	tests := []struct {
		name    string
		info    apod.Info
		want    string
		wantErr bool
	}{
		{
			name: "image prefers hd",
			info: apod.Info{MediaType: "image", URL: "https://x/small.jpg", HDURL: "https://x/big.jpg"},
			want: "https://x/big.jpg",
		},
		{
			name: "image falls back to url",
			info: apod.Info{MediaType: "image", URL: "https://x/small.jpg"},
			want: "https://x/small.jpg",
		},
		{
			name: "video uses thumbnail",
			info: apod.Info{MediaType: "video", URL: "https://youtube/embed", ThumbnailURL: "https://img/0.jpg"},
			want: "https://img/0.jpg",
		},
		{
			name:    "video without thumbnail",
			info:    apod.Info{MediaType: "video", URL: "https://youtube/embed"},
			wantErr: true,
		},
		{
			name:    "image without urls",
			info:    apod.Info{MediaType: "image"},
			wantErr: true,
		},
		{
			name:    "other media type",
			info:    apod.Info{MediaType: "other", URL: "https://x/page.html"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := apod.ImageURL(&tt.info)
			if tt.wantErr {
				if !errors.Is(err, services.ErrValidation) {
					t.Fatalf("expected validation error, got %q, %v", got, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ImageURL returned error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("ImageURL = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestImageURLNilInfo(t *testing.T) {
	if _, err := apod.ImageURL(nil); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
