package testsupport

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"apod/internal/apod"
)

// APODServer is a fake APOD endpoint. Metadata is served from
// /planetary/apod and media bytes from /media/<name>.
type APODServer struct {
	*httptest.Server

	mu      sync.Mutex
	entries map[string]apod.Info
	media   map[string][]byte

	infoRequests  atomic.Int64
	mediaRequests atomic.Int64
}

// NewAPODServer starts a fake APOD endpoint and registers cleanup.
func NewAPODServer(t testing.TB) *APODServer {
	t.Helper()

	s := &APODServer{
		entries: make(map[string]apod.Info),
		media:   make(map[string][]byte),
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/planetary/apod", s.serveInfo)
	mux.HandleFunc("/media/", s.serveMedia)
	s.Server = httptest.NewServer(mux)
	t.Cleanup(s.Close)
	return s
}

// BaseURL returns the metadata endpoint URL.
func (s *APODServer) BaseURL() string {
	return s.URL + "/planetary/apod"
}

// MediaURL returns the download URL for a media file name.
func (s *APODServer) MediaURL(name string) string {
	return s.URL + "/media/" + name
}

// AddImage registers an image entry for date whose HD URL serves data.
func (s *APODServer) AddImage(date, title, explanation, name string, data []byte) {
	s.AddEntry(apod.Info{
		Date:        date,
		Title:       title,
		Explanation: explanation,
		MediaType:   apod.MediaImage,
		URL:         s.MediaURL("small_" + name),
		HDURL:       s.MediaURL(name),
	})
	s.SetMedia(name, data)
}

// AddVideo registers a video entry for date whose thumbnail serves data.
func (s *APODServer) AddVideo(date, title, thumbName string, data []byte) {
	s.AddEntry(apod.Info{
		Date:         date,
		Title:        title,
		MediaType:    apod.MediaVideo,
		URL:          "https://www.youtube.com/embed/example",
		ThumbnailURL: s.MediaURL(thumbName),
	})
	s.SetMedia(thumbName, data)
}

// AddEntry registers raw metadata for info.Date.
func (s *APODServer) AddEntry(info apod.Info) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[info.Date] = info
}

// SetMedia sets the bytes served for name.
func (s *APODServer) SetMedia(name string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.media[name] = data
}

// InfoRequests returns how many metadata requests were served.
func (s *APODServer) InfoRequests() int64 { return s.infoRequests.Load() }

// MediaRequests returns how many media requests were served.
func (s *APODServer) MediaRequests() int64 { return s.mediaRequests.Load() }

func (s *APODServer) serveInfo(w http.ResponseWriter, r *http.Request) {
	s.infoRequests.Add(1)
	w.Header().Set("Content-Type", "application/json")

	query := r.URL.Query()
	if strings.TrimSpace(query.Get("api_key")) == "" {
		w.WriteHeader(http.StatusForbidden)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]string{"code": "API_KEY_MISSING", "message": "No api_key was supplied."},
		})
		return
	}

	date := query.Get("date")
	s.mu.Lock()
	info, ok := s.entries[date]
	s.mu.Unlock()
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"code": http.StatusNotFound,
			"msg":  "No data available for date: " + date,
		})
		return
	}
	_ = json.NewEncoder(w).Encode(info)
}

func (s *APODServer) serveMedia(w http.ResponseWriter, r *http.Request) {
	s.mediaRequests.Add(1)
	name := strings.TrimPrefix(r.URL.Path, "/media/")
	s.mu.Lock()
	data, ok := s.media[name]
	s.mu.Unlock()
	if !ok {
		http.NotFound(w, r)
		return
	}
	_, _ = w.Write(data)
}
