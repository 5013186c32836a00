package apod

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"apod/internal/services"
)

const (
	component = "apod"

	// DateLayout is the date format the API accepts and returns.
	DateLayout = "2006-01-02"

	errorBodyLimit = 4 << 10
)

// Info is the APOD metadata for one date.
type Info struct {
	Date           string `json:"date"`
	Title          string `json:"title"`
	Explanation    string `json:"explanation"`
	MediaType      string `json:"media_type"`
	URL            string `json:"url"`
	HDURL          string `json:"hdurl"`
	ThumbnailURL   string `json:"thumbnail_url"`
	Copyright      string `json:"copyright"`
	ServiceVersion string `json:"service_version"`
}

// apiError covers both error shapes the API and its gateway return.
type apiError struct {
	Code  any    `json:"code"`
	Msg   string `json:"msg"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// StatusError reports a non-200 response.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("http status %d", e.StatusCode)
	}
	return fmt.Sprintf("http status %d: %s", e.StatusCode, e.Message)
}

// StatusCode returns the HTTP status carried by err, or 0 when err did not
// come from a non-200 response.
func StatusCode(err error) int {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode
	}
	return 0
}

// Client talks to the APOD endpoint.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithTimeout sets the timeout of the default HTTP client.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient = &http.Client{Timeout: timeout}
		}
	}
}

// New creates an APOD client.
func New(apiKey, baseURL string, opts ...Option) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, services.Wrap(services.ErrConfiguration, component, "new client", "api key required", nil)
	}
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, services.Wrap(services.ErrConfiguration, component, "new client", "base url required", nil)
	}
	client := &Client{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// FetchInfo retrieves the metadata for date. Thumbnails are requested so
// video entries carry a downloadable image URL.
func (c *Client) FetchInfo(ctx context.Context, date time.Time) (*Info, error) {
	endpoint, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, component, "fetch info", "parse base url", err)
	}
	params := url.Values{}
	params.Set("api_key", c.apiKey)
	params.Set("date", date.Format(DateLayout))
	params.Set("thumbs", "true")
	endpoint.RawQuery = params.Encode()

	resp, latency, err := c.get(ctx, endpoint.String())
	if err != nil {
		return nil, services.Wrap(services.ErrFetch, component, "fetch info",
			fmt.Sprintf("request failed (latency=%v)", latency), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		statusErr := &StatusError{StatusCode: resp.StatusCode, Message: errorMessage(resp.Body)}
		return nil, services.Wrap(services.ErrFetch, component, "fetch info",
			fmt.Sprintf("no entry for %s (latency=%v)", date.Format(DateLayout), latency), statusErr)
	}

	var info Info
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, services.Wrap(services.ErrFetch, component, "fetch info", "decode apod response", err)
	}
	if strings.TrimSpace(info.Title) == "" {
		return nil, services.Wrap(services.ErrValidation, component, "fetch info",
			"apod response has no title for "+date.Format(DateLayout), nil)
	}
	return &info, nil
}

// FetchImage downloads the bytes at imageURL.
func (c *Client) FetchImage(ctx context.Context, imageURL string) ([]byte, error) {
	imageURL = strings.TrimSpace(imageURL)
	if imageURL == "" {
		return nil, services.Wrap(services.ErrValidation, component, "fetch image", "image url is empty", nil)
	}

	resp, latency, err := c.get(ctx, imageURL)
	if err != nil {
		return nil, services.Wrap(services.ErrFetch, component, "fetch image",
			fmt.Sprintf("request failed (latency=%v)", latency), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, services.Wrap(services.ErrFetch, component, "fetch image",
			fmt.Sprintf("download %s (latency=%v)", imageURL, latency), &StatusError{StatusCode: resp.StatusCode})
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, services.Wrap(services.ErrFetch, component, "fetch image", "read body", err)
	}
	if len(data) == 0 {
		return nil, services.Wrap(services.ErrValidation, component, "fetch image", imageURL+" returned an empty body", nil)
	}
	return data, nil
}

func (c *Client) get(ctx context.Context, target string) (*http.Response, time.Duration, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("build request: %w", err)
	}
	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return nil, latency, err
	}
	return resp, latency, nil
}

// errorMessage extracts the API's error message from a failed response.
func errorMessage(body io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(body, errorBodyLimit))
	if err != nil || len(raw) == 0 {
		return ""
	}
	var payload apiError
	if err := json.Unmarshal(raw, &payload); err != nil {
		return ""
	}
	if msg := strings.TrimSpace(payload.Msg); msg != "" {
		return msg
	}
	if payload.Error != nil {
		return strings.TrimSpace(payload.Error.Message)
	}
	return ""
}
