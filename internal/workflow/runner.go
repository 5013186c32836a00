package workflow

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"apod/internal/apod"
	"apod/internal/desktop"
	"apod/internal/fileutil"
	"apod/internal/imagecache"
	"apod/internal/logging"
	"apod/internal/services"
)

// Pipeline stage names used in logs.
const (
	StageFetchInfo     = "fetch_info"
	StageSelectMedia   = "select_media"
	StageFetchImage    = "fetch_image"
	StageCache         = "cache"
	StageSetBackground = "set_background"
)

// Fetcher retrieves APOD metadata and image bytes.
type Fetcher interface {
	FetchInfo(ctx context.Context, date time.Time) (*apod.Info, error)
	FetchImage(ctx context.Context, url string) ([]byte, error)
}

// Cache records downloaded images.
type Cache interface {
	FindByDigest(ctx context.Context, digest string) (*imagecache.Entry, error)
	EnsureCached(ctx context.Context, title, explanation, imageURL string, imageBytes []byte) (*imagecache.Entry, error)
}

var (
	_ Fetcher = (*apod.Client)(nil)
	_ Cache   = (*imagecache.Cache)(nil)
)

// Runner executes the pipeline. Setter may be nil to skip the background step.
type Runner struct {
	Client Fetcher
	Cache  Cache
	Setter desktop.Setter
	Logger *slog.Logger
}

// Result describes a completed run.
type Result struct {
	Date     time.Time
	Info     *apod.Info
	Entry    *imagecache.Entry
	ImageURL string
	// Cached is true when the image was already in the cache before the run.
	Cached        bool
	BackgroundSet bool
	RequestID     string
}

// Run fetches, caches, and optionally applies the APOD image for date.
func (r *Runner) Run(ctx context.Context, date time.Time) (*Result, error) {
	if r.Client == nil || r.Cache == nil {
		return nil, services.Wrap(services.ErrConfiguration, "workflow", "run", "runner requires a client and a cache", nil)
	}

	requestID := uuid.NewString()
	ctx = services.WithRequestID(ctx, requestID)
	base := logging.NewComponentLogger(r.Logger, "workflow").With(
		logging.String("date", date.Format(apod.DateLayout)),
	)
	runStart := time.Now()
	result := &Result{Date: date, RequestID: requestID}

	var info *apod.Info
	err := r.stage(ctx, base, StageFetchInfo, func(ctx context.Context, logger *slog.Logger) error {
		fetched, err := r.Client.FetchInfo(ctx, date)
		if err != nil {
			return err
		}
		info = fetched
		logger.Info("apod metadata fetched",
			logging.String("title", info.Title),
			logging.String("media_type", info.MediaType))
		return nil
	})
	if err != nil {
		return nil, err
	}
	result.Info = info

	err = r.stage(ctx, base, StageSelectMedia, func(ctx context.Context, logger *slog.Logger) error {
		selected, err := apod.ImageURL(info)
		if err != nil {
			return err
		}
		result.ImageURL = selected
		logger.Debug("image url selected", logging.String("url", selected))
		return nil
	})
	if err != nil {
		return nil, err
	}

	var imageBytes []byte
	err = r.stage(ctx, base, StageFetchImage, func(ctx context.Context, logger *slog.Logger) error {
		data, err := r.Client.FetchImage(ctx, result.ImageURL)
		if err != nil {
			return err
		}
		imageBytes = data
		logger.Info("image downloaded", logging.Int("bytes", len(data)))
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = r.stage(ctx, base, StageCache, func(ctx context.Context, logger *slog.Logger) error {
		existing, err := r.Cache.FindByDigest(ctx, fileutil.SHA256Hex(imageBytes))
		if err != nil {
			return err
		}
		result.Cached = existing != nil
		entry, err := r.Cache.EnsureCached(ctx, info.Title, info.Explanation, result.ImageURL, imageBytes)
		if err != nil {
			return err
		}
		result.Entry = entry
		return nil
	})
	if err != nil {
		return nil, err
	}

	if r.Setter != nil {
		ctx = services.WithEntryID(ctx, result.Entry.ID)
		err = r.stage(ctx, base, StageSetBackground, func(ctx context.Context, _ *slog.Logger) error {
			return r.Setter.SetBackground(ctx, result.Entry.FilePath)
		})
		if err != nil {
			return nil, err
		}
		result.BackgroundSet = true
	}

	logging.WithContext(ctx, base).Info("apod run completed",
		logging.String(logging.FieldEventType, "run_complete"),
		logging.Int64(logging.FieldEntryID, result.Entry.ID),
		logging.String("file_path", result.Entry.FilePath),
		logging.Bool("cached", result.Cached),
		logging.Bool("background_set", result.BackgroundSet),
		logging.Duration("elapsed", time.Since(runStart)))
	return result, nil
}

func (r *Runner) stage(ctx context.Context, base *slog.Logger, name string, fn func(context.Context, *slog.Logger) error) error {
	ctx = services.WithStage(ctx, name)
	logger := logging.WithContext(ctx, base)
	start := time.Now()
	logger.Debug("stage started", logging.String(logging.FieldEventType, "stage_start"))

	if err := fn(ctx, logger); err != nil {
		logging.ErrorWithContext(logger, "stage failed", "stage_failure",
			logging.String("error_kind", services.Kind(err)),
			logging.Duration("elapsed", time.Since(start)),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, hintFor(err)))
		return err
	}
	logger.Debug("stage completed",
		logging.String(logging.FieldEventType, "stage_complete"),
		logging.Duration("elapsed", time.Since(start)))
	return nil
}

func hintFor(err error) string {
	switch services.Kind(err) {
	case "fetch":
		if apod.StatusCode(err) == http.StatusNotFound {
			return "no APOD entry exists for this date yet; try an earlier date"
		}
		return "check network access and the [apod] api_key setting"
	case "validation":
		return "the APOD entry cannot be cached as an image"
	case "storage":
		return "check permissions and free space in the cache directory"
	case "external_tool":
		return "check [background].command in the config file"
	default:
		return "check logs for details"
	}
}
