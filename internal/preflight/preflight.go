package preflight

import (
	"context"

	"apod/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail"`
}

// RunAll executes all applicable preflight checks for the given config.
// Checks are only run when the corresponding feature is configured.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result

	// Cache directory (always checked)
	results = append(results, CheckCacheDirectory("Cache directory", cfg.Paths.CacheDir))

	if cfg.Paths.LogDir != "" {
		results = append(results, CheckCacheDirectory("Log directory", cfg.Paths.LogDir))
	}

	results = append(results, CheckAPOD(ctx, cfg.APOD.BaseURL, cfg.APOD.APIKey, cfg.RequestTimeout()))

	if cfg.BackgroundEnabled() {
		results = append(results, CheckBackgroundCommand(cfg.Background.Command))
	}

	return results
}

// Failed reports whether any result did not pass.
func Failed(results []Result) bool {
	for _, r := range results {
		if !r.Passed {
			return true
		}
	}
	return false
}
