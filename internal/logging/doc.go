// Package logging assembles structured slog loggers and formatting helpers used
// across apod.
//
// It owns the console/JSON handlers, centralizes level and output plumbing,
// and exposes context-aware helpers so pipeline code can tag log lines with
// the run correlation ID, step name, and cache entry ID. A no-op logger is
// provided for tests and wiring code that cannot fail.
package logging
