// Package preflight provides readiness checks for the filesystem paths and
// external services apod depends on.
//
// The CLI "apod doctor" command runs RunAll and prints one line per check:
// cache directory access, optional log directory access, APOD endpoint
// reachability with the configured key, and whether the configured background
// command resolves on PATH. Checks for features that are not configured are
// skipped.
package preflight
