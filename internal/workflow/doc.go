// Package workflow runs the APOD pipeline for one date.
//
// Runner fetches the metadata, selects the image or video thumbnail URL,
// downloads the bytes, records them in the image cache, and optionally hands
// the cached file to the desktop background setter. Each step runs under a
// stage name and a per-run correlation ID so log lines from one run can be
// grouped. Any failure ends the run; there are no retries and no partial
// results.
package workflow
