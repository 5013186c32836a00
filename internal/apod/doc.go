// Package apod provides the client for NASA's Astronomy Picture of the Day
// API.
//
// FetchInfo retrieves the metadata for one date, ImageURL picks the URL to
// download for that entry (the HD image, the standard image, or a video
// thumbnail), and FetchImage downloads raw bytes. Failures are tagged with
// services.ErrFetch or services.ErrValidation so callers can classify them.
package apod
