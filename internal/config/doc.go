// Package config loads, normalizes, and validates apod configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// APOD_API_KEY and NASA_API_KEY. The Config type centralizes every knob the
// CLI needs, so the cache directory and API credentials are discovered in one
// pass and handed to the cache and client constructors explicitly.
package config
