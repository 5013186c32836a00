// Package main hosts the apod CLI entrypoint and command graph.
//
// Running "apod [YYYY-MM-DD]" fetches the Astronomy Picture of the Day for the
// date (today by default), stores it in the content-addressed image cache, and
// applies it as the desktop background when a background command is
// configured. The cache, config, and doctor subcommands inspect local state.
//
// Keep this package lean: behaviour lives in the internal packages and is
// surfaced here through commands and flags.
package main
