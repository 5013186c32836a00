// Package services defines shared utilities consumed by the pipeline steps and
// the cache.
//
// Key responsibilities:
//   - Context helpers that stamp cache entry IDs, step names, and correlation
//     identifiers for logging.
//   - Structured error markers plus the Wrap helper that sort failures into the
//     fetch / validation / storage taxonomy.
//
// Every failure that crosses a package boundary should carry one of the
// markers so the CLI can report it consistently.
package services
