// Package imagecache stores APOD images on disk and indexes them in SQLite by
// the SHA-256 digest of their bytes.
//
// A cache directory holds the image files next to image_cache.db, whose single
// apod_images table records title, explanation, file path and digest. The
// digest column is UNIQUE: it is the dedup guard across processes, and a run
// that loses an insert race recovers the winner's row instead of failing.
//
// # Files
//
// File names come from the sanitized title plus the URL extension, for
// example "NGC_3521_Galaxy_in_a_Bubble.jpg". When a different image already
// owns that name, an eight character digest suffix is appended. Path
// selection and the write happen under an advisory lock on .cache.lock, and
// files are written before their row so a crash can orphan a file but never a
// row.
//
// Entries are never updated or deleted; the cache grows without eviction.
// Schema changes bump schemaVersion in schema.go, which is recorded in
// PRAGMA user_version.
package imagecache
