package imagecache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	_ "modernc.org/sqlite"

	"apod/internal/fileutil"
	"apod/internal/logging"
	"apod/internal/services"
)

const (
	component     = "imagecache"
	dbFileName    = "image_cache.db"
	lockFileName  = ".cache.lock"
	lockRetry     = 50 * time.Millisecond
	imageFileMode = 0o644
)

// Options configures a Cache.
type Options struct {
	// Dir holds the image files and the SQLite index.
	Dir    string
	Logger *slog.Logger
}

// Cache stores APOD images on disk and indexes them in SQLite by the SHA-256
// digest of their bytes, so identical content is stored and recorded once.
type Cache struct {
	db     *sql.DB
	dir    string
	dbPath string
	lock   *flock.Flock
	logger *slog.Logger

	// Overridden by tests.
	writeFile    func(path string, data []byte, mode os.FileMode) error
	beforeInsert func(ctx context.Context)
}

// Open prepares the cache directory and SQLite index. Calling it on an
// existing cache is a no-op apart from opening the connection.
func Open(ctx context.Context, opts Options) (*Cache, error) {
	dir := strings.TrimSpace(opts.Dir)
	if dir == "" {
		return nil, services.Wrap(services.ErrConfiguration, component, "open", "cache directory is required", nil)
	}
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, services.Wrap(services.ErrStorage, component, "open", "resolve cache directory", err)
	}
	if err := os.MkdirAll(absDir, 0o755); err != nil {
		return nil, services.Wrap(services.ErrStorage, component, "open", "create cache directory", err)
	}

	dbPath := filepath.Join(absDir, dbFileName)
	dsn := dbPath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, services.Wrap(services.ErrStorage, component, "open", "open sqlite db", err)
	}

	cache := &Cache{
		db:        db,
		dir:       absDir,
		dbPath:    dbPath,
		lock:      flock.New(filepath.Join(absDir, lockFileName)),
		logger:    logging.NewComponentLogger(opts.Logger, component),
		writeFile: fileutil.WriteFileAtomic,
	}
	if err := cache.initSchema(ctx); err != nil {
		_ = db.Close()
		return nil, services.Wrap(services.ErrStorage, component, "open", "initialize schema", err)
	}

	cache.logger.Debug("image cache ready",
		logging.String("dir", absDir),
		logging.String("db_path", dbPath))
	return cache, nil
}

// Close closes the underlying database connection.
func (c *Cache) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}

// Dir returns the absolute cache directory.
func (c *Cache) Dir() string {
	return c.dir
}

// EnsureCached returns the entry for imageBytes, storing the file and
// inserting a row only when no entry with the same digest exists. Repeated
// calls with identical bytes return the same entry without touching disk.
func (c *Cache) EnsureCached(ctx context.Context, title, explanation, imageURL string, imageBytes []byte) (*Entry, error) {
	if strings.TrimSpace(title) == "" {
		return nil, services.Wrap(services.ErrValidation, component, "ensure cached", "title is empty", nil)
	}
	if len(imageBytes) == 0 {
		return nil, services.Wrap(services.ErrValidation, component, "ensure cached", "image is empty", nil)
	}

	digest := fileutil.SHA256Hex(imageBytes)
	logger := logging.WithContext(ctx, c.logger).With(logging.String("sha256", digest))

	existing, err := c.FindByDigest(ctx, digest)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		logger.Info("image already cached",
			logging.Int64(logging.FieldEntryID, existing.ID),
			logging.String("file_path", existing.FilePath))
		return existing, nil
	}

	ext, err := FileExtension(imageURL)
	if err != nil {
		return nil, err
	}

	path, err := c.storeFile(ctx, title, ext, digest, imageBytes)
	if err != nil {
		return nil, err
	}

	if c.beforeInsert != nil {
		c.beforeInsert(ctx)
	}

	entry, err := c.insert(ctx, title, explanation, path, digest)
	if err == nil {
		logger.Info("image cached",
			logging.Int64(logging.FieldEntryID, entry.ID),
			logging.String("file_path", entry.FilePath),
			logging.Int("bytes", len(imageBytes)))
		return entry, nil
	}
	if !isUniqueViolation(err) {
		return nil, services.Wrap(services.ErrStorage, component, "ensure cached", "insert entry", err)
	}

	// Another process inserted the same digest between our lookup and insert.
	winner, lookupErr := c.FindByDigest(ctx, digest)
	if lookupErr != nil {
		return nil, lookupErr
	}
	if winner == nil {
		return nil, services.Wrap(services.ErrStorage, component, "ensure cached",
			"uniqueness conflict without a matching entry", err)
	}
	logger.Info("image cached concurrently by another process",
		logging.Int64(logging.FieldEntryID, winner.ID),
		logging.String("file_path", winner.FilePath))
	return winner, nil
}

// storeFile picks the final path for the image and writes it. Path selection
// and the write happen under the directory lock so two different images with
// the same title cannot claim one file.
func (c *Cache) storeFile(ctx context.Context, title, ext, digest string, data []byte) (string, error) {
	locked, err := c.lock.TryLockContext(ctx, lockRetry)
	if err != nil {
		return "", services.Wrap(services.ErrStorage, component, "store file", "acquire cache lock", err)
	}
	if !locked {
		return "", services.Wrap(services.ErrStorage, component, "store file", "cache lock unavailable", nil)
	}
	defer func() {
		if err := c.lock.Unlock(); err != nil {
			logging.WarnWithContext(c.logger, "failed to release cache lock", "cache_unlock_failed",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "remove "+c.lock.Path()+" if no apod process is running"))
		}
	}()

	candidates := []string{
		filepath.Join(c.dir, FileName(title, ext, digest)),
		filepath.Join(c.dir, disambiguatedName(title, ext, digest)),
	}
	for _, path := range candidates {
		owner, err := c.pathOwner(ctx, path)
		if err != nil {
			return "", err
		}
		if owner != "" && owner != digest {
			continue
		}

		onDisk, err := fileutil.HashFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			if err := c.writeFile(path, data, imageFileMode); err != nil {
				return "", services.Wrap(services.ErrStorage, component, "store file", "write "+path, err)
			}
			return path, nil
		case err != nil:
			return "", services.Wrap(services.ErrStorage, component, "store file", "inspect "+path, err)
		case onDisk == digest:
			// Same bytes already on disk, e.g. written by a concurrent run.
			return path, nil
		}
	}
	return "", services.Wrap(services.ErrStorage, component, "store file",
		fmt.Sprintf("no free file name for %q", title), nil)
}

// pathOwner returns the digest of the entry recorded at path, or "" when none.
func (c *Cache) pathOwner(ctx context.Context, path string) (string, error) {
	var digest string
	err := c.db.QueryRowContext(ctx,
		`SELECT sha256 FROM apod_images WHERE file_path = ? ORDER BY id LIMIT 1`, path,
	).Scan(&digest)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", services.Wrap(services.ErrStorage, component, "store file", "look up path owner", err)
	}
	return digest, nil
}

func (c *Cache) insert(ctx context.Context, title, explanation, path, digest string) (*Entry, error) {
	res, err := c.db.ExecContext(ctx,
		`INSERT INTO apod_images (title, explanation, file_path, sha256) VALUES (?, ?, ?, ?)`,
		title, explanation, path, digest,
	)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return &Entry{
		ID:          id,
		Title:       title,
		Explanation: explanation,
		FilePath:    path,
		SHA256:      digest,
	}, nil
}

// FindByDigest returns the entry with the given SHA-256 hex digest, or nil
// when the content is not cached.
func (c *Cache) FindByDigest(ctx context.Context, digest string) (*Entry, error) {
	digest = strings.ToLower(strings.TrimSpace(digest))
	if digest == "" {
		return nil, nil
	}
	row := c.db.QueryRowContext(ctx, `SELECT `+entryColumns+` FROM apod_images WHERE sha256 = ?`, digest)
	entry, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, services.Wrap(services.ErrStorage, component, "find by digest", "", err)
	}
	return entry, nil
}

// Get returns the entry with the given id, or nil when absent.
func (c *Cache) Get(ctx context.Context, id int64) (*Entry, error) {
	row := c.db.QueryRowContext(ctx, `SELECT `+entryColumns+` FROM apod_images WHERE id = ?`, id)
	entry, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, services.Wrap(services.ErrStorage, component, "get", "", err)
	}
	return entry, nil
}

// List returns every entry in insertion order.
func (c *Cache) List(ctx context.Context) ([]*Entry, error) {
	rows, err := c.db.QueryContext(ctx, `SELECT `+entryColumns+` FROM apod_images ORDER BY id`)
	if err != nil {
		return nil, services.Wrap(services.ErrStorage, component, "list", "", err)
	}
	defer rows.Close()

	var entries []*Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, services.Wrap(services.ErrStorage, component, "list", "scan entry", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, services.Wrap(services.ErrStorage, component, "list", "", err)
	}
	return entries, nil
}

// ListTitles returns every cached title in insertion order.
func (c *Cache) ListTitles(ctx context.Context) ([]string, error) {
	rows, err := c.db.QueryContext(ctx, `SELECT title FROM apod_images ORDER BY id`)
	if err != nil {
		return nil, services.Wrap(services.ErrStorage, component, "list titles", "", err)
	}
	defer rows.Close()

	titles := []string{}
	for rows.Next() {
		var title string
		if err := rows.Scan(&title); err != nil {
			return nil, services.Wrap(services.ErrStorage, component, "list titles", "scan title", err)
		}
		titles = append(titles, title)
	}
	if err := rows.Err(); err != nil {
		return nil, services.Wrap(services.ErrStorage, component, "list titles", "", err)
	}
	return titles, nil
}

// Stats reports entry counts, on-disk size of indexed files, and free space
// on the cache filesystem.
func (c *Cache) Stats(ctx context.Context) (Stats, error) {
	entries, err := c.List(ctx)
	if err != nil {
		return Stats{}, err
	}
	stats := Stats{Entries: len(entries)}
	for _, entry := range entries {
		info, err := os.Stat(entry.FilePath)
		if err != nil {
			stats.MissingFiles++
			continue
		}
		stats.TotalBytes += info.Size()
	}
	stats.FreeBytes, stats.FreeKnown = freeBytes(c.dir)
	return stats, nil
}
