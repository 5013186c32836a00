package imagecache

import (
	"errors"
	"strings"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

const entryColumns = "id, title, explanation, file_path, sha256"

func scanEntry(scanner interface{ Scan(dest ...any) error }) (*Entry, error) {
	var entry Entry
	if err := scanner.Scan(
		&entry.ID,
		&entry.Title,
		&entry.Explanation,
		&entry.FilePath,
		&entry.SHA256,
	); err != nil {
		return nil, err
	}
	return &entry, nil
}

// isUniqueViolation reports whether err is SQLite rejecting a duplicate value
// for a UNIQUE column.
func isUniqueViolation(err error) bool {
	var sqliteErr *sqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	code := sqliteErr.Code()
	if code == sqlite3.SQLITE_CONSTRAINT_UNIQUE {
		return true
	}
	// Primary result code only when extended codes are off.
	return code&0xff == sqlite3.SQLITE_CONSTRAINT &&
		strings.Contains(sqliteErr.Error(), "UNIQUE constraint failed")
}
