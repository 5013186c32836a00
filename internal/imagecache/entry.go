package imagecache

// Entry is one cached APOD image. Entries are created once and never updated.
type Entry struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Explanation string `json:"explanation"`
	FilePath    string `json:"file_path"`
	SHA256      string `json:"sha256"`
}

// Stats summarizes the cache directory and index.
type Stats struct {
	Entries      int
	TotalBytes   int64
	MissingFiles int
	FreeBytes    uint64
	FreeKnown    bool
}
