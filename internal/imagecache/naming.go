package imagecache

import (
	"net/url"
	"path/filepath"
	"strings"

	"apod/internal/services"
	"apod/internal/textutil"
)

// FileExtension returns the substring after the last '.' in the path of
// imageURL. Query strings and fragments are ignored; unparsable URLs are
// examined as raw strings. The extension must consist of ASCII letters and
// digits.
func FileExtension(imageURL string) (string, error) {
	candidate := strings.TrimSpace(imageURL)
	if parsed, err := url.Parse(candidate); err == nil {
		candidate = parsed.Path
	}
	idx := strings.LastIndex(candidate, ".")
	if idx < 0 {
		return "", services.Wrap(services.ErrValidation, component, "derive file name",
			"image url has no file extension: "+imageURL, nil)
	}
	ext := candidate[idx+1:]
	if !textutil.IsASCIIAlnum(ext) {
		return "", services.Wrap(services.ErrValidation, component, "derive file name",
			"image url has an unusable file extension: "+imageURL, nil)
	}
	return ext, nil
}

// FileName builds the cache file name for a title and extension. When the
// sanitized title is empty the digest prefix stands in for it.
func FileName(title, ext, digest string) string {
	stem := textutil.SanitizeTitle(title)
	if stem == "" {
		stem = "apod_" + shortDigest(digest, 12)
	}
	return stem + "." + ext
}

// disambiguatedName is used when FileName is already taken by different
// content, so distinct digests never share a path.
func disambiguatedName(title, ext, digest string) string {
	base := FileName(title, ext, digest)
	stem := strings.TrimSuffix(base, "."+ext)
	return stem + "_" + shortDigest(digest, 8) + "." + ext
}

// FilePath joins the cache directory with FileName.
func FilePath(dir, title, imageURL, digest string) (string, error) {
	ext, err := FileExtension(imageURL)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, FileName(title, ext, digest)), nil
}

func shortDigest(digest string, n int) string {
	if len(digest) < n {
		return digest
	}
	return digest[:n]
}
