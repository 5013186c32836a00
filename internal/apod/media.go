package apod

import (
	"strings"

	"apod/internal/services"
)

// Media types reported by the API.
const (
	MediaImage = "image"
	MediaVideo = "video"
)

// ImageURL selects the URL to download for info: the HD image when present,
// otherwise the standard image, or the thumbnail for videos.
func ImageURL(info *Info) (string, error) {
	if info == nil {
		return "", services.Wrap(services.ErrValidation, component, "select image", "missing apod info", nil)
	}
	mediaType := strings.ToLower(strings.TrimSpace(info.MediaType))

	var selected string
	switch mediaType {
	case MediaImage:
		selected = strings.TrimSpace(info.HDURL)
		if selected == "" {
			selected = strings.TrimSpace(info.URL)
		}
	case MediaVideo:
		selected = strings.TrimSpace(info.ThumbnailURL)
	default:
		return "", services.Wrap(services.ErrValidation, component, "select image",
			"unsupported media type "+quoteOrEmpty(info.MediaType), nil)
	}

	if selected == "" {
		return "", services.Wrap(services.ErrValidation, component, "select image",
			"no downloadable url for "+mediaType+" entry", nil)
	}
	return selected, nil
}

func quoteOrEmpty(value string) string {
	if strings.TrimSpace(value) == "" {
		return "(empty)"
	}
	return `"` + value + `"`
}
