package workflow

import (
	"strings"
	"time"

	"apod/internal/apod"
	"apod/internal/services"
)

// FirstAPODDate is the date of the first Astronomy Picture of the Day.
var FirstAPODDate = time.Date(1995, time.June, 16, 0, 0, 0, 0, time.UTC)

// ParseDate parses a YYYY-MM-DD argument in the location of now. An empty
// argument means today. Dates after today or before the first APOD are
// rejected.
func ParseDate(arg string, now time.Time) (time.Time, error) {
	loc := now.Location()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)

	arg = strings.TrimSpace(arg)
	if arg == "" {
		return today, nil
	}

	date, err := time.ParseInLocation(apod.DateLayout, arg, loc)
	if err != nil {
		return time.Time{}, services.Wrap(services.ErrValidation, "workflow", "parse date",
			"expected YYYY-MM-DD, got "+arg, nil)
	}
	if date.After(today) {
		return time.Time{}, services.Wrap(services.ErrValidation, "workflow", "parse date",
			arg+" is in the future", nil)
	}
	first := time.Date(FirstAPODDate.Year(), FirstAPODDate.Month(), FirstAPODDate.Day(), 0, 0, 0, 0, loc)
	if date.Before(first) {
		return time.Time{}, services.Wrap(services.ErrValidation, "workflow", "parse date",
			arg+" is before the first APOD ("+first.Format(apod.DateLayout)+")", nil)
	}
	return date, nil
}
