package normalize

import (
	"errors"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

var errEmptyDate = errors.New("empty date")

// ParseDate reads the date formats seen in feeds and on listing pages
// (RFC 1123, RFC 3339, "May 2, 2024" and the like) and returns it in UTC.
// Dates without a zone are taken as UTC.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)

	if s == "" {
		return time.Time{}, errEmptyDate
	}

	t, err := dateparse.ParseIn(s, time.UTC)

	if err != nil {
		return time.Time{}, err
	}

	return t.UTC(), nil
}
