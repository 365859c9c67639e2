package entity

import (
	"fmt"
	"net/http"
	"strconv"
)

const (
	FormatAtom = "atom"
	FormatRSS  = "rss"
	FormatJSON = "json"
)

const CacheTTLDefault = 60 // minutes

// PageParams represents validated request parameters for page and feed endpoints
type PageParams struct {
	// Format is the output format, "json" for the page model, "rss" or "atom" for the posts feed
	Format string

	// Refresh forces a rebuild even if a cached copy exists
	Refresh bool

	// CacheTTL is the cache time-to-live in minutes
	// A value of 0 means no caching
	CacheTTL int
}

// NewPageParamsFromRequest parses and validates request parameters.
// defaultFormat is used when the request does not set one.
func NewPageParamsFromRequest(r *http.Request, defaultFormat string) (*PageParams, error) {
	qp := r.URL.Query()

	format := qp.Get("format")

	if format == "" {
		format = defaultFormat
	}

	switch format {
	case FormatJSON, FormatRSS, FormatAtom:
	default:
		return nil, fmt.Errorf("format must be %s, %s or %s", FormatJSON, FormatRSS, FormatAtom)
	}

	refresh := false

	if v := qp.Get("refresh"); v == "1" || v == "true" {
		refresh = true
	}

	cacheTTL := CacheTTLDefault

	if ttlStr := qp.Get("cache_ttl"); ttlStr != "" {
		var err error
		cacheTTL, err = strconv.Atoi(ttlStr)

		if err != nil {
			return nil, fmt.Errorf("cache_ttl must be a valid integer")
		}

		if cacheTTL < 0 {
			return nil, fmt.Errorf("cache_ttl must be non-negative")
		}
	}

	return &PageParams{
		Format:   format,
		Refresh:  refresh,
		CacheTTL: cacheTTL,
	}, nil
}
