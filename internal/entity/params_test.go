package entity_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/nDmitry/homepage/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPageParamsFromRequest(t *testing.T) {
	tests := []struct {
		name          string
		url           string
		defaultFormat string
		expected      *entity.PageParams
		expectedErr   string
	}{
		{
			name:          "Defaults",
			url:           "/page.json",
			defaultFormat: entity.FormatJSON,
			expected:      &entity.PageParams{Format: entity.FormatJSON, CacheTTL: entity.CacheTTLDefault},
		},
		{
			name:          "Atom with custom TTL",
			url:           "/posts?format=atom&cache_ttl=5",
			defaultFormat: entity.FormatRSS,
			expected:      &entity.PageParams{Format: entity.FormatAtom, CacheTTL: 5},
		},
		{
			name:          "Refresh",
			url:           "/page.json?refresh=1&cache_ttl=0",
			defaultFormat: entity.FormatJSON,
			expected:      &entity.PageParams{Format: entity.FormatJSON, Refresh: true},
		},
		{
			name:          "Unknown format",
			url:           "/posts?format=xml",
			defaultFormat: entity.FormatRSS,
			expectedErr:   "format must be json, rss or atom",
		},
		{
			name:          "Invalid TTL",
			url:           "/posts?cache_ttl=soon",
			defaultFormat: entity.FormatRSS,
			expectedErr:   "cache_ttl must be a valid integer",
		},
		{
			name:          "Negative TTL",
			url:           "/posts?cache_ttl=-1",
			defaultFormat: entity.FormatRSS,
			expectedErr:   "cache_ttl must be non-negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.url, nil)

			params, err := entity.NewPageParamsFromRequest(req, tt.defaultFormat)

			if tt.expectedErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.expectedErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.expected, params)
		})
	}
}
