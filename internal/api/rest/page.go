package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/nDmitry/homepage/internal/aggregator"
	"github.com/nDmitry/homepage/internal/app"
	"github.com/nDmitry/homepage/internal/cache"
	"github.com/nDmitry/homepage/internal/entity"
	"github.com/nDmitry/homepage/internal/feed"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PageSource returns the current page model, rebuilding it when refresh is set.
type PageSource interface {
	Page(ctx context.Context, refresh bool) (*entity.Page, error)
	Status() aggregator.Status
}

// PageHandler serves the page model and the posts feed
type PageHandler struct {
	cache  cache.Cache
	pages  PageSource
	site   entity.SiteConfig
	logger *slog.Logger
}

// NewPageHandler creates a new PageHandler and registers its routes on mux
func NewPageHandler(mux *http.ServeMux, c cache.Cache, pages PageSource, site entity.SiteConfig) *PageHandler {
	handler := &PageHandler{
		cache:  c,
		pages:  pages,
		site:   site,
		logger: app.Logger(),
	}

	mux.HandleFunc("GET /page.json", handler.GetPage)
	mux.HandleFunc("GET /posts", handler.GetPostsFeed)

	return handler
}

// GetPage serves the page model as JSON
func (h *PageHandler) GetPage(w http.ResponseWriter, r *http.Request) {
	params, err := entity.NewPageParamsFromRequest(r, entity.FormatJSON)

	if err != nil {
		h.handleError(w, err, http.StatusBadRequest)
		return
	}

	if params.Format != entity.FormatJSON {
		h.handleError(w, fmt.Errorf("page is only available as %s, use /posts for feeds", entity.FormatJSON), http.StatusBadRequest)
		return
	}

	h.serve(w, r, params)
}

// GetPostsFeed serves the aggregated posts as RSS or Atom
func (h *PageHandler) GetPostsFeed(w http.ResponseWriter, r *http.Request) {
	params, err := entity.NewPageParamsFromRequest(r, entity.FormatRSS)

	if err != nil {
		h.handleError(w, err, http.StatusBadRequest)
		return
	}

	if params.Format == entity.FormatJSON {
		h.handleError(w, fmt.Errorf("posts feed format must be %s or %s", entity.FormatRSS, entity.FormatAtom), http.StatusBadRequest)
		return
	}

	h.serve(w, r, params)
}

func (h *PageHandler) serve(w http.ResponseWriter, r *http.Request, params *entity.PageParams) {
	cacheKey := cache.PageKey(params.Format)

	// Try to get from cache first if caching is enabled
	if params.CacheTTL > 0 && !params.Refresh {
		cachedContent, cacheErr := h.cache.Get(r.Context(), cacheKey)

		if cacheErr == nil {
			w.Header().Set("X-CACHE-STATUS", "HIT")
			h.serveContent(w, cachedContent, params.Format, params.CacheTTL)
			return
		} else if cacheErr != cache.ErrCacheMiss {
			// Real error, not just cache miss
			h.logger.Error("Cache error", "error", cacheErr)
		}
	}

	page, err := h.pages.Page(r.Context(), params.Refresh)

	if err != nil {
		h.handleError(w, err, http.StatusBadGateway)
		return
	}

	content, err := Render(page, h.site, params.Format)

	if err != nil {
		h.handleError(w, err, http.StatusInternalServerError)
		return
	}

	if params.CacheTTL > 0 {
		cacheTTL := time.Duration(params.CacheTTL) * time.Minute

		// Use background context for caching to avoid cancellation
		cacheCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := h.cache.Set(cacheCtx, cacheKey, content, cacheTTL); err != nil {
			h.logger.Error("Failed to cache content", "error", err)
		}
	}

	w.Header().Set("X-CACHE-STATUS", "MISS")
	h.serveContent(w, content, params.Format, params.CacheTTL)
}

// Render encodes page in format: indented JSON for the page model, RSS or
// Atom for the posts feed.
func Render(page *entity.Page, site entity.SiteConfig, format string) ([]byte, error) {
	if format != entity.FormatJSON {
		return feed.Generate(page, site, format)
	}

	content, err := json.MarshalIndent(page, "", "  ")

	if err != nil {
		return nil, fmt.Errorf("could not encode the page: %w", err)
	}

	return content, nil
}

// serveContent sends the content to the client with appropriate headers
func (h *PageHandler) serveContent(w http.ResponseWriter, content []byte, format string, cacheTTL int) {
	var contentType string

	switch format {
	case entity.FormatRSS:
		contentType = "application/rss+xml"
	case entity.FormatAtom:
		contentType = "application/atom+xml"
	default:
		contentType = "application/json"
	}

	w.Header().Set("Content-Type", contentType+"; charset=utf-8")

	if cacheTTL > 0 {
		w.Header().Set("Cache-Control", fmt.Sprintf("public, max-age=%d", cacheTTL*60))
	} else {
		w.Header().Set("Cache-Control", "no-cache")
	}

	w.WriteHeader(http.StatusOK)

	if _, err := w.Write(content); err != nil {
		handleBadErrorResponse(err, format)
	}
}

// handleError responds with an error message
func (h *PageHandler) handleError(w http.ResponseWriter, err error, statusCode int) {
	writeError(h.logger, w, err, statusCode)
}

// HealthHandler reports whether a page is available and exposes metrics
type HealthHandler struct {
	pages PageSource
}

func NewHealthHandler(mux *http.ServeMux, pages PageSource) *HealthHandler {
	handler := &HealthHandler{pages: pages}

	mux.HandleFunc("GET /healthz", handler.GetHealth)
	mux.Handle("GET /metrics", promhttp.Handler())

	return handler
}

// GetHealth answers 200 once a page has been built and 503 before that.
func (h *HealthHandler) GetHealth(w http.ResponseWriter, _ *http.Request) {
	status := h.pages.Status()
	code := http.StatusOK

	if !status.Ready {
		code = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	if err := json.NewEncoder(w).Encode(status); err != nil {
		handleBadErrorResponse(err, status)
	}
}

func writeError(logger *slog.Logger, w http.ResponseWriter, err error, statusCode int) {
	logger.Error("Request error", "error", err, "status", statusCode)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	response := map[string]string{"error": err.Error()}

	if err := json.NewEncoder(w).Encode(response); err != nil {
		handleBadErrorResponse(err, response)
	}
}

func handleBadErrorResponse(err error, resp any) {
	app.Logger().Error(
		"failed to encode an error response",
		"error", err,
		"response", resp,
	)
}
