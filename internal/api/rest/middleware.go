package rest

import (
	"net/http"
	"time"

	"github.com/nDmitry/homepage/internal/app"
	"github.com/nDmitry/homepage/internal/metrics"
)

// Logger wraps an http.Handler with request/response logging
func Logger(next http.Handler) http.Handler {
	logger := app.Logger()

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Create a response wrapper to capture the status code
		lrw := &loggingResponseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK, // Default to 200 OK
		}

		logger.Info("HTTP request",
			"method", r.Method,
			"path", r.URL.Path,
			"query", r.URL.RawQuery,
			"remote_addr", r.RemoteAddr,
			"user_agent", r.UserAgent(),
		)

		next.ServeHTTP(lrw, r)

		duration := time.Since(start)

		logger.Info("HTTP response",
			"method", r.Method,
			"path", r.URL.Path,
			"status", lrw.statusCode,
			"duration_ms", duration.Milliseconds(),
			"bytes", lrw.bytesWritten,
		)
	})
}

// Metrics records request counts and durations per route pattern.
func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		lrw, ok := w.(*loggingResponseWriter)

		if !ok {
			lrw = &loggingResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		}

		next.ServeHTTP(lrw, r)

		// The pattern is set by the mux once a route matched, raw paths
		// would make the label unbounded.
		path := r.Pattern

		if path == "" {
			path = "unmatched"
		}

		metrics.RecordHTTPRequest(r.Method, path, lrw.statusCode, time.Since(start))
	})
}

// loggingResponseWriter is a wrapper for http.ResponseWriter that captures status code and response size
type loggingResponseWriter struct {
	http.ResponseWriter
	statusCode   int
	bytesWritten int64
}

// WriteHeader captures the status code
func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.statusCode = code
	lrw.ResponseWriter.WriteHeader(code)
}

// Write captures the response size
func (lrw *loggingResponseWriter) Write(b []byte) (int, error) {
	n, err := lrw.ResponseWriter.Write(b)
	lrw.bytesWritten += int64(n)
	return n, err
}

// Unwrap returns the original ResponseWriter
func (lrw *loggingResponseWriter) Unwrap() http.ResponseWriter {
	return lrw.ResponseWriter
}
