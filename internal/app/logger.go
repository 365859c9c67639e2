package app

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"
)

// Logger returns the logger singleton
var Logger = sync.OnceValue(func() *slog.Logger {
	baseHandler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: LevelFromEnv(os.Getenv("LOG_LEVEL")),
	})
	handler := &loggerHandler{handler: baseHandler}

	return slog.New(handler)
})

// LevelFromEnv maps LOG_LEVEL values to slog levels, defaulting to info
func LevelFromEnv(value string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

type loggerHandler struct {
	handler slog.Handler
}

func (h *loggerHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

func (h *loggerHandler) Handle(ctx context.Context, r slog.Record) error {
	// Convert the time to UTC and truncate microseconds
	r.Time = r.Time.UTC().Truncate(time.Second)
	return h.handler.Handle(ctx, r)
}

func (h *loggerHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &loggerHandler{handler: h.handler.WithAttrs(attrs)}
}

func (h *loggerHandler) WithGroup(name string) slog.Handler {
	return &loggerHandler{handler: h.handler.WithGroup(name)}
}
