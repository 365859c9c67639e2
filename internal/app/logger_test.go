package app

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevelFromEnv(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, LevelFromEnv("debug"))
	assert.Equal(t, slog.LevelWarn, LevelFromEnv(" WARN "))
	assert.Equal(t, slog.LevelError, LevelFromEnv("error"))
	assert.Equal(t, slog.LevelInfo, LevelFromEnv(""))
	assert.Equal(t, slog.LevelInfo, LevelFromEnv("verbose"))
}

func TestLoggerHandler_TruncatesToUTCSeconds(t *testing.T) {
	var buf bytes.Buffer

	logger := slog.New(&loggerHandler{handler: slog.NewJSONHandler(&buf, nil)})

	loc := time.FixedZone("UTC+3", 3*60*60)
	record := slog.NewRecord(time.Date(2024, 5, 1, 12, 30, 45, 123456789, loc), slog.LevelInfo, "hello", 0)

	require.NoError(t, logger.Handler().Handle(context.Background(), record))

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))

	assert.Equal(t, "2024-05-01T09:30:45Z", line["time"])
	assert.Equal(t, "hello", line["msg"])
}
