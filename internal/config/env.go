package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/nDmitry/homepage/internal/app"
)

// GetEnvString returns the value of an environment variable or defaultValue if it is unset or empty
func GetEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}

	return defaultValue
}

// GetEnvInt returns an environment variable as an integer.
// Unparsable values are logged and replaced with defaultValue.
func GetEnvInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)

	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)

	if err != nil {
		app.Logger().Warn("invalid integer value for environment variable, using default",
			slog.String("key", key),
			slog.String("value", valueStr),
			slog.Int("default", defaultValue))

		return defaultValue
	}

	return value
}

// GetEnvDuration returns an environment variable parsed with time.ParseDuration
func GetEnvDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)

	if valueStr == "" {
		return defaultValue
	}

	value, err := time.ParseDuration(valueStr)

	if err != nil {
		app.Logger().Warn("invalid duration value for environment variable, using default",
			slog.String("key", key),
			slog.String("value", valueStr),
			slog.String("default", defaultValue.String()))

		return defaultValue
	}

	return value
}
