package config

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "output", cfg.OutputDir)
	assert.Equal(t, "weather", cfg.WeatherDir)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("SOLAR_LOG_LEVEL", "debug")
	t.Setenv("SOLAR_OUTPUT_DIR", "/tmp/out")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "/tmp/out", cfg.OutputDir)
}

func TestLoggerLevel(t *testing.T) {
	cfg := &Config{LogLevel: "warn", LogFormat: "text"}
	logger := cfg.Logger()

	assert.False(t, logger.Enabled(context.Background(), slog.LevelInfo))
	assert.True(t, logger.Enabled(context.Background(), slog.LevelWarn))
}

func TestWeatherPath(t *testing.T) {
	cfg := &Config{WeatherDir: "weather"}
	assert.Equal(t, filepath.Join("weather", "cape_town_weather.csv"), cfg.WeatherPath("Cape Town"))
}
