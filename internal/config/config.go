// Package config loads process configuration from the environment.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/kelseyhightower/envconfig"
)

// Config holds the environment-driven settings shared by the CLIs. Flags
// override these per invocation.
type Config struct {
	LogLevel   string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat  string `envconfig:"LOG_FORMAT" default:"text"`
	OutputDir  string `envconfig:"OUTPUT_DIR" default:"output"`
	WeatherDir string `envconfig:"WEATHER_DIR" default:"weather"`
}

// Load reads configuration from SOLAR_* environment variables.
func Load() (*Config, error) {
	var c Config
	if err := envconfig.Process("solar", &c); err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}
	return &c, nil
}

// Logger builds the process logger from the configured level and format.
// Logs go to stderr so CLI output on stdout stays machine-readable.
func (c *Config) Logger() *slog.Logger {
	var level slog.Level
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if strings.ToLower(c.LogFormat) == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	return slog.New(handler)
}

// WeatherPath returns the weather CSV path for a city name.
func (c *Config) WeatherPath(city string) string {
	name := strings.ToLower(strings.ReplaceAll(city, " ", "_"))
	return filepath.Join(c.WeatherDir, name+"_weather.csv")
}
