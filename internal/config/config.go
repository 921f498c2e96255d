package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config captures the runtime configuration for the Featherpost client.
type Config struct {
	BaseURL        string
	StatePath      string
	RequestTimeout time.Duration
	RatePerSecond  float64
	RateBurst      int
	LogLevel       string
}

// Load reads configuration from environment variables and an optional YAML
// config file, applying defaults suitable for a local backend.
func Load() (Config, error) {
	// A .env next to the binary is a convenience for local development.
	_ = godotenv.Load()

	viper.SetDefault("FEATHERPOST_API_URL", "http://localhost:8080/api")
	viper.SetDefault("FEATHERPOST_STATE_PATH", defaultStatePath())
	viper.SetDefault("FEATHERPOST_REQUEST_TIMEOUT", "15s")
	viper.SetDefault("FEATHERPOST_RATE_PER_SECOND", 10.0)
	viper.SetDefault("FEATHERPOST_RATE_BURST", 5)
	viper.SetDefault("FEATHERPOST_LOG_LEVEL", "info")

	viper.AutomaticEnv()

	viper.SetConfigName("featherpost")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	if dir, err := os.UserConfigDir(); err == nil {
		viper.AddConfigPath(filepath.Join(dir, "featherpost"))
	}
	_ = viper.ReadInConfig() // a config file is optional

	cfg := Config{
		BaseURL:        viper.GetString("FEATHERPOST_API_URL"),
		StatePath:      viper.GetString("FEATHERPOST_STATE_PATH"),
		RequestTimeout: viper.GetDuration("FEATHERPOST_REQUEST_TIMEOUT"),
		RatePerSecond:  viper.GetFloat64("FEATHERPOST_RATE_PER_SECOND"),
		RateBurst:      viper.GetInt("FEATHERPOST_RATE_BURST"),
		LogLevel:       viper.GetString("FEATHERPOST_LOG_LEVEL"),
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 15 * time.Second
	}
	return cfg, nil
}

// SlogLevel maps the configured level name onto a slog level.
func (c Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func defaultStatePath() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "featherpost", "state.db")
	}
	return "featherpost.db"
}
