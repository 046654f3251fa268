package config

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/url"
	"time"

	"github.com/joho/godotenv"
	"go-simpler.org/env"
)

type Config struct {
	AppEnv    string `env:"APP_ENV" default:"development"`
	AppURL    string `env:"APP_URL" default:"http://localhost:8080"`
	Port      string `env:"PORT" default:"8080"`
	LogLevel  string `env:"LOG_LEVEL" default:"info"`
	LogFormat string `env:"LOG_FORMAT" default:"text"`

	// PagePath points at the HTML document to serve. Empty selects the embedded page.
	PagePath    string `env:"PAGE_PATH"`
	MarkerClass string `env:"MARKER_CLASS" default:"disturb"`

	DisturbRate         float64       `env:"DISTURB_RATE" default:"0.001"` // per millisecond
	DisturbRestoreDelay time.Duration `env:"DISTURB_RESTORE_DELAY" default:"100ms"`
	DisturbAlphabet     string        `env:"DISTURB_ALPHABET" default:"abcdefghijklmnopqrstuvwxyz@[]%&/ "`

	MaxWebSocketConnections int     `env:"MAX_WEBSOCKET_CONNECTIONS" default:"1000"`
	WebSocketRateLimit      float64 `env:"WEBSOCKET_RATE_LIMIT" default:"5"`
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	var cfg Config
	if err := env.Load(&cfg, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func validate(cfg *Config) error {
	if cfg.MarkerClass == "" {
		return errors.New("MARKER_CLASS is required")
	}

	if cfg.DisturbRate <= 0 || math.IsInf(cfg.DisturbRate, 0) || math.IsNaN(cfg.DisturbRate) {
		return fmt.Errorf("DISTURB_RATE must be a positive number, got %v", cfg.DisturbRate)
	}

	if cfg.DisturbRestoreDelay <= 0 {
		return fmt.Errorf("DISTURB_RESTORE_DELAY must be positive, got %v", cfg.DisturbRestoreDelay)
	}

	if cfg.DisturbAlphabet == "" {
		return errors.New("DISTURB_ALPHABET must not be empty")
	}

	if cfg.MaxWebSocketConnections < 1 {
		return fmt.Errorf("MAX_WEBSOCKET_CONNECTIONS must be at least 1, got %d", cfg.MaxWebSocketConnections)
	}

	if cfg.WebSocketRateLimit <= 0 {
		return fmt.Errorf("WEBSOCKET_RATE_LIMIT must be positive, got %v", cfg.WebSocketRateLimit)
	}

	if cfg.IsProduction() {
		u, err := url.Parse(cfg.AppURL)
		if err != nil || u.Host == "" {
			return fmt.Errorf("APP_URL must be an absolute URL in production, got %q", cfg.AppURL)
		}
	}

	return nil
}
