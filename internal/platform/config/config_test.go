package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultValues(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.AppEnv)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, "disturb", cfg.MarkerClass)
	assert.Empty(t, cfg.PagePath)
	assert.InDelta(t, 0.001, cfg.DisturbRate, 1e-12)
	assert.Equal(t, 100*time.Millisecond, cfg.DisturbRestoreDelay)
	assert.Equal(t, "abcdefghijklmnopqrstuvwxyz@[]%&/ ", cfg.DisturbAlphabet)
	assert.Equal(t, 1000, cfg.MaxWebSocketConnections)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_CustomValues(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("APP_ENV", "production")
	t.Setenv("APP_URL", "https://glitch.example.com")
	t.Setenv("MARKER_CLASS", "glitch")
	t.Setenv("DISTURB_RATE", "0.05")
	t.Setenv("DISTURB_RESTORE_DELAY", "250ms")
	t.Setenv("DISTURB_ALPHABET", "01")
	t.Setenv("PAGE_PATH", "/srv/page.html")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "glitch", cfg.MarkerClass)
	assert.InDelta(t, 0.05, cfg.DisturbRate, 1e-12)
	assert.Equal(t, 250*time.Millisecond, cfg.DisturbRestoreDelay)
	assert.Equal(t, "01", cfg.DisturbAlphabet)
	assert.Equal(t, "/srv/page.html", cfg.PagePath)
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		value   string
		wantErr string
	}{
		{"zero rate", "DISTURB_RATE", "0", "DISTURB_RATE must be a positive number"},
		{"negative rate", "DISTURB_RATE", "-1", "DISTURB_RATE must be a positive number"},
		{"zero restore delay", "DISTURB_RESTORE_DELAY", "0s", "DISTURB_RESTORE_DELAY must be positive"},
		{"no websocket capacity", "MAX_WEBSOCKET_CONNECTIONS", "0", "MAX_WEBSOCKET_CONNECTIONS must be at least 1"},
		{"zero rate limit", "WEBSOCKET_RATE_LIMIT", "0", "WEBSOCKET_RATE_LIMIT must be positive"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidate_EmptyStrings(t *testing.T) {
	base := func() Config {
		return Config{
			MarkerClass:             "disturb",
			DisturbRate:             0.001,
			DisturbRestoreDelay:     100 * time.Millisecond,
			DisturbAlphabet:         "x",
			MaxWebSocketConnections: 1,
			WebSocketRateLimit:      1,
		}
	}

	cfg := base()
	require.NoError(t, validate(&cfg))

	cfg = base()
	cfg.MarkerClass = ""
	assert.EqualError(t, validate(&cfg), "MARKER_CLASS is required")

	cfg = base()
	cfg.DisturbAlphabet = ""
	assert.EqualError(t, validate(&cfg), "DISTURB_ALPHABET must not be empty")
}

func TestValidate_ProductionRequiresAbsoluteAppURL(t *testing.T) {
	cfg := Config{
		AppEnv:                  "production",
		AppURL:                  "not a url",
		MarkerClass:             "disturb",
		DisturbRate:             0.001,
		DisturbRestoreDelay:     100 * time.Millisecond,
		DisturbAlphabet:         "x",
		MaxWebSocketConnections: 1,
		WebSocketRateLimit:      1,
	}

	err := validate(&cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "APP_URL must be an absolute URL in production")
}
