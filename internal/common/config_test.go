package common

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestNewDefaultConfig(t *testing.T) {
	config := NewDefaultConfig()

	assert.Equal(t, "development", config.Environment)
	assert.Equal(t, 8085, config.Server.Port)
	assert.Equal(t, "https://www.screener.in", config.Source.BaseURL)
	assert.True(t, config.Source.Consolidated)
	assert.Equal(t, 3, config.Transport.MaxAttempts)
	assert.Equal(t, "1s", config.Transport.RetryDelay)
	assert.Equal(t, "10s", config.Transport.RequestTimeout)
	assert.Equal(t, "1m", config.Cache.QuoteTTL)
	assert.Equal(t, "5m", config.Cache.SearchTTL)
	assert.Equal(t, "1h", config.Cache.ChartTTL)
	assert.Equal(t, "*/15 * * * *", config.Refresh.Schedule)
	assert.Empty(t, config.Refresh.Symbols)
}

func TestLoadFromFile_Defaults(t *testing.T) {
	config, err := LoadFromFile("")
	require.NoError(t, err)

	assert.Equal(t, 8085, config.Server.Port)
	assert.Equal(t, "https://www.screener.in", config.Source.BaseURL)
}

func TestLoadFromFile_TOML(t *testing.T) {
	path := writeConfigFile(t, "pretium.toml", `
environment = "production"

[server]
port = 9001

[source]
consolidated = false

[refresh]
symbols = ["RELIANCE", "TCS"]
schedule = "*/30 * * * *"
`)

	config, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "production", config.Environment)
	assert.Equal(t, 9001, config.Server.Port)
	assert.False(t, config.Source.Consolidated)
	assert.Equal(t, []string{"RELIANCE", "TCS"}, config.Refresh.Symbols)
	assert.Equal(t, "*/30 * * * *", config.Refresh.Schedule)

	// Unset keys keep their defaults
	assert.Equal(t, "localhost", config.Server.Host)
	assert.Equal(t, 3, config.Transport.MaxAttempts)
}

func TestLoadFromFile_YAML(t *testing.T) {
	path := writeConfigFile(t, "pretium.yaml", `
server:
  port: 9002
cache:
  quote_ttl: 2m
`)

	config, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, 9002, config.Server.Port)
	assert.Equal(t, "2m", config.Cache.QuoteTTL)
}

func TestLoadFromFile_MissingFile(t *testing.T) {
	_, err := LoadFromFile("does-not-exist.toml")
	assert.Error(t, err)
}

func TestLoadFromFile_InvalidDuration(t *testing.T) {
	path := writeConfigFile(t, "pretium.toml", `
[cache]
quote_ttl = "fast"
`)

	_, err := LoadFromFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid duration")
}

func TestLoadFromFile_EnvOverridesFile(t *testing.T) {
	path := writeConfigFile(t, "pretium.toml", `
[server]
port = 9001
`)

	t.Setenv("PRETIUM_SERVER_PORT", "9100")
	t.Setenv("PRETIUM_SESSION_COOKIE", "sessionid=abc123")
	t.Setenv("PRETIUM_REFRESH_SYMBOLS", "INFY, HDFCBANK")

	config, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, 9100, config.Server.Port)
	assert.Equal(t, "sessionid=abc123", config.Source.SessionCookie)
	assert.Equal(t, []string{"INFY", "HDFCBANK"}, config.Refresh.Symbols)
}

func TestApplyFlagOverrides(t *testing.T) {
	config := NewDefaultConfig()

	ApplyFlagOverrides(config, 9200, "0.0.0.0")
	assert.Equal(t, 9200, config.Server.Port)
	assert.Equal(t, "0.0.0.0", config.Server.Host)

	// Zero values leave config untouched
	ApplyFlagOverrides(config, 0, "")
	assert.Equal(t, 9200, config.Server.Port)
	assert.Equal(t, "0.0.0.0", config.Server.Host)
}

func TestDuration(t *testing.T) {
	assert.Equal(t, 30*time.Second, Duration("", 30*time.Second))
	assert.Equal(t, 30*time.Second, Duration("not-a-duration", 30*time.Second))
	assert.Equal(t, 90*time.Second, Duration("90s", 30*time.Second))
	assert.Equal(t, time.Hour, Duration("1h", time.Minute))
}

func TestIsProduction(t *testing.T) {
	tests := []struct {
		environment string
		expected    bool
	}{
		{"production", true},
		{"prod", true},
		{"PRODUCTION", true},
		{"development", false},
		{"staging", false},
		{"", false},
	}

	for _, tt := range tests {
		config := &Config{Environment: tt.environment}
		assert.Equal(t, tt.expected, config.IsProduction(), "environment %q", tt.environment)
	}
}

func TestValidateJobSchedule(t *testing.T) {
	tests := []struct {
		name     string
		schedule string
		wantErr  bool
	}{
		{"every 15 minutes", "*/15 * * * *", false},
		{"every 5 minutes", "*/5 * * * *", false},
		{"hourly", "0 * * * *", false},
		{"fixed time weekly", "30 2 * * 1", false},
		{"every minute rejected", "* * * * *", true},
		{"every 2 minutes rejected", "*/2 * * * *", true},
		{"malformed", "not a schedule", true},
		{"too few fields", "0 0 * *", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateJobSchedule(tt.schedule)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
