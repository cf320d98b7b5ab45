package common

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Environment string          `toml:"environment" yaml:"environment"`
	Server      ServerConfig    `toml:"server" yaml:"server"`
	Source      SourceConfig    `toml:"source" yaml:"source"`
	Transport   TransportConfig `toml:"transport" yaml:"transport"`
	Cache       CacheConfig     `toml:"cache" yaml:"cache"`
	News        NewsConfig      `toml:"news" yaml:"news"`
	Refresh     RefreshConfig   `toml:"refresh" yaml:"refresh"`
	Logging     LoggingConfig   `toml:"logging" yaml:"logging"`
}

type ServerConfig struct {
	Host           string   `toml:"host" yaml:"host"`
	Port           int      `toml:"port" yaml:"port" validate:"min=1,max=65535"`
	AllowedOrigins []string `toml:"allowed_origins" yaml:"allowed_origins"`
}

// SourceConfig describes the upstream market data site. The source has no
// published API; paths elsewhere in the code are the observed page and
// endpoint shapes, only the origin is configurable.
type SourceConfig struct {
	BaseURL       string `toml:"base_url" yaml:"base_url" validate:"required,url"`
	Consolidated  bool   `toml:"consolidated" yaml:"consolidated"`     // prefer consolidated financial variants
	SessionCookie string `toml:"session_cookie" yaml:"session_cookie"` // operator override, bypasses acquisition
	SessionTTL    string `toml:"session_ttl" yaml:"session_ttl"`       // duration string
	UserAgent     string `toml:"user_agent" yaml:"user_agent"`
}

type TransportConfig struct {
	MaxAttempts    int    `toml:"max_attempts" yaml:"max_attempts" validate:"min=1"`
	RetryDelay     string `toml:"retry_delay" yaml:"retry_delay"`                 // fixed, not exponential
	RequestTimeout string `toml:"request_timeout" yaml:"request_timeout"`         // per attempt
	RateLimit      int    `toml:"rate_limit" yaml:"rate_limit" validate:"min=1"`  // requests per second
}

type CacheConfig struct {
	QuoteTTL  string `toml:"quote_ttl" yaml:"quote_ttl"`
	SearchTTL string `toml:"search_ttl" yaml:"search_ttl"`
	ChartTTL  string `toml:"chart_ttl" yaml:"chart_ttl"`
	NewsTTL   string `toml:"news_ttl" yaml:"news_ttl"`
}

type NewsConfig struct {
	Enabled  bool   `toml:"enabled" yaml:"enabled"`
	BaseURL  string `toml:"base_url" yaml:"base_url"`
	MaxItems int    `toml:"max_items" yaml:"max_items" validate:"min=1,max=50"`
	Timeout  string `toml:"timeout" yaml:"timeout"`
}

// RefreshConfig controls the background warm-refresh job. With no symbols
// configured the job is never registered.
type RefreshConfig struct {
	Symbols  []string `toml:"symbols" yaml:"symbols"`
	Schedule string   `toml:"schedule" yaml:"schedule"` // cron format
}

type LoggingConfig struct {
	Level            string   `toml:"level" yaml:"level" validate:"oneof=debug info warn error"`
	Output           []string `toml:"output" yaml:"output"`                         // "stdout", "file"
	MinActivityLevel string   `toml:"min_activity_level" yaml:"min_activity_level"` // threshold for the activity ring
	ActivityBuffer   int      `toml:"activity_buffer" yaml:"activity_buffer" validate:"min=0"`
}

// NewDefaultConfig creates a configuration with default values.
// Technical parameters are hardcoded here for production stability; only
// user-facing settings should be exposed in pretium.toml.
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Host:           "localhost",
			Port:           8085,
			AllowedOrigins: []string{"*"},
		},
		Source: SourceConfig{
			BaseURL:      "https://www.screener.in",
			Consolidated: true,
			SessionTTL:   "30m",
			UserAgent:    "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		},
		Transport: TransportConfig{
			MaxAttempts:    3,
			RetryDelay:     "1s",
			RequestTimeout: "10s",
			RateLimit:      4,
		},
		Cache: CacheConfig{
			QuoteTTL:  "1m",
			SearchTTL: "5m",
			ChartTTL:  "1h",
			NewsTTL:   "15m",
		},
		News: NewsConfig{
			Enabled:  true,
			BaseURL:  "https://news.google.com",
			MaxItems: 10,
			Timeout:  "15s",
		},
		Refresh: RefreshConfig{
			Symbols:  []string{},
			Schedule: "*/15 * * * *",
		},
		Logging: LoggingConfig{
			Level:            "info",
			Output:           []string{"stdout", "file"},
			MinActivityLevel: "info",
			ActivityBuffer:   500,
		},
	}
}

// LoadFromFile loads configuration with priority: defaults -> file -> env.
// TOML is the primary format; .yaml/.yml files are parsed as YAML. An empty
// path loads defaults plus environment overrides.
func LoadFromFile(path string) (*Config, error) {
	// Session cookies and other secrets live in .env rather than the
	// config file. Absence is not an error.
	_ = godotenv.Load()

	config := NewDefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		switch strings.ToLower(filepath.Ext(path)) {
		case ".yaml", ".yml":
			if err := yaml.Unmarshal(data, config); err != nil {
				return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
			}
		default:
			if err := toml.Unmarshal(data, config); err != nil {
				return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
			}
		}
	}

	applyEnvOverrides(config)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// Validate checks the configuration using go-playground/validator tags plus
// the duration fields, which validator tags cannot express.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return err
	}

	durations := map[string]string{
		"source.session_ttl":        c.Source.SessionTTL,
		"transport.retry_delay":     c.Transport.RetryDelay,
		"transport.request_timeout": c.Transport.RequestTimeout,
		"cache.quote_ttl":           c.Cache.QuoteTTL,
		"cache.search_ttl":          c.Cache.SearchTTL,
		"cache.chart_ttl":           c.Cache.ChartTTL,
		"cache.news_ttl":            c.Cache.NewsTTL,
		"news.timeout":              c.News.Timeout,
	}
	for name, value := range durations {
		if value == "" {
			continue
		}
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("%s: invalid duration %q: %w", name, value, err)
		}
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("PRETIUM_ENV"); env != "" {
		config.Environment = env
	} else if env := os.Getenv("GO_ENV"); env != "" {
		config.Environment = env
	}

	// Server configuration
	if port := os.Getenv("PRETIUM_SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if host := os.Getenv("PRETIUM_SERVER_HOST"); host != "" {
		config.Server.Host = host
	}

	// Source configuration
	if baseURL := os.Getenv("PRETIUM_SOURCE_BASE_URL"); baseURL != "" {
		config.Source.BaseURL = baseURL
	}
	if cookie := os.Getenv("PRETIUM_SESSION_COOKIE"); cookie != "" {
		config.Source.SessionCookie = cookie
	}
	if ttl := os.Getenv("PRETIUM_SESSION_TTL"); ttl != "" {
		if _, err := time.ParseDuration(ttl); err == nil {
			config.Source.SessionTTL = ttl
		}
	}
	if consolidated := os.Getenv("PRETIUM_SOURCE_CONSOLIDATED"); consolidated != "" {
		if c, err := strconv.ParseBool(consolidated); err == nil {
			config.Source.Consolidated = c
		}
	}
	if userAgent := os.Getenv("PRETIUM_SOURCE_USER_AGENT"); userAgent != "" {
		config.Source.UserAgent = userAgent
	}

	// Transport configuration
	if attempts := os.Getenv("PRETIUM_TRANSPORT_MAX_ATTEMPTS"); attempts != "" {
		if a, err := strconv.Atoi(attempts); err == nil {
			config.Transport.MaxAttempts = a
		}
	}
	if delay := os.Getenv("PRETIUM_TRANSPORT_RETRY_DELAY"); delay != "" {
		if _, err := time.ParseDuration(delay); err == nil {
			config.Transport.RetryDelay = delay
		}
	}
	if timeout := os.Getenv("PRETIUM_TRANSPORT_REQUEST_TIMEOUT"); timeout != "" {
		if _, err := time.ParseDuration(timeout); err == nil {
			config.Transport.RequestTimeout = timeout
		}
	}
	if rateLimit := os.Getenv("PRETIUM_TRANSPORT_RATE_LIMIT"); rateLimit != "" {
		if r, err := strconv.Atoi(rateLimit); err == nil {
			config.Transport.RateLimit = r
		}
	}

	// News configuration
	if enabled := os.Getenv("PRETIUM_NEWS_ENABLED"); enabled != "" {
		if e, err := strconv.ParseBool(enabled); err == nil {
			config.News.Enabled = e
		}
	}

	// Refresh configuration
	if symbols := os.Getenv("PRETIUM_REFRESH_SYMBOLS"); symbols != "" {
		parts := []string{}
		for _, s := range strings.Split(symbols, ",") {
			if trimmed := strings.TrimSpace(s); trimmed != "" {
				parts = append(parts, trimmed)
			}
		}
		if len(parts) > 0 {
			config.Refresh.Symbols = parts
		}
	}
	if schedule := os.Getenv("PRETIUM_REFRESH_SCHEDULE"); schedule != "" {
		config.Refresh.Schedule = schedule
	}

	// Logging configuration
	if level := os.Getenv("PRETIUM_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if output := os.Getenv("PRETIUM_LOG_OUTPUT"); output != "" {
		outputs := []string{}
		for _, o := range strings.Split(output, ",") {
			if trimmed := strings.TrimSpace(o); trimmed != "" {
				outputs = append(outputs, trimmed)
			}
		}
		if len(outputs) > 0 {
			config.Logging.Output = outputs
		}
	}
	if minLevel := os.Getenv("PRETIUM_LOG_MIN_ACTIVITY_LEVEL"); minLevel != "" {
		config.Logging.MinActivityLevel = minLevel
	}
}

// ApplyFlagOverrides applies command-line flag overrides to config
func ApplyFlagOverrides(config *Config, port int, host string) {
	if port > 0 {
		config.Server.Port = port
	}
	if host != "" {
		config.Server.Host = host
	}
}

// Duration parses a config duration string, falling back to def on empty or
// malformed values. Validate rejects malformed non-empty values at load
// time, so the fallback mainly covers zero-value configs in tests.
func Duration(value string, def time.Duration) time.Duration {
	if value == "" {
		return def
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return def
	}
	return d
}

// IsProduction returns true if the environment is set to production
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}

// ValidateJobSchedule validates a cron schedule expression and ensures a
// minimum 5-minute interval. The upstream source is scraped, not queried
// through an API; refreshing more often than that invites blocks.
func ValidateJobSchedule(schedule string) error {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	_, err := parser.Parse(schedule)
	if err != nil {
		return fmt.Errorf("invalid cron expression: %w", err)
	}

	parts := strings.Fields(schedule)
	if len(parts) < 5 {
		return fmt.Errorf("invalid cron format: expected 5 fields")
	}

	minuteField := parts[0]
	if minuteField == "*" {
		return fmt.Errorf("schedule must have minimum 5-minute interval (every minute is not allowed)")
	}
	if strings.HasPrefix(minuteField, "*/") {
		interval, err := strconv.Atoi(strings.TrimPrefix(minuteField, "*/"))
		if err == nil && interval < 5 {
			return fmt.Errorf("schedule interval must be at least 5 minutes, got %d", interval)
		}
	}

	return nil
}
