package infra

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// PlaceholderBackendURL is the value shipped in sample configuration before a
// backend has been deployed. It is treated the same as an empty URL.
const PlaceholderBackendURL = "YOUR_PYTHON_BACKEND_API_URL_HERE"

// Config is the API server configuration, read from the environment.
type Config struct {
	AppEnv   string
	Port     string
	LogLevel string

	UseMock        bool
	BackendURL     string
	MockDelay      time.Duration
	RequestTimeout time.Duration

	DefaultLocale  string
	GeoIPDBPath    string
	NATSURL        string
	AllowedOrigins []string

	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
	RateLimitPerMin  int
}

// LoadConfig reads the environment, applying defaults for unset variables.
// Malformed or negative values are reported together rather than ignored.
func LoadConfig() (*Config, error) {
	var env envReader
	cfg := &Config{
		AppEnv:   env.str("APP_ENV", "development"),
		Port:     env.str("PORT", "8080"),
		LogLevel: env.str("LOG_LEVEL", ""),

		UseMock:        env.boolean("GRAPHGEN_USE_MOCK", true),
		BackendURL:     env.str("GRAPHGEN_BACKEND_URL", ""),
		MockDelay:      env.duration("GRAPHGEN_MOCK_DELAY_MS", 2000, time.Millisecond),
		RequestTimeout: env.duration("GRAPHGEN_REQUEST_TIMEOUT_SECONDS", 45, time.Second),

		DefaultLocale:  env.str("DEFAULT_LOCALE", "en"),
		GeoIPDBPath:    env.str("GEOIP_DB_PATH", ""),
		NATSURL:        env.str("NATS_URL", ""),
		AllowedOrigins: splitList(env.str("CORS_ALLOWED_ORIGINS", "")),

		HTTPReadTimeout:  env.duration("HTTP_READ_TIMEOUT_SECONDS", 15, time.Second),
		HTTPWriteTimeout: env.duration("HTTP_WRITE_TIMEOUT_SECONDS", 120, time.Second),
		HTTPIdleTimeout:  env.duration("HTTP_IDLE_TIMEOUT_SECONDS", 60, time.Second),
		RateLimitPerMin:  env.integer("RATE_LIMIT_PER_MINUTE", 30),
	}
	if err := errors.Join(env.errs...); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// BackendConfigured reports whether a usable backend URL is present.
func (c *Config) BackendConfigured() bool {
	return BackendURLUsable(c.BackendURL)
}

// Mode names the active service path for logs and health output.
func (c *Config) Mode() string {
	if c.UseMock {
		return "mock"
	}
	return "backend"
}

// BackendURLUsable reports whether url is neither blank nor the sample placeholder.
func BackendURLUsable(url string) bool {
	url = strings.TrimSpace(url)
	return url != "" && url != PlaceholderBackendURL
}

// envReader collects parse errors so one bad variable does not hide another.
type envReader struct {
	errs []error
}

func (e *envReader) str(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func (e *envReader) integer(key string, fallback int) int {
	raw := e.str(key, "")
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		e.errs = append(e.errs, fmt.Errorf("%s must be a non-negative integer, got %q", key, raw))
		return fallback
	}
	return n
}

func (e *envReader) duration(key string, fallback int, unit time.Duration) time.Duration {
	return time.Duration(e.integer(key, fallback)) * unit
}

func (e *envReader) boolean(key string, fallback bool) bool {
	raw := e.str(key, "")
	if raw == "" {
		return fallback
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("%s must be true or false, got %q", key, raw))
		return fallback
	}
	return b
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
