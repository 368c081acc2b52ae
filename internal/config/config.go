// Package config loads csvgrid settings from environment variables, applies
// defaults and validates the result so misconfiguration fails at startup.
package config

import (
	"net"
	"strconv"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Fetch    FetchConfig
	Cache    CacheConfig
	Grid     GridConfig
	Rate     RateLimitConfig
	Security SecurityConfig
	Logging  LoggingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`
	Port int    `env:"SERVER_PORT" default:"8080"`

	ReadTimeout  time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"60s"`
	IdleTimeout  time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout bounds graceful shutdown, including draining views.
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the per-request middleware timeout.
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"45s"`

	// MaxBodyBytes caps inline CSV posted to the API (default: 5MB).
	MaxBodyBytes int64 `env:"SERVER_MAX_BODY_BYTES" default:"5132289"`
}

// FetchConfig holds outbound fetch settings.
type FetchConfig struct {
	// MaxBytes is the byte window requested with Range (default gives bytes=0-5132288).
	MaxBytes int64 `env:"FETCH_MAX_BYTES" default:"5132289"`

	Timeout time.Duration `env:"FETCH_TIMEOUT" default:"30s"`

	// ProxyPrefix is prepended to every URL unless a request names its own.
	ProxyPrefix string `env:"FETCH_PROXY_PREFIX" envAlt:"CORS_PROXY"`

	UserAgent string `env:"FETCH_USER_AGENT" default:"csvgrid/1.0"`

	// RatePerSecond throttles outbound fetches; 0 disables.
	RatePerSecond float64 `env:"FETCH_RATE_PER_SECOND" default:"0"`
}

// CacheConfig holds fetch and parse cache settings.
type CacheConfig struct {
	// MaxEntries bounds each cache; 0 keeps entries for the process lifetime.
	MaxEntries int `env:"CACHE_MAX_ENTRIES" default:"0"`
}

// GridConfig holds view and rendering settings.
type GridConfig struct {
	// MaxRows caps rows rendered in the HTML grid.
	MaxRows int `env:"GRID_MAX_ROWS" default:"1000"`

	// WaitTime is how long GET /grid waits for a load before showing the
	// loading page.
	WaitTime time.Duration `env:"GRID_WAIT_TIME" default:"2s"`

	// RefreshInterval is the auto-refresh period of the loading page.
	RefreshInterval time.Duration `env:"GRID_REFRESH_INTERVAL" default:"2s"`

	MaxConcurrent int           `env:"GRID_MAX_CONCURRENT" default:"8"`
	MaxWaitTime   time.Duration `env:"GRID_MAX_WAIT_TIME" default:"10s"`
	ViewTTL       time.Duration `env:"GRID_VIEW_TTL" default:"5m"`
	LoadTimeout   time.Duration `env:"GRID_LOAD_TIMEOUT" default:"60s"`
}

// RateLimitConfig holds inbound per-IP rate limiting settings.
type RateLimitConfig struct {
	Enabled bool `env:"RATE_LIMIT_ENABLED" default:"true"`

	RequestsPerMinute int `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"120"`

	// Burst is the number of requests allowed above the steady rate.
	Burst int `env:"RATE_LIMIT_BURST" default:"20"`
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	// TrustedProxies is a comma-separated list of trusted proxy CIDRs.
	TrustedProxies []string `env:"TRUSTED_PROXIES"`

	EnableCSP bool `env:"SECURITY_ENABLE_CSP" default:"true"`

	// RequireAPIKey protects /api routes with an X-API-Key header.
	RequireAPIKey bool     `env:"REQUIRE_API_KEY" default:"false"`
	APIKeys       []string `env:"API_KEYS"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is text or json.
	Format string `env:"LOG_FORMAT" default:"text"`
}

// Addr returns the listen address in host:port form.
func (c *ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
