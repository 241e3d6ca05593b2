package core

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultRequestTimeout bounds every backend call. Exceeding it cancels the
// in-flight request and surfaces ErrRequestTimeout.
const DefaultRequestTimeout = 10 * time.Second

// DefaultSessionKey is the store key holding the persisted profile blob.
const DefaultSessionKey = "user_profile"

// Config holds all configuration options for the QuickPlate client.
// It supports three-layer configuration priority:
//  1. Default values (lowest priority)
//  2. Environment variables (medium priority)
//  3. Functional options (highest priority)
//
// Example usage:
//
//	cfg, err := core.NewConfig(
//	    core.WithBaseURL("https://canteen.example.edu"),
//	    core.WithSessionProvider("redis"),
//	    core.WithRedisURL("redis://localhost:6379"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
type Config struct {
	// API configuration
	API APIConfig `yaml:"api" json:"api"`

	// Session persistence configuration
	Session SessionConfig `yaml:"session" json:"session"`

	// Telemetry configuration (optional module)
	Telemetry TelemetryConfig `yaml:"telemetry" json:"telemetry"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`

	// Development configuration
	Development DevelopmentConfig `yaml:"development" json:"development"`
}

// APIConfig contains the backend endpoint configuration.
type APIConfig struct {
	BaseURL        string        `yaml:"base_url" json:"base_url"`
	RequestTimeout time.Duration `yaml:"request_timeout" json:"request_timeout"`
	UserAgent      string        `yaml:"user_agent" json:"user_agent"`
}

// SessionConfig contains session persistence configuration.
// Supports in-memory storage (default) or Redis for durable sessions.
type SessionConfig struct {
	Provider  string        `yaml:"provider" json:"provider"` // "inmemory" or "redis"
	RedisURL  string        `yaml:"redis_url" json:"redis_url"`
	Namespace string        `yaml:"namespace" json:"namespace"`
	Key       string        `yaml:"key" json:"key"`
	TTL       time.Duration `yaml:"ttl" json:"ttl"` // 0 = no expiry
}

// TelemetryConfig contains observability configuration for tracing and
// metrics. The endpoint should be an OTLP receiver address; when empty,
// spans go to stdout in development.
type TelemetryConfig struct {
	Enabled      bool    `yaml:"enabled" json:"enabled"`
	Endpoint     string  `yaml:"endpoint" json:"endpoint"`
	ServiceName  string  `yaml:"service_name" json:"service_name"`
	SamplingRate float64 `yaml:"sampling_rate" json:"sampling_rate"`
	Insecure     bool    `yaml:"insecure" json:"insecure"`
}

// LoggingConfig contains logging configuration.
// Supports structured (JSON) and human-readable (text) formats.
type LoggingConfig struct {
	Level      string `yaml:"level" json:"level"`
	Format     string `yaml:"format" json:"format"`
	TimeFormat string `yaml:"time_format" json:"time_format"`
}

// DevelopmentConfig contains settings for local development and testing.
type DevelopmentConfig struct {
	Enabled      bool `yaml:"enabled" json:"enabled"`
	DebugLogging bool `yaml:"debug_logging" json:"debug_logging"`
	PrettyLogs   bool `yaml:"pretty_logs" json:"pretty_logs"`
}

// Option is a functional option for configuring the client.
// Options are applied in order and can return an error if the configuration
// is invalid.
type Option func(*Config) error

// DefaultConfig returns a configuration with sensible defaults. These can be
// overridden by environment variables and functional options.
func DefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			RequestTimeout: DefaultRequestTimeout,
			UserAgent:      "quickplate-go/" + Version,
		},
		Session: SessionConfig{
			Provider:  "inmemory",
			Namespace: "quickplate:sessions",
			Key:       DefaultSessionKey,
		},
		Telemetry: TelemetryConfig{
			Enabled:      false,
			ServiceName:  "quickplate-client",
			SamplingRate: 1.0,
			Insecure:     true,
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "json",
			TimeFormat: time.RFC3339Nano,
		},
	}
}

// NewConfig creates a configuration: defaults, then environment variables,
// then the supplied options.
func NewConfig(opts ...Option) (*Config, error) {
	cfg := DefaultConfig()
	cfg.applyEnvironmentVariables()

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnvironmentVariables loads QUICKPLATE_* environment variables into
// the configuration. Well-known ecosystem variables (REDIS_URL,
// OTEL_EXPORTER_OTLP_ENDPOINT) act as fallbacks.
func (c *Config) applyEnvironmentVariables() {
	if v := os.Getenv("QUICKPLATE_API_URL"); v != "" {
		c.API.BaseURL = v
	}
	if v := os.Getenv("QUICKPLATE_API_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.API.RequestTimeout = d
		}
	}

	if v := os.Getenv("QUICKPLATE_SESSION_PROVIDER"); v != "" {
		c.Session.Provider = v
	}
	if v := os.Getenv("QUICKPLATE_REDIS_URL"); v != "" {
		c.Session.RedisURL = v
	} else if v := os.Getenv("REDIS_URL"); v != "" {
		c.Session.RedisURL = v
	}
	if v := os.Getenv("QUICKPLATE_SESSION_KEY"); v != "" {
		c.Session.Key = v
	}
	if v := os.Getenv("QUICKPLATE_SESSION_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.Session.TTL = d
		}
	}

	if v := os.Getenv("QUICKPLATE_TELEMETRY_ENABLED"); v != "" {
		c.Telemetry.Enabled = parseBool(v)
	}
	if v := os.Getenv("QUICKPLATE_TELEMETRY_ENDPOINT"); v != "" {
		c.Telemetry.Endpoint = v
	} else if v := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"); v != "" {
		c.Telemetry.Endpoint = v
	}
	if v := os.Getenv("OTEL_SERVICE_NAME"); v != "" {
		c.Telemetry.ServiceName = v
	}

	if v := os.Getenv("QUICKPLATE_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("QUICKPLATE_LOG_FORMAT"); v != "" {
		c.Logging.Format = v
	}

	if v := os.Getenv("QUICKPLATE_DEV_MODE"); v != "" {
		c.Development.Enabled = parseBool(v)
		if c.Development.Enabled {
			c.Development.PrettyLogs = true
		}
	}
	if v := os.Getenv("QUICKPLATE_DEBUG"); v != "" {
		c.Development.DebugLogging = parseBool(v)
	}
}

// Validate checks the configuration for inconsistencies.
func (c *Config) Validate() error {
	if c.API.BaseURL != "" {
		u, err := url.Parse(c.API.BaseURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("API base URL %q is not a valid URL: %w", c.API.BaseURL, ErrInvalidConfiguration)
		}
	}
	if c.API.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be positive: %w", ErrInvalidConfiguration)
	}
	switch c.Session.Provider {
	case "inmemory", "redis":
	default:
		return fmt.Errorf("unknown session provider %q: %w", c.Session.Provider, ErrInvalidConfiguration)
	}
	if c.Session.Provider == "redis" && c.Session.RedisURL == "" {
		return fmt.Errorf("redis session provider requires a redis URL: %w", ErrMissingConfiguration)
	}
	if c.Telemetry.SamplingRate < 0 || c.Telemetry.SamplingRate > 1 {
		return fmt.Errorf("telemetry sampling rate must be in [0,1]: %w", ErrInvalidConfiguration)
	}
	return nil
}

// LoadEnvFile loads environment variables from a .env file before
// configuration is built. Missing files are not an error so the same code
// path works in environments without one.
func LoadEnvFile(path string) error {
	if path == "" {
		path = ".env"
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	return godotenv.Load(path)
}

func parseBool(v string) bool {
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false
	}
	return b
}

// WithBaseURL sets the backend base URL.
func WithBaseURL(baseURL string) Option {
	return func(c *Config) error {
		if baseURL == "" {
			return fmt.Errorf("base URL cannot be empty: %w", ErrInvalidConfiguration)
		}
		c.API.BaseURL = baseURL
		return nil
	}
}

// WithRequestTimeout overrides the per-request timeout.
func WithRequestTimeout(timeout time.Duration) Option {
	return func(c *Config) error {
		if timeout <= 0 {
			return fmt.Errorf("request timeout must be positive: %w", ErrInvalidConfiguration)
		}
		c.API.RequestTimeout = timeout
		return nil
	}
}

// WithSessionProvider selects the session store backend ("inmemory" or
// "redis").
func WithSessionProvider(provider string) Option {
	return func(c *Config) error {
		c.Session.Provider = provider
		return nil
	}
}

// WithRedisURL sets the Redis connection URL for the session store.
func WithRedisURL(redisURL string) Option {
	return func(c *Config) error {
		c.Session.RedisURL = redisURL
		return nil
	}
}

// WithSessionKey overrides the store key the profile blob is persisted
// under.
func WithSessionKey(key string) Option {
	return func(c *Config) error {
		if key == "" {
			return fmt.Errorf("session key cannot be empty: %w", ErrInvalidConfiguration)
		}
		c.Session.Key = key
		return nil
	}
}

// WithSessionTTL sets an expiry on the persisted session record.
func WithSessionTTL(ttl time.Duration) Option {
	return func(c *Config) error {
		c.Session.TTL = ttl
		return nil
	}
}

// WithTelemetry enables tracing export to the given OTLP endpoint. An empty
// endpoint keeps the development stdout exporter.
func WithTelemetry(enabled bool, endpoint string) Option {
	return func(c *Config) error {
		c.Telemetry.Enabled = enabled
		if endpoint != "" {
			c.Telemetry.Endpoint = endpoint
		}
		return nil
	}
}

// WithLogLevel sets the logging level (debug, info, warn, error).
func WithLogLevel(level string) Option {
	return func(c *Config) error {
		c.Logging.Level = level
		return nil
	}
}

// WithLogFormat sets the log output format ("json" or "text").
func WithLogFormat(format string) Option {
	return func(c *Config) error {
		if format != "json" && format != "text" {
			return fmt.Errorf("log format must be json or text: %w", ErrInvalidConfiguration)
		}
		c.Logging.Format = format
		return nil
	}
}

// WithDevelopmentMode enables development-friendly defaults: pretty logs and
// debug logging.
func WithDevelopmentMode(enabled bool) Option {
	return func(c *Config) error {
		c.Development.Enabled = enabled
		if enabled {
			c.Development.DebugLogging = true
			c.Development.PrettyLogs = true
		}
		return nil
	}
}

// fileConfig mirrors Config for YAML decoding. Durations are strings in the
// file ("10s", "24h") and parsed here.
type fileConfig struct {
	API struct {
		BaseURL        string `yaml:"base_url"`
		RequestTimeout string `yaml:"request_timeout"`
		UserAgent      string `yaml:"user_agent"`
	} `yaml:"api"`
	Session struct {
		Provider  string `yaml:"provider"`
		RedisURL  string `yaml:"redis_url"`
		Namespace string `yaml:"namespace"`
		Key       string `yaml:"key"`
		TTL       string `yaml:"ttl"`
	} `yaml:"session"`
	Telemetry struct {
		Enabled      *bool    `yaml:"enabled"`
		Endpoint     string   `yaml:"endpoint"`
		ServiceName  string   `yaml:"service_name"`
		SamplingRate *float64 `yaml:"sampling_rate"`
		Insecure     *bool    `yaml:"insecure"`
	} `yaml:"telemetry"`
	Logging struct {
		Level      string `yaml:"level"`
		Format     string `yaml:"format"`
		TimeFormat string `yaml:"time_format"`
	} `yaml:"logging"`
	Development struct {
		Enabled      *bool `yaml:"enabled"`
		DebugLogging *bool `yaml:"debug_logging"`
		PrettyLogs   *bool `yaml:"pretty_logs"`
	} `yaml:"development"`
}

// WithConfigFile loads configuration from a YAML file. Values in the file
// override defaults and environment variables but can still be overridden by
// later options. Absent fields leave the current value in place.
func WithConfigFile(path string) Option {
	return func(c *Config) error {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		var fc fileConfig
		if err := yaml.Unmarshal(data, &fc); err != nil {
			return fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
		return fc.apply(c)
	}
}

func (fc *fileConfig) apply(c *Config) error {
	setString := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	setDuration := func(dst *time.Duration, v, field string) error {
		if v == "" {
			return nil
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %s duration %q: %w", field, v, ErrInvalidConfiguration)
		}
		*dst = d
		return nil
	}

	setString(&c.API.BaseURL, fc.API.BaseURL)
	setString(&c.API.UserAgent, fc.API.UserAgent)
	if err := setDuration(&c.API.RequestTimeout, fc.API.RequestTimeout, "api.request_timeout"); err != nil {
		return err
	}

	setString(&c.Session.Provider, fc.Session.Provider)
	setString(&c.Session.RedisURL, fc.Session.RedisURL)
	setString(&c.Session.Namespace, fc.Session.Namespace)
	setString(&c.Session.Key, fc.Session.Key)
	if err := setDuration(&c.Session.TTL, fc.Session.TTL, "session.ttl"); err != nil {
		return err
	}

	if fc.Telemetry.Enabled != nil {
		c.Telemetry.Enabled = *fc.Telemetry.Enabled
	}
	setString(&c.Telemetry.Endpoint, fc.Telemetry.Endpoint)
	setString(&c.Telemetry.ServiceName, fc.Telemetry.ServiceName)
	if fc.Telemetry.SamplingRate != nil {
		c.Telemetry.SamplingRate = *fc.Telemetry.SamplingRate
	}
	if fc.Telemetry.Insecure != nil {
		c.Telemetry.Insecure = *fc.Telemetry.Insecure
	}

	setString(&c.Logging.Level, fc.Logging.Level)
	setString(&c.Logging.Format, fc.Logging.Format)
	setString(&c.Logging.TimeFormat, fc.Logging.TimeFormat)

	if fc.Development.Enabled != nil {
		c.Development.Enabled = *fc.Development.Enabled
	}
	if fc.Development.DebugLogging != nil {
		c.Development.DebugLogging = *fc.Development.DebugLogging
	}
	if fc.Development.PrettyLogs != nil {
		c.Development.PrettyLogs = *fc.Development.PrettyLogs
	}
	return nil
}
