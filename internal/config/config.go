package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/oriys/vega/internal/observability"
)

// ConfigurationError reports a setting that prevents startup. It is
// fatal: the process must not begin serving without valid credentials.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration: %s: %s", e.Field, e.Reason)
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// CORSConfig holds the cross-origin response headers. An empty Origin
// disables CORS handling entirely.
type CORSConfig struct {
	Origin           string `yaml:"origin"`
	Methods          string `yaml:"methods"`
	Headers          string `yaml:"headers"`
	AllowCredentials bool   `yaml:"allow_credentials"`
	MaxAge           int    `yaml:"max_age"`
}

// TursoConfig holds the remote database endpoint and credentials.
type TursoConfig struct {
	URL       string `yaml:"url"`
	AuthToken string `yaml:"auth_token"`
}

// RedisConfig holds Redis connection settings for the distributed
// download rate limiter.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// RateLimitConfig holds the download rate limiter settings. The limit
// is per client IP and applies to the download paths only.
type RateLimitConfig struct {
	Enabled           bool    `yaml:"enabled"`
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	Burst             int     `yaml:"burst"`
}

// FilesConfig holds the file listing policy. With StrictErrors set,
// backend failures during listings surface as API errors instead of
// degrading to an empty list.
type FilesConfig struct {
	StrictErrors bool `yaml:"strict_errors"`
}

// LoggingConfig holds log output settings.
type LoggingConfig struct {
	Format string `yaml:"format"`
	Level  string `yaml:"level"`
}

// KeepAliveConfig holds the background database ping settings.
type KeepAliveConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Interval time.Duration `yaml:"interval"`
}

// Config is the central configuration struct embedding all component configs
type Config struct {
	Server    ServerConfig         `yaml:"server"`
	CORS      CORSConfig           `yaml:"cors"`
	Turso     TursoConfig          `yaml:"turso"`
	Redis     RedisConfig          `yaml:"redis"`
	RateLimit RateLimitConfig      `yaml:"rate_limit"`
	Files     FilesConfig          `yaml:"files"`
	Logging   LoggingConfig        `yaml:"logging"`
	KeepAlive KeepAliveConfig      `yaml:"keepalive"`
	Telemetry observability.Config `yaml:"telemetry"`
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":8000",
			ReadTimeout:     15 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		CORS: CORSConfig{
			Origin:           "*",
			Methods:          "GET, POST, DELETE, OPTIONS",
			Headers:          "Content-Type, Authorization, X-Request-ID",
			AllowCredentials: true,
			MaxAge:           600,
		},
		Redis: RedisConfig{
			Addr:     "localhost:6379",
			Password: "",
			DB:       0,
		},
		RateLimit: RateLimitConfig{
			Enabled:           true,
			RequestsPerSecond: 5,
			Burst:             10,
		},
		Logging: LoggingConfig{
			Format: "text",
			Level:  "info",
		},
		KeepAlive: KeepAliveConfig{
			Enabled:  true,
			Interval: 5 * time.Minute,
		},
		Telemetry: observability.Config{
			ServiceName: "vega",
			SampleRate:  1.0,
		},
	}
}

// LoadFromFile loads configuration from a YAML file
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFromEnv applies environment variable overrides to the config
func LoadFromEnv(cfg *Config) {
	if v := os.Getenv("TURSO_DATABASE_URL"); v != "" {
		cfg.Turso.URL = v
	}
	if v := os.Getenv("TURSO_AUTH_TOKEN"); v != "" {
		cfg.Turso.AuthToken = v
	}
	if v := os.Getenv("VEGA_HTTP_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("VEGA_CORS_ORIGIN"); v != "" {
		cfg.CORS.Origin = v
	}
	if v := os.Getenv("VEGA_CORS_ALLOW_CREDENTIALS"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.CORS.AllowCredentials = b
		}
	}
	if v := os.Getenv("VEGA_REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("VEGA_REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("VEGA_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
	if v := os.Getenv("VEGA_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("VEGA_STRICT_FILE_ERRORS"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Files.StrictErrors = b
		}
	}
	if v := os.Getenv("VEGA_RATE_LIMIT_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.RateLimit.Enabled = b
		}
	}
	if v := os.Getenv("VEGA_KEEPALIVE_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.KeepAlive.Interval = d
		}
	}
	if v := os.Getenv("VEGA_OTEL_ENDPOINT"); v != "" {
		cfg.Telemetry.Enabled = true
		cfg.Telemetry.Exporter = "otlp"
		cfg.Telemetry.Endpoint = v
	}
}

// Load resolves the effective configuration: defaults, then the
// optional config file, then environment overrides.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		loaded, err := LoadFromFile(path)
		if err != nil {
			return nil, fmt.Errorf("load config file: %w", err)
		}
		cfg = loaded
	}
	LoadFromEnv(cfg)
	return cfg, nil
}

// Validate checks that the configuration can support startup.
func (c *Config) Validate() error {
	if c.Turso.URL == "" {
		return &ConfigurationError{Field: "turso.url", Reason: "required (set TURSO_DATABASE_URL)"}
	}
	if c.Turso.AuthToken == "" {
		return &ConfigurationError{Field: "turso.auth_token", Reason: "required (set TURSO_AUTH_TOKEN)"}
	}
	if c.Server.Addr == "" {
		return &ConfigurationError{Field: "server.addr", Reason: "listen address must not be empty"}
	}
	if c.RateLimit.Enabled {
		if c.RateLimit.RequestsPerSecond <= 0 {
			return &ConfigurationError{Field: "rate_limit.requests_per_second", Reason: "must be positive"}
		}
		if c.RateLimit.Burst <= 0 {
			return &ConfigurationError{Field: "rate_limit.burst", Reason: "must be positive"}
		}
	}
	if c.KeepAlive.Enabled && c.KeepAlive.Interval <= 0 {
		return &ConfigurationError{Field: "keepalive.interval", Reason: "must be positive"}
	}
	return nil
}
