// Package config loads process configuration from BESTIARY_* environment variables
package config

import (
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/KirkDiggler/bestiary/internal/errors"
)

// Config is the process-wide configuration. Command flags override these values.
type Config struct {
	// HTTPAddr is the listen address of the JSON API
	HTTPAddr string `env:"BESTIARY_HTTP_ADDR" envDefault:":8080"`
	// GRPCPort serves health and reflection
	GRPCPort int `env:"BESTIARY_GRPC_PORT" envDefault:"50051"`

	// UpstreamURL is the dnd5eapi base including the ruleset path
	UpstreamURL string `env:"BESTIARY_UPSTREAM_URL" envDefault:"https://www.dnd5eapi.co/api/2014/"`
	// UpstreamTimeout bounds each upstream request
	UpstreamTimeout time.Duration `env:"BESTIARY_UPSTREAM_TIMEOUT" envDefault:"30s"`
	// MaxConcurrency bounds in-flight detail fetches, 0 for unbounded
	MaxConcurrency int `env:"BESTIARY_MAX_CONCURRENCY" envDefault:"0"`

	// RedisAddr selects the Redis session store; empty keeps sessions in memory
	RedisAddr string `env:"BESTIARY_REDIS_ADDR"`
	// SessionTTL is how long an idle navigation session lives
	SessionTTL time.Duration `env:"BESTIARY_SESSION_TTL" envDefault:"30m"`

	// OTelEndpoint enables tracing when set, e.g. http://localhost:4318
	OTelEndpoint string `env:"BESTIARY_OTEL_ENDPOINT"`
	// OTelEnabled turns tracing off even with an endpoint
	OTelEnabled bool `env:"BESTIARY_OTEL_ENABLED" envDefault:"true"`

	LogLevel  string `env:"BESTIARY_LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"BESTIARY_LOG_FORMAT" envDefault:"text"`
}

// Load parses the environment and validates the result
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeInvalidArgument, "failed to parse environment")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks value ranges
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()

	if c.HTTPAddr == "" {
		vb.RequiredField("http_addr")
	}
	if c.GRPCPort < 0 || c.GRPCPort > 65535 {
		vb.InvalidField("grpc_port", "must be between 0 and 65535")
	}
	if c.UpstreamURL == "" {
		vb.RequiredField("upstream_url")
	}
	if c.UpstreamTimeout <= 0 {
		vb.InvalidField("upstream_timeout", "must be positive")
	}
	if c.MaxConcurrency < 0 {
		vb.InvalidField("max_concurrency", "cannot be negative")
	}
	if c.SessionTTL <= 0 {
		vb.InvalidField("session_ttl", "must be positive")
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		vb.InvalidField("log_level", err.Error())
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		vb.InvalidField("log_format", "must be text or json")
	}

	return vb.Build()
}

// TracingEnabled reports whether traces should be exported
func (c *Config) TracingEnabled() bool {
	return c.OTelEnabled && c.OTelEndpoint != ""
}

// NewLogger builds the slog logger described by the config
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	level, err := parseLevel(c.LogLevel)
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}

	if strings.EqualFold(c.LogFormat, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return level, errors.InvalidArgumentf("unknown level %q", s)
	}
	return level, nil
}
