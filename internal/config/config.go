// Package config loads the frame service configuration from the environment.
package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Neynar holds the social-graph API settings.
type Neynar struct {
	APIKey  string        `env:"API_KEY, required"`
	BaseURL string        `env:"BASE_URL, default=https://api.neynar.com/v1/farcaster"`
	Timeout time.Duration `env:"TIMEOUT, default=15s"`
}

// Redis holds the session store settings. An empty Addr selects the
// in-memory store.
type Redis struct {
	Addr     string `env:"ADDR"`
	Password string `env:"PASSWORD"`
	DB       int    `env:"DB, default=0"`
}

// Kafka holds report publication settings. Empty Brokers disables it.
type Kafka struct {
	Brokers      string `env:"BROKERS"`
	ReportsTopic string `env:"TOPIC_REPORTS, default=frame-reports"`
}

// Consul holds service registration settings. Empty Addr disables it.
type Consul struct {
	Addr  string `env:"HTTP_ADDR"`
	Token string `env:"HTTP_TOKEN"`
}

// Server holds HTTP server timeouts.
type Server struct {
	ReadTimeout  time.Duration `env:"READ_TIMEOUT, default=15s"`
	WriteTimeout time.Duration `env:"WRITE_TIMEOUT, default=30s"`
	IdleTimeout  time.Duration `env:"IDLE_TIMEOUT, default=60s"`
}

type Config struct {
	Port           int           `env:"PORT, default=8080"`
	ServiceName    string        `env:"SERVICE_NAME, default=unfollower-frame"`
	ServiceHost    string        `env:"SERVICE_HOST, default=localhost"`
	DatabaseURL    string        `env:"DATABASE_URL"`
	SessionMaxAge  time.Duration `env:"SESSION_MAX_AGE, default=24h"`
	AllowedOrigins []string      `env:"CORS_ALLOWED_ORIGINS, default=*"`

	Neynar Neynar `env:",prefix=NEYNAR_"`
	Redis  Redis  `env:",prefix=REDIS_"`
	Kafka  Kafka  `env:",prefix=KAFKA_"`
	Consul Consul `env:",prefix=CONSUL_"`
	Server Server `env:",prefix=SERVER_"`
}

// Load reads the configuration from the process environment.
func Load(ctx context.Context) (*Config, error) {
	return LoadWith(ctx, envconfig.OsLookuper())
}

// LoadWith reads the configuration through the given lookuper.
func LoadWith(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: l,
	}); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks values envconfig cannot express as tags.
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid PORT %d", c.Port)
	}
	if c.SessionMaxAge <= 0 {
		return fmt.Errorf("SESSION_MAX_AGE must be positive, got %s", c.SessionMaxAge)
	}
	if c.Neynar.Timeout < 0 {
		return fmt.Errorf("NEYNAR_TIMEOUT must not be negative, got %s", c.Neynar.Timeout)
	}
	return nil
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}
