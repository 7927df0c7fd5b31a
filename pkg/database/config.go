package database

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config describes how to reach the relational backend. Credentials are only
// ever read from the process environment.
type Config struct {
	Server                 string        `env:"DB_SERVER" envDefault:"localhost"`
	Port                   int           `env:"DB_PORT" envDefault:"5432"`
	Database               string        `env:"DB_DATABASE" envDefault:"SmartInventoryDB"`
	User                   string        `env:"DB_USER"`
	Password               string        `env:"DB_PASSWORD"`
	Encrypt                bool          `env:"DB_ENCRYPT" envDefault:"false"`
	TrustServerCertificate bool          `env:"DB_TRUST_SERVER_CERTIFICATE" envDefault:"false"`
	TimeZone               string        `env:"DB_TIMEZONE"`
	ConnectTimeout         time.Duration `env:"DB_CONNECT_TIMEOUT" envDefault:"15s"`
	ApplicationName        string        `env:"DB_APPLICATION_NAME" envDefault:"smartinventory"`

	Pool PoolConfig
}

type PoolConfig struct {
	Max         int32         `env:"DB_POOL_MAX" envDefault:"10"`
	Min         int32         `env:"DB_POOL_MIN" envDefault:"0"`
	IdleTimeout time.Duration `env:"DB_POOL_IDLE_TIMEOUT" envDefault:"30s"`
}

// LoadConfig parses the DB_* environment and validates the result.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, &ConfigError{Field: "environment", Err: err}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate fails fast on absent credentials instead of attempting an
// anonymous login.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Server) == "":
		return &ConfigError{Field: "DB_SERVER", Err: errors.New("must not be empty")}
	case strings.Contains(c.Server, `\`):
		return &ConfigError{Field: "DB_SERVER", Err: errors.New("named instances are not supported, use host or host:port")}
	case strings.TrimSpace(c.Database) == "":
		return &ConfigError{Field: "DB_DATABASE", Err: errors.New("must not be empty")}
	case c.User == "":
		return &ConfigError{Field: "DB_USER", Err: errors.New("is required")}
	case c.Password == "":
		return &ConfigError{Field: "DB_PASSWORD", Err: errors.New("is required")}
	case c.Port <= 0 || c.Port > 65535:
		return &ConfigError{Field: "DB_PORT", Err: fmt.Errorf("out of range: %d", c.Port)}
	case c.Pool.Max <= 0:
		return &ConfigError{Field: "DB_POOL_MAX", Err: fmt.Errorf("must be positive, got %d", c.Pool.Max)}
	case c.Pool.Min < 0 || c.Pool.Min > c.Pool.Max:
		return &ConfigError{Field: "DB_POOL_MIN", Err: fmt.Errorf("must be between 0 and %d, got %d", c.Pool.Max, c.Pool.Min)}
	case c.Pool.IdleTimeout < 0:
		return &ConfigError{Field: "DB_POOL_IDLE_TIMEOUT", Err: errors.New("must not be negative")}
	}
	return nil
}

// SSLMode maps the encrypt/trust pair onto a libpq sslmode.
func (c *Config) SSLMode() string {
	switch {
	case !c.Encrypt:
		return "disable"
	case c.TrustServerCertificate:
		return "require"
	default:
		return "verify-full"
	}
}

// HostPort splits DB_SERVER, which may carry its own port.
func (c *Config) HostPort() (string, string) {
	if host, port, err := net.SplitHostPort(c.Server); err == nil {
		return host, port
	}
	return c.Server, strconv.Itoa(c.Port)
}

// ConnString contains the password and must never be logged.
func (c *Config) ConnString() string {
	host, port := c.HostPort()

	q := url.Values{}
	q.Set("sslmode", c.SSLMode())
	if c.ConnectTimeout > 0 {
		q.Set("connect_timeout", strconv.Itoa(int(c.ConnectTimeout.Seconds())))
	}
	if c.ApplicationName != "" {
		q.Set("application_name", c.ApplicationName)
	}

	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     net.JoinHostPort(host, port),
		Path:     "/" + c.Database,
		RawQuery: q.Encode(),
	}
	return u.String()
}
