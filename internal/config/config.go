package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Server holds HTTP server settings.
type Server struct {
	Port            int           `env:"PORT" envDefault:"8080"`
	Environment     string        `env:"NODE_ENV" envDefault:"production"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
	RateLimit       int           `env:"RATE_LIMIT_PER_MINUTE" envDefault:"120"`
}

func (s Server) Address() string {
	return fmt.Sprintf(":%d", s.Port)
}

// IsDevelopment reports whether error details may be returned to clients.
func (s Server) IsDevelopment() bool {
	return s.Environment == "development"
}

type Logger struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	AsJSON bool   `env:"LOG_JSON" envDefault:"true"`
}

type Redis struct {
	Addr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
}

// Minio is optional; an empty endpoint disables report archiving.
type Minio struct {
	Endpoint  string `env:"MINIO_ENDPOINT"`
	AccessKey string `env:"MINIO_ACCESS_KEY"`
	SecretKey string `env:"MINIO_SECRET_KEY"`
	UseSSL    bool   `env:"MINIO_USE_SSL" envDefault:"false"`
	Bucket    string `env:"MINIO_BUCKET" envDefault:"dashboard-reports"`
}

func (m Minio) Enabled() bool {
	return m.Endpoint != ""
}

// Jobs intervals; zero disables a job.
type Jobs struct {
	AlertRefreshInterval     time.Duration `env:"ALERT_REFRESH_INTERVAL" envDefault:"30m"`
	DashboardArchiveInterval time.Duration `env:"DASHBOARD_ARCHIVE_INTERVAL" envDefault:"24h"`
}

type Config struct {
	Server Server
	Logger Logger
	Redis  Redis
	Minio  Minio
	Jobs   Jobs
}

// Load reads the process environment. A .env file is read first when
// APP_ENV=local. Database settings are read separately on first pool use.
func Load(path ...string) (*Config, error) {
	const op = "config.Load"

	if os.Getenv("APP_ENV") == "local" {
		if err := godotenv.Load(path...); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%s: load .env: %w", op, err)
		}
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if cfg.Minio.Enabled() && (cfg.Minio.AccessKey == "" || cfg.Minio.SecretKey == "") {
		return nil, fmt.Errorf("%s: MINIO_ACCESS_KEY and MINIO_SECRET_KEY are required when MINIO_ENDPOINT is set", op)
	}
	if cfg.Server.RateLimit < 0 {
		return nil, fmt.Errorf("%s: RATE_LIMIT_PER_MINUTE must not be negative", op)
	}

	return &cfg, nil
}
