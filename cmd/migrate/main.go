package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"smartinventory/migrations"
	"smartinventory/pkg/database"
	"smartinventory/pkg/logger"
)

func main() {
	command := flag.String("command", "up", "migration command: up, down or status")
	flag.Parse()

	if os.Getenv("APP_ENV") == "local" {
		_ = godotenv.Load()
	}
	if err := logger.Init("info", false); err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}

	err := run(*command)
	logger.Sync()
	if err != nil {
		os.Exit(1)
	}
}

func run(command string) error {
	cfg, err := database.LoadConfig()
	if err != nil {
		logger.L().Error("invalid database configuration", logger.ErrorF(err))
		return err
	}

	connCfg, err := pgx.ParseConfig(cfg.ConnString())
	if err != nil {
		logger.L().Error("invalid connection settings", logger.ErrorF(err))
		return err
	}
	if cfg.TimeZone != "" {
		connCfg.RuntimeParams["timezone"] = cfg.TimeZone
	}

	m, err := migrations.NewMigrator(stdlib.OpenDB(*connCfg))
	if err != nil {
		logger.L().Error("failed to create migrator", logger.ErrorF(err))
		return err
	}
	defer func() {
		if cerr := m.Close(); cerr != nil {
			logger.L().Warn("failed to close migrator db", logger.ErrorF(cerr))
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	switch command {
	case "up":
		err = m.Up(ctx)
	case "down":
		err = m.Down(ctx)
	case "status":
		err = m.Status(ctx)
	default:
		err = fmt.Errorf("unknown migration command %q", command)
	}
	if err != nil {
		logger.L().Error("migration failed", logger.String("command", command), logger.ErrorF(err))
		return err
	}

	logger.L().Info("migration finished", logger.String("command", command))
	return nil
}
