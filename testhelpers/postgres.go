package testhelpers

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"smartinventory/migrations"
	"smartinventory/pkg/database"
)

const (
	pgImage = "postgres:16-alpine"
	pgDB    = "smartinventory_test"
	pgUser  = "inventory"
	pgPass  = "inventory"
)

// TestDB is a migrated PostgreSQL instance. Pool is for seeding fixtures;
// Manager is the code under test.
type TestDB struct {
	Config  *database.Config
	Manager *database.Manager
	Pool    *pgxpool.Pool
	Cleanup func()
}

// SetupTestDB starts a PostgreSQL container and applies the migrations.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	container, err := postgres.Run(ctx,
		pgImage,
		postgres.WithDatabase(pgDB),
		postgres.WithUsername(pgUser),
		postgres.WithPassword(pgPass),
		tc.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)
	portNum, err := strconv.Atoi(port.Port())
	require.NoError(t, err)

	cfg := &database.Config{
		Server:         host,
		Port:           portNum,
		Database:       pgDB,
		User:           pgUser,
		Password:       pgPass,
		TimeZone:       "UTC",
		ConnectTimeout: 15 * time.Second,
		Pool: database.PoolConfig{
			Max:         10,
			IdleTimeout: 30 * time.Second,
		},
	}

	pool, err := pgxpool.New(ctx, cfg.ConnString())
	require.NoError(t, err)

	m, err := migrations.NewMigrator(stdlib.OpenDBFromPool(pool))
	require.NoError(t, err)
	require.NoError(t, m.Up(ctx))
	require.NoError(t, m.Close())

	manager := database.NewManager(database.WithConfig(cfg))

	return &TestDB{
		Config:  cfg,
		Manager: manager,
		Pool:    pool,
		Cleanup: func() {
			manager.Close()
			pool.Close()
			_ = container.Terminate(context.Background())
		},
	}
}

// Truncate empties every table between tests.
func (db *TestDB) Truncate(t *testing.T) {
	t.Helper()

	_, err := db.Pool.Exec(context.Background(), `TRUNCATE
		inventory_alerts, purchase_items, purchase_headers, sales_items, sales_headers,
		customers, product_stocks, warehouses, products, categories
		RESTART IDENTITY CASCADE`)
	require.NoError(t, err)
}
