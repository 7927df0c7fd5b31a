// Package testhelpers wires the data access layer to pgxmock for unit tests
// and to a disposable PostgreSQL container for integration tests.
package testhelpers

import (
	"context"
	"testing"

	pgxmock "github.com/pashagolub/pgxmock/v4"
	"go.uber.org/zap"

	"smartinventory/pkg/database"
)

// MockConfig is a valid configuration that never reaches a real server.
func MockConfig() *database.Config {
	return &database.Config{
		Server:   "localhost",
		Port:     5432,
		Database: "SmartInventoryDB",
		User:     "inventory",
		Password: "secret",
		Pool:     database.PoolConfig{Max: 10},
	}
}

// NewMockManager returns a manager whose pool is mock. The mock is closed
// when the test ends.
func NewMockManager(t *testing.T, mock pgxmock.PgxPoolIface) *database.Manager {
	t.Helper()
	t.Cleanup(mock.Close)

	return database.NewManager(
		database.WithConfig(MockConfig()),
		database.WithLogger(zap.NewNop()),
		database.WithConnector(func(ctx context.Context, cfg *database.Config) (database.Pool, error) {
			return mock, nil
		}),
	)
}
