package testhelpers

import (
	"context"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// ProductFixture describes a product row; zero values get sensible defaults.
type ProductFixture struct {
	Name         string
	CategoryID   *int64
	CurrentStock int
	ReorderLevel int
	CostPrice    decimal.Decimal
	Inactive     bool
}

// SaleLine is one item of a sale or purchase.
type SaleLine struct {
	ProductID int64
	Quantity  int
	LineTotal decimal.Decimal
}

func SeedCategory(t *testing.T, pool *pgxpool.Pool, name string) int64 {
	t.Helper()

	if name == "" {
		name = gofakeit.ProductCategory() + " " + gofakeit.LetterN(6)
	}

	var id int64
	err := pool.QueryRow(context.Background(),
		`INSERT INTO categories (category_name, description) VALUES ($1, $2) RETURNING category_id`,
		name, gofakeit.Sentence(6),
	).Scan(&id)
	require.NoError(t, err)
	return id
}

func SeedProduct(t *testing.T, pool *pgxpool.Pool, p ProductFixture) int64 {
	t.Helper()

	if p.Name == "" {
		p.Name = gofakeit.ProductName()
	}

	var id int64
	err := pool.QueryRow(context.Background(),
		`INSERT INTO products (product_name, category_id, current_stock, reorder_level, cost_price, is_active)
		 VALUES ($1, $2, $3, $4, $5, $6) RETURNING product_id`,
		p.Name, p.CategoryID, p.CurrentStock, p.ReorderLevel, p.CostPrice.String(), !p.Inactive,
	).Scan(&id)
	require.NoError(t, err)
	return id
}

func SeedWarehouse(t *testing.T, pool *pgxpool.Pool, name string, active bool) int64 {
	t.Helper()

	if name == "" {
		name = gofakeit.City() + " DC"
	}

	var id int64
	err := pool.QueryRow(context.Background(),
		`INSERT INTO warehouses (warehouse_name, is_active) VALUES ($1, $2) RETURNING warehouse_id`,
		name, active,
	).Scan(&id)
	require.NoError(t, err)
	return id
}

func SeedStock(t *testing.T, pool *pgxpool.Pool, productID, warehouseID int64, qty int) {
	t.Helper()

	_, err := pool.Exec(context.Background(),
		`INSERT INTO product_stocks (product_id, warehouse_id, on_hand_qty) VALUES ($1, $2, $3)`,
		productID, warehouseID, qty,
	)
	require.NoError(t, err)
}

func SeedCustomer(t *testing.T, pool *pgxpool.Pool) int64 {
	t.Helper()

	var id int64
	err := pool.QueryRow(context.Background(),
		`INSERT INTO customers (customer_name) VALUES ($1) RETURNING customer_id`,
		gofakeit.Company(),
	).Scan(&id)
	require.NoError(t, err)
	return id
}

// SeedSale inserts a sale header and its lines and returns the sale id.
func SeedSale(t *testing.T, pool *pgxpool.Pool, status string, at time.Time, customerID, warehouseID *int64, lines ...SaleLine) int64 {
	t.Helper()
	ctx := context.Background()

	var id int64
	err := pool.QueryRow(ctx,
		`INSERT INTO sales_headers (invoice_number, customer_id, warehouse_id, sale_date, status)
		 VALUES ($1, $2, $3, $4, $5) RETURNING sale_id`,
		"INV-"+gofakeit.DigitN(8), customerID, warehouseID, at, status,
	).Scan(&id)
	require.NoError(t, err)

	for _, l := range lines {
		unit := l.LineTotal.Div(decimal.NewFromInt(int64(l.Quantity)))
		_, err := pool.Exec(ctx,
			`INSERT INTO sales_items (sale_id, product_id, quantity, unit_price, line_total)
			 VALUES ($1, $2, $3, $4, $5)`,
			id, l.ProductID, l.Quantity, unit.StringFixed(2), l.LineTotal.String(),
		)
		require.NoError(t, err)
	}
	return id
}

func SeedPurchase(t *testing.T, pool *pgxpool.Pool, status string, at time.Time, lines ...SaleLine) int64 {
	t.Helper()
	ctx := context.Background()

	var id int64
	err := pool.QueryRow(ctx,
		`INSERT INTO purchase_headers (purchase_date, status) VALUES ($1, $2) RETURNING purchase_id`,
		at, status,
	).Scan(&id)
	require.NoError(t, err)

	for _, l := range lines {
		_, err := pool.Exec(ctx,
			`INSERT INTO purchase_items (purchase_id, product_id, quantity, line_total) VALUES ($1, $2, $3, $4)`,
			id, l.ProductID, l.Quantity, l.LineTotal.String(),
		)
		require.NoError(t, err)
	}
	return id
}

func SeedAlert(t *testing.T, pool *pgxpool.Pool, productID int64, alertType string, resolved bool) {
	t.Helper()

	_, err := pool.Exec(context.Background(),
		`INSERT INTO inventory_alerts (product_id, alert_type, is_resolved) VALUES ($1, $2, $3)`,
		productID, alertType, resolved,
	)
	require.NoError(t, err)
}

func Int64Ptr(v int64) *int64 {
	return &v
}
