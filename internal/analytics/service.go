package analytics

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"smartinventory/internal/models"
	"smartinventory/pkg/database"
	"smartinventory/pkg/logger"
)

// Querier runs a statement and streams its rows. *database.Manager satisfies it.
type Querier interface {
	Query(ctx context.Context, sql string, params database.Params, scan database.RowScanner) error
}

// AggregationError reports which dashboard section failed.
type AggregationError struct {
	Section string
	Err     error
}

func (e *AggregationError) Error() string {
	return fmt.Sprintf("dashboard aggregation failed at %s: %v", e.Section, e.Err)
}

func (e *AggregationError) Unwrap() error {
	return e.Err
}

// DashboardService assembles the dashboard snapshot from eight independent
// queries issued concurrently through the shared pool.
type DashboardService struct {
	db Querier
}

func NewDashboardService(db Querier) *DashboardService {
	return &DashboardService{db: db}
}

type section struct {
	name string
	run  func(ctx context.Context, snap *models.DashboardSnapshot) error
}

// GetDashboard returns a complete snapshot or an *AggregationError naming the
// first section that failed. Partial snapshots are never returned.
func (s *DashboardService) GetDashboard(ctx context.Context) (*models.DashboardSnapshot, error) {
	snap := models.NewDashboardSnapshot()

	sections := []section{
		{"inventory", s.inventory},
		{"sales", s.sales},
		{"purchases", s.purchases},
		{"alerts", s.alerts},
		{"recentSales", s.recentSales},
		{"topProducts", s.topProducts},
		{"categories", s.categories},
		{"warehouses", s.warehouses},
	}

	// Each section writes only its own field of snap.
	g, gctx := errgroup.WithContext(ctx)
	for _, sec := range sections {
		g.Go(func() error {
			if err := sec.run(gctx, snap); err != nil {
				return &AggregationError{Section: sec.name, Err: err}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		logger.L().Error("dashboard aggregation failed", zap.Error(err))
		return nil, err
	}
	return snap, nil
}

func (s *DashboardService) inventory(ctx context.Context, snap *models.DashboardSnapshot) error {
	return s.db.Query(ctx, inventoryQuery, nil, func(row pgx.CollectableRow) error {
		inv := &snap.Inventory
		return row.Scan(
			&inv.TotalProducts,
			&inv.TotalUnits,
			&inv.TotalInventoryValue,
			&inv.LowStockProducts,
			&inv.OutOfStockProducts,
			&inv.AverageStock,
		)
	})
}

func (s *DashboardService) sales(ctx context.Context, snap *models.DashboardSnapshot) error {
	params := database.Params{"status": StatusCompleted}
	return s.db.Query(ctx, salesQuery, params, func(row pgx.CollectableRow) error {
		sales := &snap.Sales
		return row.Scan(&sales.TotalSales, &sales.TotalUnitsSold, &sales.TotalRevenue, &sales.AverageOrderValue)
	})
}

func (s *DashboardService) purchases(ctx context.Context, snap *models.DashboardSnapshot) error {
	return s.db.Query(ctx, purchasesQuery, nil, func(row pgx.CollectableRow) error {
		p := &snap.Purchases
		return row.Scan(&p.TotalPurchases, &p.TotalUnitsReceived, &p.TotalPurchaseCost)
	})
}

func (s *DashboardService) alerts(ctx context.Context, snap *models.DashboardSnapshot) error {
	params := database.Params{
		"out_of_stock": AlertOutOfStock,
		"low_stock":    AlertLowStock,
	}
	return s.db.Query(ctx, alertsQuery, params, func(row pgx.CollectableRow) error {
		a := &snap.Alerts
		return row.Scan(&a.TotalUnresolvedAlerts, &a.OutOfStockAlerts, &a.LowStockAlerts)
	})
}

func (s *DashboardService) recentSales(ctx context.Context, snap *models.DashboardSnapshot) error {
	params := database.Params{"status": StatusCompleted, "row_limit": recentSalesLimit}
	return s.db.Query(ctx, recentSalesQuery, params, func(row pgx.CollectableRow) error {
		var rs models.RecentSale
		if err := row.Scan(
			&rs.SaleID,
			&rs.InvoiceNumber,
			&rs.CustomerName,
			&rs.WarehouseName,
			&rs.TotalAmount,
			&rs.ItemCount,
			&rs.SaleDate,
		); err != nil {
			return err
		}
		snap.RecentSales = append(snap.RecentSales, rs)
		return nil
	})
}

func (s *DashboardService) topProducts(ctx context.Context, snap *models.DashboardSnapshot) error {
	params := database.Params{"status": StatusCompleted, "row_limit": topProductsLimit}
	return s.db.Query(ctx, topProductsQuery, params, func(row pgx.CollectableRow) error {
		var tp models.TopProduct
		if err := row.Scan(&tp.ProductID, &tp.ProductName, &tp.UnitsSold, &tp.Revenue); err != nil {
			return err
		}
		snap.TopProducts = append(snap.TopProducts, tp)
		return nil
	})
}

func (s *DashboardService) categories(ctx context.Context, snap *models.DashboardSnapshot) error {
	return s.db.Query(ctx, categoriesQuery, nil, func(row pgx.CollectableRow) error {
		var cs models.CategoryStock
		if err := row.Scan(&cs.CategoryID, &cs.CategoryName, &cs.ProductCount, &cs.TotalStock, &cs.InventoryValue); err != nil {
			return err
		}
		snap.Categories = append(snap.Categories, cs)
		return nil
	})
}

func (s *DashboardService) warehouses(ctx context.Context, snap *models.DashboardSnapshot) error {
	return s.db.Query(ctx, warehousesQuery, nil, func(row pgx.CollectableRow) error {
		var ws models.WarehouseStock
		if err := row.Scan(&ws.WarehouseID, &ws.WarehouseName, &ws.TotalStock, &ws.ProductCount); err != nil {
			return err
		}
		snap.Warehouses = append(snap.Warehouses, ws)
		return nil
	})
}
