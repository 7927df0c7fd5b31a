package models

import (
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

func init() {
	// Dashboard figures are consumed as JSON numbers by the UI.
	decimal.MarshalJSONWithoutQuotes = true
}

// DashboardSnapshot is one point-in-time read of the inventory, sales,
// purchases and alerts state. Every section is always present.
type DashboardSnapshot struct {
	Inventory   InventorySummary `json:"inventory"`
	Sales       SalesSummary     `json:"sales"`
	Purchases   PurchaseSummary  `json:"purchases"`
	Alerts      AlertSummary     `json:"alerts"`
	RecentSales []RecentSale     `json:"recentSales"`
	TopProducts []TopProduct     `json:"topProducts"`
	Categories  []CategoryStock  `json:"categories"`
	Warehouses  []WarehouseStock `json:"warehouses"`
}

// InventorySummary covers active products. Sums and the average are null
// when there are no active products.
type InventorySummary struct {
	TotalProducts       int64               `json:"TotalProducts"`
	TotalUnits          decimal.NullDecimal `json:"TotalUnits"`
	TotalInventoryValue decimal.NullDecimal `json:"TotalInventoryValue"`
	LowStockProducts    int64               `json:"LowStockProducts"`
	OutOfStockProducts  int64               `json:"OutOfStockProducts"`
	AverageStock        decimal.NullDecimal `json:"AverageStock"`
}

// SalesSummary covers completed sales of the current month.
// AverageOrderValue is the mean line total, not revenue per sale.
type SalesSummary struct {
	TotalSales        int64           `json:"TotalSales"`
	TotalUnitsSold    decimal.Decimal `json:"TotalUnitsSold"`
	TotalRevenue      decimal.Decimal `json:"TotalRevenue"`
	AverageOrderValue decimal.Decimal `json:"AverageOrderValue"`
}

type PurchaseSummary struct {
	TotalPurchases     int64           `json:"TotalPurchases"`
	TotalUnitsReceived decimal.Decimal `json:"TotalUnitsReceived"`
	TotalPurchaseCost  decimal.Decimal `json:"TotalPurchaseCost"`
}

type AlertSummary struct {
	TotalUnresolvedAlerts int64 `json:"TotalUnresolvedAlerts"`
	OutOfStockAlerts      int64 `json:"OutOfStockAlerts"`
	LowStockAlerts        int64 `json:"LowStockAlerts"`
}

type RecentSale struct {
	SaleID        int64           `json:"SaleID"`
	InvoiceNumber string          `json:"InvoiceNumber"`
	CustomerName  pgtype.Text     `json:"CustomerName"`
	WarehouseName pgtype.Text     `json:"WarehouseName"`
	TotalAmount   decimal.Decimal `json:"TotalAmount"`
	ItemCount     int64           `json:"ItemCount"`
	SaleDate      time.Time       `json:"SaleDate"`
}

type TopProduct struct {
	ProductID   int64           `json:"ProductID"`
	ProductName string          `json:"ProductName"`
	UnitsSold   decimal.Decimal `json:"UnitsSold"`
	Revenue     decimal.Decimal `json:"Revenue"`
}

type CategoryStock struct {
	CategoryID     int64           `json:"CategoryID"`
	CategoryName   string          `json:"CategoryName"`
	ProductCount   int64           `json:"ProductCount"`
	TotalStock     decimal.Decimal `json:"TotalStock"`
	InventoryValue decimal.Decimal `json:"InventoryValue"`
}

type WarehouseStock struct {
	WarehouseID   int64           `json:"WarehouseID"`
	WarehouseName string          `json:"WarehouseName"`
	TotalStock    decimal.Decimal `json:"TotalStock"`
	ProductCount  int64           `json:"ProductCount"`
}

// NewDashboardSnapshot returns a snapshot whose list sections encode as [].
func NewDashboardSnapshot() *DashboardSnapshot {
	return &DashboardSnapshot{
		RecentSales: []RecentSale{},
		TopProducts: []TopProduct{},
		Categories:  []CategoryStock{},
		Warehouses:  []WarehouseStock{},
	}
}
