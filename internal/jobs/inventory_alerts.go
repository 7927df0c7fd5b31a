package jobs

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"smartinventory/internal/analytics"
	"smartinventory/pkg/database"
	"smartinventory/pkg/logger"
)

const refreshAlertsProcedure = "refresh_inventory_alerts"

// ProcedureRunner invokes stored procedures. *database.Manager satisfies it.
type ProcedureRunner interface {
	ExecProcedure(ctx context.Context, name string, params database.Params) (*database.ProcedureResult, error)
}

// AlertRefreshResult counts the alerts a refresh opened and closed.
type AlertRefreshResult struct {
	Raised   int64
	Resolved int64
}

// InventoryAlertService keeps inventory_alerts in line with current stock
// levels. The dashboard reads the unresolved rows.
type InventoryAlertService struct {
	db ProcedureRunner
}

func NewInventoryAlertService(db ProcedureRunner) *InventoryAlertService {
	return &InventoryAlertService{db: db}
}

// Refresh resolves alerts whose condition no longer holds and raises one
// alert per product that is low on or out of stock.
func (a *InventoryAlertService) Refresh(ctx context.Context) (*AlertRefreshResult, error) {
	res, err := a.db.ExecProcedure(ctx, refreshAlertsProcedure, database.Params{
		"low_stock_type":    analytics.AlertLowStock,
		"out_of_stock_type": analytics.AlertOutOfStock,
	})
	if err != nil {
		return nil, fmt.Errorf("refresh inventory alerts: %w", err)
	}

	out := &AlertRefreshResult{
		Raised:   toInt64(res.Output["raised"]),
		Resolved: toInt64(res.Output["resolved"]),
	}
	logger.L().Info("inventory alerts refreshed",
		zap.Int64("raised", out.Raised),
		zap.Int64("resolved", out.Resolved),
	)
	return out, nil
}

func toInt64(v any) int64 {
	switch n := v.(type) {
	case int16:
		return int64(n)
	case int32:
		return int64(n)
	case int64:
		return n
	case int:
		return int64(n)
	}
	return 0
}
