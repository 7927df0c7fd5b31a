package jobs

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"smartinventory/pkg/database"
	"smartinventory/pkg/logger"
)

type MockProcedureRunner struct {
	mock.Mock
}

func (m *MockProcedureRunner) ExecProcedure(ctx context.Context, name string, params database.Params) (*database.ProcedureResult, error) {
	args := m.Called(ctx, name, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*database.ProcedureResult), args.Error(1)
}

func TestInventoryAlertService_Refresh(t *testing.T) {
	logger.SetNopLogger()
	db := &MockProcedureRunner{}
	db.On("ExecProcedure", mock.Anything, "refresh_inventory_alerts", database.Params{
		"low_stock_type":    "LOW_STOCK",
		"out_of_stock_type": "OUT_OF_STOCK",
	}).Return(&database.ProcedureResult{
		Output: map[string]any{"raised": int32(3), "resolved": int32(1)},
	}, nil).Once()

	res, err := NewInventoryAlertService(db).Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), res.Raised)
	assert.Equal(t, int64(1), res.Resolved)
	db.AssertExpectations(t)
}

func TestInventoryAlertService_RefreshNullOutputs(t *testing.T) {
	logger.SetNopLogger()
	db := &MockProcedureRunner{}
	db.On("ExecProcedure", mock.Anything, mock.Anything, mock.Anything).
		Return(&database.ProcedureResult{Output: map[string]any{"raised": nil}}, nil).Once()

	res, err := NewInventoryAlertService(db).Refresh(context.Background())
	require.NoError(t, err)
	assert.Zero(t, res.Raised)
	assert.Zero(t, res.Resolved)
}

func TestInventoryAlertService_RefreshFailure(t *testing.T) {
	db := &MockProcedureRunner{}
	cause := &database.QueryError{Query: "CALL refresh_inventory_alerts(...)", Err: errors.New("procedure does not exist")}
	db.On("ExecProcedure", mock.Anything, mock.Anything, mock.Anything).Return(nil, cause).Once()

	_, err := NewInventoryAlertService(db).Refresh(context.Background())
	assert.ErrorIs(t, err, cause)
	assert.ErrorContains(t, err, "refresh inventory alerts")
}
