package database

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/samber/lo"
)

var (
	procedureName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)
	paramName     = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
)

// ProcedureResult holds what a CALL produced. Output is the first row, which
// is where PostgreSQL returns INOUT/OUT parameters.
type ProcedureResult struct {
	Output map[string]any
	Rows   []map[string]any
}

// ExecProcedure invokes a stored procedure using named notation. Only the
// procedure and parameter names become part of the statement; values are bound.
func (m *Manager) ExecProcedure(ctx context.Context, name string, params Params) (*ProcedureResult, error) {
	if !procedureName.MatchString(name) {
		return nil, fmt.Errorf("database: invalid procedure name %q", name)
	}

	keys := params.Keys()
	for _, k := range keys {
		if !paramName.MatchString(k) {
			return nil, fmt.Errorf("database: invalid parameter name %q for procedure %s", k, name)
		}
	}

	result := &ProcedureResult{
		Output: map[string]any{},
		Rows:   []map[string]any{},
	}

	err := m.Query(ctx, procedureCall(name, keys), params, func(row pgx.CollectableRow) error {
		values, err := row.Values()
		if err != nil {
			return err
		}

		rec := make(map[string]any, len(values))
		for i, fd := range row.FieldDescriptions() {
			if i < len(values) {
				rec[fd.Name] = values[i]
			}
		}
		result.Rows = append(result.Rows, rec)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if len(result.Rows) > 0 {
		result.Output = result.Rows[0]
	}
	return result, nil
}

func procedureCall(name string, keys []string) string {
	args := lo.Map(keys, func(k string, _ int) string {
		return k + " => @" + k
	})
	return "CALL " + name + "(" + strings.Join(args, ", ") + ")"
}
