package database

import (
	"fmt"
	"strings"
)

// ConfigError means the pool cannot be built from the current configuration.
type ConfigError struct {
	Field string
	Err   error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("database config: %s %v", e.Field, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// ConnectError means the backend was unreachable or rejected the credentials.
type ConnectError struct {
	Server string
	Err    error
}

func (e *ConnectError) Error() string {
	return fmt.Sprintf("database connect %s: %v", e.Server, e.Err)
}

func (e *ConnectError) Unwrap() error { return e.Err }

// QueryError wraps a failed statement. It records parameter names only.
type QueryError struct {
	Query  string
	Params []string
	Err    error
}

func (e *QueryError) Error() string {
	if len(e.Params) == 0 {
		return fmt.Sprintf("database query failed: %v", e.Err)
	}
	return fmt.Sprintf("database query failed (params: %s): %v", strings.Join(e.Params, ", "), e.Err)
}

func (e *QueryError) Unwrap() error { return e.Err }
