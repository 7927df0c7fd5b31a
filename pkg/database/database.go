package database

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/lo"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"smartinventory/pkg/logger"
)

// Pool is the subset of *pgxpool.Pool the manager relies on.
type Pool interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Ping(ctx context.Context) error
	Close()
}

// Connector builds a connected pool from a validated config.
type Connector func(ctx context.Context, cfg *Config) (Pool, error)

// Params are bound by name as @key placeholders.
type Params map[string]any

// Keys returns the parameter names in sorted order.
func (p Params) Keys() []string {
	keys := lo.Keys(p)
	slices.Sort(keys)
	return keys
}

func (p Params) args() []any {
	if len(p) == 0 {
		return nil
	}
	return []any{pgx.NamedArgs(p)}
}

// RowScanner is called once per result row.
type RowScanner func(row pgx.CollectableRow) error

type State int

const (
	StateUnset State = iota
	StateConnecting
	StateConnected
	StateClosing
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateClosing:
		return "closing"
	default:
		return "unset"
	}
}

const poolKey = "pool"

// Manager owns the single connection pool of the process. The pool is
// created on first use and shared by every caller afterwards.
type Manager struct {
	mu    sync.RWMutex
	pool  Pool
	state State
	group singleflight.Group

	cfg     *Config
	connect Connector
	logger  *zap.Logger
}

type Option func(*Manager)

// WithConfig skips reading the environment on first acquire.
func WithConfig(cfg *Config) Option {
	return func(m *Manager) { m.cfg = cfg }
}

func WithConnector(c Connector) Option {
	return func(m *Manager) { m.connect = c }
}

func WithLogger(l *zap.Logger) Option {
	return func(m *Manager) { m.logger = l }
}

func NewManager(opts ...Option) *Manager {
	m := &Manager{connect: Connect}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

var (
	sharedOnce sync.Once
	shared     *Manager
)

// Shared returns the process-wide manager configured from the environment.
func Shared() *Manager {
	sharedOnce.Do(func() {
		shared = NewManager()
	})
	return shared
}

func (m *Manager) log() *zap.Logger {
	if m.logger != nil {
		return m.logger
	}
	return logger.L()
}

func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// Acquire returns the connected pool, creating it if needed. Concurrent
// first callers share a single creation attempt; a failed attempt leaves
// nothing behind and the next call starts over.
func (m *Manager) Acquire(ctx context.Context) (Pool, error) {
	m.mu.RLock()
	pool := m.pool
	m.mu.RUnlock()
	if pool != nil {
		return pool, nil
	}

	ch := m.group.DoChan(poolKey, func() (any, error) {
		return m.open(context.WithoutCancel(ctx))
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(Pool), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (m *Manager) open(ctx context.Context) (Pool, error) {
	m.mu.Lock()
	if m.pool != nil {
		pool := m.pool
		m.mu.Unlock()
		return pool, nil
	}
	m.state = StateConnecting
	m.mu.Unlock()

	pool, err := m.dial(ctx)

	m.mu.Lock()
	defer m.mu.Unlock()
	if err != nil {
		m.state = StateUnset
		return nil, err
	}
	m.pool = pool
	m.state = StateConnected
	return pool, nil
}

func (m *Manager) dial(ctx context.Context) (Pool, error) {
	cfg := m.cfg
	if cfg == nil {
		loaded, err := LoadConfig()
		if err != nil {
			m.log().Error("database configuration invalid", zap.Error(err))
			return nil, err
		}
		cfg = loaded
	} else if err := cfg.Validate(); err != nil {
		m.log().Error("database configuration invalid", zap.Error(err))
		return nil, err
	}

	m.log().Info("creating database pool",
		zap.String("server", cfg.Server),
		zap.String("database", cfg.Database),
		zap.Int32("pool_max", cfg.Pool.Max),
		zap.Int32("pool_min", cfg.Pool.Min),
		zap.Duration("idle_timeout", cfg.Pool.IdleTimeout),
	)

	if cfg.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.ConnectTimeout)
		defer cancel()
	}

	pool, err := m.connect(ctx, cfg)
	if err != nil {
		var cfgErr *ConfigError
		if errors.As(err, &cfgErr) {
			return nil, err
		}
		m.log().Error("database connection failed", zap.String("server", cfg.Server), zap.Error(err))
		return nil, &ConnectError{Server: cfg.Server, Err: err}
	}

	m.log().Info("database pool connected", zap.String("database", cfg.Database))
	return pool, nil
}

// Connect builds a pgx pool and verifies it with a ping.
func Connect(ctx context.Context, cfg *Config) (Pool, error) {
	pcfg, err := pgxpool.ParseConfig(cfg.ConnString())
	if err != nil {
		return nil, &ConfigError{Field: "connection string", Err: err}
	}

	pcfg.MaxConns = cfg.Pool.Max
	pcfg.MinConns = cfg.Pool.Min
	if cfg.Pool.IdleTimeout > 0 {
		pcfg.MaxConnIdleTime = cfg.Pool.IdleTimeout
	}
	if cfg.TimeZone != "" {
		pcfg.ConnConfig.RuntimeParams["timezone"] = cfg.TimeZone
	}

	pool, err := pgxpool.NewWithConfig(ctx, pcfg)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return pool, nil
}

// Close drains the pool and forgets it. Calling Close without a pool is a no-op.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.pool == nil {
		return
	}

	m.state = StateClosing
	m.pool.Close()
	m.pool = nil
	m.state = StateUnset
	m.log().Info("database pool closed")
}

func (m *Manager) Ping(ctx context.Context) error {
	pool, err := m.Acquire(ctx)
	if err != nil {
		return err
	}
	return pool.Ping(ctx)
}

// Query runs sql with params bound by name and hands every row to scan.
// The statement text is sent to the driver unchanged.
func (m *Manager) Query(ctx context.Context, sql string, params Params, scan RowScanner) error {
	pool, err := m.Acquire(ctx)
	if err != nil {
		return err
	}

	rows, err := pool.Query(ctx, sql, params.args()...)
	if err != nil {
		return m.fail(sql, params, err)
	}
	defer rows.Close()

	for rows.Next() {
		if err := scan(rows); err != nil {
			return m.fail(sql, params, err)
		}
	}
	if err := rows.Err(); err != nil {
		return m.fail(sql, params, err)
	}

	return nil
}

// QueryRow scans a single row into dest. pgx.ErrNoRows is returned as is.
func (m *Manager) QueryRow(ctx context.Context, sql string, params Params, dest ...any) error {
	pool, err := m.Acquire(ctx)
	if err != nil {
		return err
	}

	if err := pool.QueryRow(ctx, sql, params.args()...).Scan(dest...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return pgx.ErrNoRows
		}
		return m.fail(sql, params, err)
	}
	return nil
}

// Exec runs a statement that returns no rows and reports rows affected.
func (m *Manager) Exec(ctx context.Context, sql string, params Params) (int64, error) {
	pool, err := m.Acquire(ctx)
	if err != nil {
		return 0, err
	}

	tag, err := pool.Exec(ctx, sql, params.args()...)
	if err != nil {
		return 0, m.fail(sql, params, err)
	}
	return tag.RowsAffected(), nil
}

func (m *Manager) fail(sql string, params Params, err error) error {
	keys := params.Keys()
	m.log().Error("database query failed",
		zap.String("query", sql),
		zap.Strings("params", keys),
		zap.Error(err),
	)
	return &QueryError{Query: sql, Params: keys, Err: err}
}
