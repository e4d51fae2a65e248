package postgres

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/rs/zerolog"

	"drive-search-bot/internal/domain"
	"drive-search-bot/internal/infra/metrics"
)

const connectTimeout = 10 * time.Second

// NewPgxPool opens and pings a pool. Failures wrap domain.ErrConnection.
func NewPgxPool(ctx context.Context, dsn string, maxConns int32) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: parse dsn: %v", domain.ErrConnection, err)
	}
	if maxConns > 0 {
		cfg.MaxConns = maxConns
	}
	cctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	pool, err := pgxpool.ConnectConfig(cctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrConnection, err)
	}
	if err := pool.Ping(cctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%w: ping: %v", domain.ErrConnection, err)
	}
	return pool, nil
}

// DB owns the pool and replaces it when the server drops connections.
type DB struct {
	mu       sync.RWMutex
	pool     *pgxpool.Pool
	dsn      string
	maxConns int32
	log      *zerolog.Logger
}

func Connect(ctx context.Context, dsn string, maxConns int32, logger *zerolog.Logger) (*DB, error) {
	pool, err := NewPgxPool(ctx, dsn, maxConns)
	if err != nil {
		return nil, err
	}
	l := logger.With().Str("component", "postgres").Logger()
	return &DB{pool: pool, dsn: dsn, maxConns: maxConns, log: &l}, nil
}

func (d *DB) Pool() *pgxpool.Pool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.pool
}

func (d *DB) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.pool != nil {
		d.pool.Close()
		d.pool = nil
	}
}

// run executes fn against the current pool. When fn fails because the
// connection went away, the pool is reopened and fn is retried once.
func (d *DB) run(ctx context.Context, fn func(pool *pgxpool.Pool) error) error {
	pool := d.Pool()
	if pool == nil {
		return fmt.Errorf("%w: pool closed", domain.ErrConnection)
	}
	defer d.ReportPoolStats()
	err := fn(pool)
	if !isConnError(err) {
		return err
	}
	d.log.Warn().Err(err).Msg("connection lost, reopening pool")
	if err := d.reopen(ctx, pool); err != nil {
		return err
	}
	return fn(d.Pool())
}

func (d *DB) reopen(ctx context.Context, stale *pgxpool.Pool) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.pool != stale {
		// another task already swapped it
		return nil
	}
	pool, err := NewPgxPool(ctx, d.dsn, d.maxConns)
	metrics.IncReconnect(err)
	if err != nil {
		d.log.Error().Err(err).Msg("reopen failed")
		return err
	}
	d.pool = pool
	// Close blocks until borrowed connections are returned.
	go stale.Close()
	return nil
}

// ReportPoolStats publishes pool gauges.
func (d *DB) ReportPoolStats() {
	pool := d.Pool()
	if pool == nil {
		return
	}
	s := pool.Stat()
	metrics.SetDBPoolStats(s.TotalConns(), s.IdleConns(), s.AcquiredConns())
}

func isConnError(err error) bool {
	if err == nil || errors.Is(err, pgx.ErrNoRows) ||
		errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// class 08 connection exception, 57P0x shutdown
		return strings.HasPrefix(pgErr.Code, "08") || strings.HasPrefix(pgErr.Code, "57P0")
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, syscall.ECONNRESET) || errors.Is(err, syscall.EPIPE) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "closed pool") || strings.Contains(msg, "conn closed")
}
