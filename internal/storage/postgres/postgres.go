// Package postgres implements the disclosure and issuance stores on PostgreSQL.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Pool wraps pgxpool.Pool for dependency injection.
type Pool struct {
	*pgxpool.Pool
}

// QueryObserver receives the duration and outcome of every statement.
type QueryObserver interface {
	RecordDBQuery(database, operation string, elapsed time.Duration, err error)
}

// PoolOption configures NewPool.
type PoolOption func(*pgxpool.Config)

// WithMaxConns caps the pool size. Zero keeps the pgx default.
func WithMaxConns(n int32) PoolOption {
	return func(c *pgxpool.Config) {
		if n > 0 {
			c.MaxConns = n
		}
	}
}

// WithQueryObserver traces every statement into o.
func WithQueryObserver(o QueryObserver) PoolOption {
	return func(c *pgxpool.Config) {
		c.ConnConfig.Tracer = &queryTracer{observer: o}
	}
}

// NewPool connects to dsn and verifies the connection.
func NewPool(ctx context.Context, dsn string, opts ...PoolOption) (*Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	for _, opt := range opts {
		opt(cfg)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &Pool{Pool: pool}, nil
}

type traceStartKey struct{}

type traceStart struct {
	op    string
	start time.Time
}

// queryTracer implements pgx.QueryTracer.
type queryTracer struct {
	observer QueryObserver
}

func (t *queryTracer) TraceQueryStart(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryStartData) context.Context {
	return context.WithValue(ctx, traceStartKey{}, traceStart{op: operation(data.SQL), start: time.Now()})
}

func (t *queryTracer) TraceQueryEnd(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryEndData) {
	s, ok := ctx.Value(traceStartKey{}).(traceStart)
	if !ok {
		return
	}
	err := data.Err
	if errors.Is(err, pgx.ErrNoRows) {
		err = nil
	}
	t.observer.RecordDBQuery("postgres", s.op, time.Since(s.start), err)
}

// operation returns the lowercased leading keyword of a statement.
func operation(sql string) string {
	fields := strings.Fields(sql)
	if len(fields) == 0 {
		return "unknown"
	}
	return strings.ToLower(fields[0])
}

const pgErrUniqueViolation = "23505"

func isDuplicateKeyError(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgErrUniqueViolation
}

func isNotFoundError(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
