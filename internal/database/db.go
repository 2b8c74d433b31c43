package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	zerologadapter "github.com/jackc/pgx-zerolog"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/tracelog"
	"github.com/rs/zerolog/log"
)

// Connect opens a PostgreSQL connection pool using pgx and verifies connectivity.
// Queries are traced to the global zerolog logger at traceLevel ("none"
// disables tracing).
func Connect(ctx context.Context, dsn, traceLevel string) (*pgxpool.Pool, error) {
	if dsn == "" {
		return nil, fmt.Errorf("database DSN must not be empty")
	}

	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse pgx config: %w", err)
	}

	// One run writes sequentially; a small pool is plenty.
	cfg.MaxConns = 4
	cfg.MaxConnLifetime = 1 * time.Hour
	cfg.MaxConnIdleTime = 15 * time.Minute
	cfg.HealthCheckPeriod = 30 * time.Second

	if tracer := newTracer(traceLevel); tracer != nil {
		cfg.ConnConfig.Tracer = tracer
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pgx pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return pool, nil
}

func newTracer(level string) *tracelog.TraceLog {
	if strings.EqualFold(level, "none") {
		return nil
	}
	lvl, err := tracelog.LogLevelFromString(strings.ToLower(level))
	if err != nil {
		lvl = tracelog.LogLevelWarn
	}
	return &tracelog.TraceLog{
		Logger:   zerologadapter.NewLogger(log.Logger),
		LogLevel: lvl,
	}
}
