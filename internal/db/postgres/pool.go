package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"dbjson/internal/db"
)

// buildPool parses cfg.DSN and applies pool tuning before the caller pings.
func buildPool(ctx context.Context, cfg *db.Config) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("invalid postgres DSN: %w", err)
	}

	poolCfg.MaxConns = withDefault(cfg.MaxConns, 10)
	poolCfg.MinConns = withDefault(cfg.MinConns, 1)
	poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	poolCfg.MaxConnIdleTime = cfg.MaxConnIdleTime
	poolCfg.ConnConfig.ConnectTimeout = cfg.ConnectTimeout

	return pgxpool.NewWithConfig(ctx, poolCfg)
}

func withDefault(val, def int32) int32 {
	if val == 0 {
		return def
	}
	return val
}
