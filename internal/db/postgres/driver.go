package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"dbjson/internal/db"
)

// Driver is the PostgreSQL implementation of db.DB, backed by pgxpool.
// It is safe for concurrent use by multiple goroutines.
type Driver struct {
	pool *pgxpool.Pool
}

// New connects to PostgreSQL using cfg and returns a Driver, pinging once
// before returning so callers never hold a Driver over a dead pool.
func New(ctx context.Context, cfg *db.Config) (*Driver, error) {
	pool, err := buildPool(ctx, cfg)
	if err != nil {
		return nil, mapError(err, "create connection pool")
	}

	d := &Driver{pool: pool}
	if err := d.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return d, nil
}

// Ping verifies the database is reachable by acquiring and releasing a connection.
func (d *Driver) Ping(ctx context.Context) error {
	return mapError(d.pool.Ping(ctx), "ping")
}

// Close drains the connection pool. Call when the application shuts down.
func (d *Driver) Close() {
	d.pool.Close()
}

// Query executes a SQL statement that returns multiple rows.
func (d *Driver) Query(ctx context.Context, sql string, args ...any) (db.Rows, error) {
	rows, err := d.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, mapError(err, "query")
	}
	return &pgxRows{rows: rows}, nil
}

// QueryRow executes a SQL statement expected to return at most one row.
func (d *Driver) QueryRow(ctx context.Context, sql string, args ...any) db.Row {
	return &pgxRow{row: d.pool.QueryRow(ctx, sql, args...)}
}

// Exec executes a statement and returns the number of rows affected.
func (d *Driver) Exec(ctx context.Context, sql string, args ...any) (int64, error) {
	tag, err := d.pool.Exec(ctx, sql, args...)
	if err != nil {
		return 0, mapError(err, "exec")
	}
	return tag.RowsAffected(), nil
}

// Begin starts a transaction. The sync orchestrator wraps an entire ordered
// statement sequence in one Tx.
func (d *Driver) Begin(ctx context.Context) (db.Tx, error) {
	tx, err := d.pool.Begin(ctx)
	if err != nil {
		return nil, mapError(err, "begin transaction")
	}
	return &pgTx{tx: tx}, nil
}

// --- pgx wrapper types satisfying db.Rows / db.Row / db.Tx ---

type pgxRows struct{ rows pgx.Rows }

func (r *pgxRows) Next() bool             { return r.rows.Next() }
func (r *pgxRows) Scan(dest ...any) error { return mapError(r.rows.Scan(dest...), "scan") }
func (r *pgxRows) Close()                 { r.rows.Close() }
func (r *pgxRows) Err() error             { return mapError(r.rows.Err(), "row iteration") }

func (r *pgxRows) Columns() ([]string, error) {
	descs := r.rows.FieldDescriptions()
	cols := make([]string, len(descs))
	for i, fd := range descs {
		cols[i] = fd.Name
	}
	return cols, nil
}

type pgxRow struct{ row pgx.Row }

func (r *pgxRow) Scan(dest ...any) error { return mapError(r.row.Scan(dest...), "scan row") }

type pgTx struct{ tx pgx.Tx }

func (t *pgTx) Query(ctx context.Context, sql string, args ...any) (db.Rows, error) {
	rows, err := t.tx.Query(ctx, sql, args...)
	if err != nil {
		return nil, mapError(err, "query")
	}
	return &pgxRows{rows: rows}, nil
}

func (t *pgTx) QueryRow(ctx context.Context, sql string, args ...any) db.Row {
	return &pgxRow{row: t.tx.QueryRow(ctx, sql, args...)}
}

func (t *pgTx) Exec(ctx context.Context, sql string, args ...any) (int64, error) {
	tag, err := t.tx.Exec(ctx, sql, args...)
	if err != nil {
		return 0, mapError(err, "exec")
	}
	return tag.RowsAffected(), nil
}

func (t *pgTx) Commit(ctx context.Context) error   { return mapError(t.tx.Commit(ctx), "commit") }
func (t *pgTx) Rollback(ctx context.Context) error { return mapError(t.tx.Rollback(ctx), "rollback") }
