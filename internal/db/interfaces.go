package db

import "context"

// DB is the driver-agnostic contract the schema extractor, fetcher, and
// sync orchestrator depend on. internal/db/postgres is the one
// implementation; tests substitute a hand-rolled fake over the same
// interface.
type DB interface {
	Ping(ctx context.Context) error
	Close()
	Query(ctx context.Context, sql string, args ...any) (Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) Row
	Exec(ctx context.Context, sql string, args ...any) (int64, error)
	Begin(ctx context.Context) (Tx, error)
}

// Tx is a single database transaction. The sync orchestrator opens one Tx
// per apply operation and commits or rolls back as a unit.
type Tx interface {
	Query(ctx context.Context, sql string, args ...any) (Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) Row
	Exec(ctx context.Context, sql string, args ...any) (int64, error)
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// Rows is a driver-agnostic result cursor.
type Rows interface {
	Next() bool
	Scan(dest ...any) error
	Columns() ([]string, error)
	Err() error
	Close()
}

// Row is a driver-agnostic single-row result.
type Row interface {
	Scan(dest ...any) error
}
