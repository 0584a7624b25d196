package sync

import (
	"context"

	"dbjson/internal/diff"
	"dbjson/internal/errs"
	"dbjson/internal/sqlgen"
)

// apply orders changes, renders them to SQL, and executes them inside one
// transaction: BEGIN, every statement in order, ROLLBACK on any driver
// error (rethrown), otherwise COMMIT. No
// statement ever executes outside a transaction.
func (o *Orchestrator) apply(ctx context.Context, changes diff.ChangeSet) error {
	if len(changes) == 0 {
		return nil
	}

	ordered := sqlgen.Order(o.Schema, changes)
	stmts, err := sqlgen.Emit(o.Schema, ordered)
	if err != nil {
		return err
	}

	tx, err := o.Conn.Begin(ctx)
	if err != nil {
		return err
	}

	for _, stmt := range stmts {
		if _, err := tx.Exec(ctx, stmt.SQL, stmt.Params...); err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil && o.Log != nil {
				o.Log.Errorf("rollback after apply failure also failed: %v", rbErr)
			}
			return errs.Wrap(errs.KindDriverError, "apply change set", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}
	return nil
}
