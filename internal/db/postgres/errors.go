package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"dbjson/internal/errs"
)

// mapError translates pgx / pgconn native errors into *errs.Error, always
// under errs.KindDriverError — the kind taxonomy distinguishes dbjson-level
// failures, not driver-level ones; callers that need the native pgconn
// error can still errors.As through the Cause chain.
func mapError(err error, msg string) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return errs.Wrap(errs.KindDriverError, msg+": context deadline exceeded", err)
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return errs.Wrap(errs.KindDriverError, msg+": no rows", err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return errs.Wrap(errs.KindDriverError, fmt.Sprintf("%s: %s", msg, pgErr.Message), err)
	}

	return errs.Wrap(errs.KindDriverError, msg, err)
}
