package minio

import (
	"dbjson/internal/errs"
)

// mapError translates a MinIO SDK error into a *errs.Error. Unlike the
// teacher's filestore driver, which distinguished not-found/timeout/
// permission kinds, this module's Kind taxonomy has a single
// driver-level bucket — archive failures surface to the orchestrator as
// KindDriverError, the same as a Postgres failure, since both mean "the
// backing store refused or could not complete the operation".
func mapError(err error, msg string) *errs.Error {
	if err == nil {
		return nil
	}
	return errs.Wrap(errs.KindDriverError, msg, err)
}
