package sync

import (
	"context"

	"dbjson/internal/dataset"
	"dbjson/internal/db"
	"dbjson/internal/errs"
)

// checkUnresolvedRefs confirms every ref the flattener could not resolve
// within the same document points at a row in the live database. The
// flattener can't do this itself — it never touches the database — so it's
// the orchestrator's job before any change set derived from refs is applied.
// edited is not searched again: it holds each ref's own minimal row, which
// would always match.
func (o *Orchestrator) checkUnresolvedRefs(ctx context.Context, edited *dataset.FlatDataset, refs []dataset.UnresolvedRef) error {
	for _, ref := range refs {
		found, err := o.rowExistsInDB(ctx, ref)
		if err != nil {
			return err
		}
		if !found {
			return errs.Newf(errs.KindParseError, "unresolved reference: no row in table %q matches %v", ref.Table, ref.PrimaryKey)
		}
	}
	return nil
}

// rowExistsIn reports whether some row of edited in ref.Table matches
// ref.PrimaryKey on every key.
func rowExistsIn(edited *dataset.FlatDataset, ref dataset.UnresolvedRef) bool {
	for _, row := range edited.Rows(ref.Table) {
		if rowMatchesKey(row, ref.PrimaryKey) {
			return true
		}
	}
	return false
}

func rowMatchesKey(row dataset.FlatRow, key map[string]any) bool {
	for k, v := range key {
		rv, ok := row[k]
		if !ok || rv != v {
			return false
		}
	}
	return true
}

func (o *Orchestrator) rowExistsInDB(ctx context.Context, ref dataset.UnresolvedRef) (bool, error) {
	tbl := o.Schema.Table(ref.Table)
	if tbl == nil {
		return false, errs.Newf(errs.KindUnknownTable, "unknown table %q", ref.Table)
	}

	q := db.Select(ref.Table).Columns(tbl.PrimaryKey...)
	for k, v := range ref.PrimaryKey {
		q = q.Where(k, "=", v)
	}
	sql, args, err := q.Build()
	if err != nil {
		return false, err
	}

	rows, err := o.Conn.Query(ctx, sql, args...)
	if err != nil {
		return false, errs.Wrap(errs.KindDriverError, "check unresolved reference", err)
	}
	defer rows.Close()

	return rows.Next(), rows.Err()
}
