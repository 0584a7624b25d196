package dataset

import (
	"context"
	"sort"

	"dbjson/internal/db"
	"dbjson/internal/errs"
	"dbjson/internal/schema"
)

// Fetch reads every table's full row set from the live database into a
// FlatDataset, ordered by primary key where the table has one. Tables without a primary key are fetched in whatever
// order the database returns — diff and SQL emission skip them regardless
//.
//
// Fetch always pulls the complete table — the sync orchestrator is
// responsible for truncating a dump's user-facing output (via Nest's
// NestOptions for nested layout); the base snapshot must always be a full,
// untruncated fetch, which is exactly what this function returns.
func Fetch(ctx context.Context, conn db.DB, s *schema.Schema) (*FlatDataset, error) {
	names := make([]string, 0, len(s.Tables))
	for name := range s.Tables {
		names = append(names, name)
	}
	sort.Strings(names)

	flat := NewFlatDataset(names)
	for _, name := range names {
		rows, err := fetchTable(ctx, conn, s.Table(name))
		if err != nil {
			return nil, errs.Wrap(errs.KindDriverError, "fetch table "+name, err)
		}
		flat.Tables[name] = rows
	}
	return flat, nil
}

func fetchTable(ctx context.Context, conn db.DB, tbl *schema.Table) ([]FlatRow, error) {
	colNames := make([]string, len(tbl.Columns))
	for i, c := range tbl.Columns {
		colNames[i] = c.Name
	}

	builder := db.Select(tbl.Name).Columns(colNames...)
	for _, pk := range tbl.PrimaryKey {
		builder = builder.OrderBy(pk, db.Asc)
	}

	sqlText, args, err := builder.Build()
	if err != nil {
		return nil, err
	}

	rows, err := conn.Query(ctx, sqlText, args...)
	if err != nil {
		return nil, err
	}

	maps, err := db.ScanRows(rows)
	if err != nil {
		return nil, err
	}

	flatRows := make([]FlatRow, len(maps))
	for i, m := range maps {
		flatRows[i] = FlatRow(m)
	}
	return flatRows, nil
}
