package diff

import (
	"sort"

	"dbjson/internal/dataset"
	"dbjson/internal/schema"
)

// Diff computes the minimum change set between base and modified, keyed by
// primary key. Tables the schema has no primary key for are skipped
// entirely — there is nothing to key a diff on.
func Diff(s *schema.Schema, base, modified *dataset.FlatDataset) ChangeSet {
	var changes ChangeSet

	for name, tbl := range s.Tables {
		if !tbl.HasPrimaryKey() {
			continue
		}

		baseIndex := indexByPK(base.Rows(name), tbl.PrimaryKey)
		modIndex := indexByPK(modified.Rows(name), tbl.PrimaryKey)

		for key, modRow := range modIndex {
			baseRow, existed := baseIndex[key]
			if !existed {
				changes = append(changes, &Change{Kind: Insert, Table: name, Row: copyRow(modRow)})
				continue
			}

			oldVals, newVals, changedCols := diffColumns(tbl, baseRow, modRow)
			if len(oldVals) > 0 {
				changes = append(changes, &Change{
					Kind:           Update,
					Table:          name,
					PrimaryKey:     pkValues(tbl, modRow),
					OldValues:      oldVals,
					NewValues:      newVals,
					ChangedColumns: changedCols,
				})
			}
		}

		for key, baseRow := range baseIndex {
			if _, stillPresent := modIndex[key]; !stillPresent {
				changes = append(changes, &Change{
					Kind:       Delete,
					Table:      name,
					PrimaryKey: pkValues(tbl, baseRow),
					OldRow:     copyRow(baseRow),
				})
			}
		}
	}

	return changes
}

func indexByPK(rows []dataset.FlatRow, pk []string) map[string]dataset.FlatRow {
	idx := make(map[string]dataset.FlatRow, len(rows))
	for _, row := range rows {
		idx[dataset.RowKey(row, pk)] = row
	}
	return idx
}

func pkValues(tbl *schema.Table, row dataset.FlatRow) map[string]any {
	pk := make(map[string]any, len(tbl.PrimaryKey))
	for _, c := range tbl.PrimaryKey {
		pk[c] = row[c]
	}
	return pk
}

// diffColumns compares every non-PK column appearing in either row, walking
// tbl.Columns in its declared ordinal order so the changed-column list (and
// the SQL internal/sqlgen later renders from it) comes out in schema order
// rather than in the arbitrary order Go map iteration would give base/
// modified. PK columns are never reported as changed. Columns present in
// either row but absent from the schema (shouldn't happen in practice) are
// appended afterward, sorted, so they're still reported rather than dropped.
func diffColumns(tbl *schema.Table, base, modified dataset.FlatRow) (oldVals, newVals map[string]any, changedCols []string) {
	isPK := make(map[string]bool, len(tbl.PrimaryKey))
	for _, c := range tbl.PrimaryKey {
		isPK[c] = true
	}

	oldVals = map[string]any{}
	newVals = map[string]any{}

	known := make(map[string]bool, len(tbl.Columns))
	for _, col := range tbl.Columns {
		known[col.Name] = true
	}

	var extra []string
	seen := make(map[string]bool)
	for col := range base {
		if !known[col] && !seen[col] {
			extra = append(extra, col)
			seen[col] = true
		}
	}
	for col := range modified {
		if !known[col] && !seen[col] {
			extra = append(extra, col)
			seen[col] = true
		}
	}
	sort.Strings(extra)

	names := make([]string, 0, len(tbl.Columns)+len(extra))
	for _, col := range tbl.Columns {
		names = append(names, col.Name)
	}
	names = append(names, extra...)

	for _, col := range names {
		if isPK[col] {
			continue
		}
		bv, mv := base[col], modified[col]
		if !equalValues(bv, mv) {
			oldVals[col] = bv
			newVals[col] = mv
			changedCols = append(changedCols, col)
		}
	}

	if len(oldVals) == 0 {
		return nil, nil, nil
	}
	return oldVals, newVals, changedCols
}

func copyRow(row dataset.FlatRow) map[string]any {
	out := make(map[string]any, len(row))
	for k, v := range row {
		out[k] = v
	}
	return out
}
