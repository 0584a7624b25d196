package sqlgen

import (
	"fmt"
	"sort"
	"strings"

	"dbjson/internal/db"
	"dbjson/internal/diff"
	"dbjson/internal/errs"
	"dbjson/internal/schema"
)

// Statement is one rendered SQL statement with its positional parameters,
// ready to pass to db.DB.Exec / db.Tx.Exec.
type Statement struct {
	SQL    string
	Params []any
}

// Emit renders an already-ordered ChangeSet to a sequence of Statements,
// preserving order. Identifiers are quoted via db.QuoteIdent, the sole
// escaping mechanism for table/column names; values are never interpolated.
func Emit(s *schema.Schema, changes diff.ChangeSet) ([]Statement, error) {
	stmts := make([]Statement, 0, len(changes))
	for _, c := range changes {
		tbl := s.Table(c.Table)
		if tbl == nil {
			return nil, errs.Newf(errs.KindUnknownTable, "sqlgen: no such table %q", c.Table)
		}

		var stmt Statement
		var err error
		switch c.Kind {
		case diff.Insert:
			stmt, err = emitInsert(tbl, c)
		case diff.Update:
			stmt, err = emitUpdate(tbl, c)
		case diff.Delete:
			stmt, err = emitDelete(tbl, c)
		default:
			err = errs.Newf(errs.KindParseError, "sqlgen: unknown change kind %v", c.Kind)
		}
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}
	return stmts, nil
}

// emitInsert renders INSERT INTO ⟨T⟩ (⟨cols⟩) VALUES (⟨placeholders⟩).
// Columns absent from the row are omitted entirely, letting the server
// supply defaults — column order is sorted for determinism since Change.Row
// is a map.
func emitInsert(tbl *schema.Table, c *diff.Change) (Statement, error) {
	cols := sortedKeys(c.Row)
	placeholders := make([]string, len(cols))
	args := make([]any, len(cols))
	for i, col := range cols {
		placeholders[i] = db.Placeholder(i + 1)
		args[i] = c.Row[col]
	}

	quoted := make([]string, len(cols))
	for i, col := range cols {
		quoted[i] = db.QuoteIdent(col)
	}

	sql := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		db.QuoteIdent(tbl.Name), strings.Join(quoted, ", "), strings.Join(placeholders, ", "))
	return Statement{SQL: sql, Params: args}, nil
}

// emitUpdate renders UPDATE ⟨T⟩ SET ⟨col⟩ = ⟨ph⟩, … WHERE ⟨pk⟩ = ⟨ph⟩ AND …
// SET parameters precede WHERE parameters. SET columns follow
// c.ChangedColumns — the order diff.Diff found them changed in, itself the
// table's declared column order — rather than being re-sorted here, so SQL
// text reflects the order the columns actually changed in.
func emitUpdate(tbl *schema.Table, c *diff.Change) (Statement, error) {
	if len(tbl.PrimaryKey) == 0 {
		return Statement{}, errs.Newf(errs.KindUnknownTable, "sqlgen: table %q has no primary key, cannot update", tbl.Name)
	}

	setCols := c.ChangedColumns
	if setCols == nil {
		setCols = sortedKeys(c.NewValues)
	}
	var args []any
	idx := 1

	setParts := make([]string, len(setCols))
	for i, col := range setCols {
		setParts[i] = fmt.Sprintf("%s = %s", db.QuoteIdent(col), db.Placeholder(idx))
		args = append(args, c.NewValues[col])
		idx++
	}

	whereParts := make([]string, len(tbl.PrimaryKey))
	for i, col := range tbl.PrimaryKey {
		whereParts[i] = fmt.Sprintf("%s = %s", db.QuoteIdent(col), db.Placeholder(idx))
		args = append(args, c.PrimaryKey[col])
		idx++
	}

	sql := fmt.Sprintf("UPDATE %s SET %s WHERE %s",
		db.QuoteIdent(tbl.Name), strings.Join(setParts, ", "), strings.Join(whereParts, " AND "))
	return Statement{SQL: sql, Params: args}, nil
}

// emitDelete renders DELETE FROM ⟨T⟩ WHERE ⟨pk⟩ = ⟨ph⟩ AND …
func emitDelete(tbl *schema.Table, c *diff.Change) (Statement, error) {
	if len(tbl.PrimaryKey) == 0 {
		return Statement{}, errs.Newf(errs.KindUnknownTable, "sqlgen: table %q has no primary key, cannot delete", tbl.Name)
	}

	var args []any
	whereParts := make([]string, len(tbl.PrimaryKey))
	for i, col := range tbl.PrimaryKey {
		whereParts[i] = fmt.Sprintf("%s = %s", db.QuoteIdent(col), db.Placeholder(i+1))
		args = append(args, c.PrimaryKey[col])
	}

	sql := fmt.Sprintf("DELETE FROM %s WHERE %s", db.QuoteIdent(tbl.Name), strings.Join(whereParts, " AND "))
	return Statement{SQL: sql, Params: args}, nil
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
