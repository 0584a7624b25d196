package sync

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"dbjson/internal/db"
	"dbjson/internal/errs"
)

// fakeDB is a minimal in-memory stand-in for db.DB, understanding exactly
// the SQL shapes internal/dataset's fetcher and internal/sqlgen's emitter
// produce: SELECT ... FROM "t" [ORDER BY "c" ASC, ...], INSERT INTO "t"
// (...) VALUES (...), UPDATE "t" SET ... WHERE ..., DELETE FROM "t" WHERE
// .... It exists purely to exercise internal/sync's orchestration logic
// without a live Postgres connection — a "mocked test double" in the
// design's own sense.
type fakeDB struct {
	tables map[string][]map[string]any
}

func newFakeDB() *fakeDB {
	return &fakeDB{tables: make(map[string][]map[string]any)}
}

func (f *fakeDB) seed(table string, rows ...map[string]any) {
	f.tables[table] = append(f.tables[table], rows...)
}

func (f *fakeDB) Ping(ctx context.Context) error { return nil }
func (f *fakeDB) Close()                         {}

var (
	reSelect = regexp.MustCompile(`(?is)^SELECT\s+(.+?)\s+FROM\s+"([^"]+)"(?:\s+WHERE\s+(.+?))?(?:\s+ORDER BY\s+(.+))?$`)
	reInsert = regexp.MustCompile(`(?is)^INSERT INTO\s+"([^"]+)"\s+\((.+?)\)\s+VALUES\s+\((.+?)\)$`)
	reUpdate = regexp.MustCompile(`(?is)^UPDATE\s+"([^"]+)"\s+SET\s+(.+?)\s+WHERE\s+(.+)$`)
	reDelete = regexp.MustCompile(`(?is)^DELETE FROM\s+"([^"]+)"\s+WHERE\s+(.+)$`)
)

func (f *fakeDB) Query(ctx context.Context, sqlText string, args ...any) (db.Rows, error) {
	m := reSelect.FindStringSubmatch(sqlText)
	if m == nil {
		return nil, fmt.Errorf("fakeDB: unsupported query: %s", sqlText)
	}
	colsPart, table, whereClause := m[1], m[2], m[3]

	var cols []string
	if strings.TrimSpace(colsPart) == "*" {
		for c := range firstOrEmpty(f.tables[table]) {
			cols = append(cols, c)
		}
		sort.Strings(cols)
	} else {
		for _, c := range strings.Split(colsPart, ",") {
			cols = append(cols, strings.Trim(strings.TrimSpace(c), `"`))
		}
	}

	rows := append([]map[string]any(nil), f.tables[table]...)
	if whereClause != "" {
		whereCols := placeholderCols(whereClause)
		filtered := make([]map[string]any, 0, len(rows))
		for _, r := range rows {
			if matchesWhere(r, whereCols, args) {
				filtered = append(filtered, r)
			}
		}
		rows = filtered
	}
	if m[4] != "" {
		orderCols := parseOrderBy(m[4])
		sort.SliceStable(rows, func(i, j int) bool {
			for _, oc := range orderCols {
				vi, vj := fmt.Sprint(rows[i][oc]), fmt.Sprint(rows[j][oc])
				if vi != vj {
					return vi < vj
				}
			}
			return false
		})
	}

	data := make([][]any, len(rows))
	for i, r := range rows {
		data[i] = make([]any, len(cols))
		for j, c := range cols {
			data[i][j] = r[c]
		}
	}
	return &fakeRows{columns: cols, data: data}, nil
}

func firstOrEmpty(rows []map[string]any) map[string]any {
	if len(rows) == 0 {
		return map[string]any{}
	}
	return rows[0]
}

func parseOrderBy(clause string) []string {
	var cols []string
	for _, part := range strings.Split(clause, ",") {
		part = strings.TrimSpace(part)
		part = strings.TrimSuffix(strings.TrimSuffix(part, " ASC"), " DESC")
		cols = append(cols, strings.Trim(part, `"`))
	}
	return cols
}

func (f *fakeDB) QueryRow(ctx context.Context, sqlText string, args ...any) db.Row {
	panic("fakeDB: QueryRow not used by internal/sync")
}

func (f *fakeDB) Exec(ctx context.Context, sqlText string, args ...any) (int64, error) {
	switch {
	case reInsert.MatchString(sqlText):
		m := reInsert.FindStringSubmatch(sqlText)
		table := m[1]
		cols := splitIdents(m[2])
		row := map[string]any{}
		for i, c := range cols {
			row[c] = args[i]
		}
		f.tables[table] = append(f.tables[table], row)
		return 1, nil

	case reUpdate.MatchString(sqlText):
		m := reUpdate.FindStringSubmatch(sqlText)
		table, setClause, whereClause := m[1], m[2], m[3]
		setCols := placeholderCols(setClause)
		whereCols := placeholderCols(whereClause)

		setArgs := args[:len(setCols)]
		whereArgs := args[len(setCols):]

		for _, row := range f.tables[table] {
			if matchesWhere(row, whereCols, whereArgs) {
				for i, c := range setCols {
					row[c] = setArgs[i]
				}
			}
		}
		return 1, nil

	case reDelete.MatchString(sqlText):
		m := reDelete.FindStringSubmatch(sqlText)
		table, whereClause := m[1], m[2]
		whereCols := placeholderCols(whereClause)

		kept := make([]map[string]any, 0, len(f.tables[table]))
		for _, row := range f.tables[table] {
			if !matchesWhere(row, whereCols, args) {
				kept = append(kept, row)
			}
		}
		f.tables[table] = kept
		return 1, nil

	default:
		return 0, fmt.Errorf("fakeDB: unsupported exec: %s", sqlText)
	}
}

func matchesWhere(row map[string]any, cols []string, args []any) bool {
	for i, c := range cols {
		if fmt.Sprint(row[c]) != fmt.Sprint(args[i]) {
			return false
		}
	}
	return true
}

// placeholderCols extracts column names from a "col1" = $1, "col2" = $2 ...
// clause, in positional order.
func placeholderCols(clause string) []string {
	re := regexp.MustCompile(`"([^"]+)"\s*=\s*\$(\d+)`)
	matches := re.FindAllStringSubmatch(clause, -1)
	sort.Slice(matches, func(i, j int) bool {
		ni, _ := strconv.Atoi(matches[i][2])
		nj, _ := strconv.Atoi(matches[j][2])
		return ni < nj
	})
	cols := make([]string, len(matches))
	for i, m := range matches {
		cols[i] = m[1]
	}
	return cols
}

func splitIdents(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		out = append(out, strings.Trim(strings.TrimSpace(p), `"`))
	}
	return out
}

func (f *fakeDB) Begin(ctx context.Context) (db.Tx, error) {
	return &fakeTx{db: f}, nil
}

// fakeTx applies statements directly against the shared fakeDB — adequate
// for exercising apply()'s ordering and SQL text, not for testing
// rollback-on-partial-failure, which the live postgres driver covers.
type fakeTx struct {
	db *fakeDB
}

func (t *fakeTx) Query(ctx context.Context, sqlText string, args ...any) (db.Rows, error) {
	return t.db.Query(ctx, sqlText, args...)
}
func (t *fakeTx) QueryRow(ctx context.Context, sqlText string, args ...any) db.Row {
	return t.db.QueryRow(ctx, sqlText, args...)
}
func (t *fakeTx) Exec(ctx context.Context, sqlText string, args ...any) (int64, error) {
	return t.db.Exec(ctx, sqlText, args...)
}
func (t *fakeTx) Commit(ctx context.Context) error   { return nil }
func (t *fakeTx) Rollback(ctx context.Context) error { return nil }

var _ db.DB = (*fakeDB)(nil)
var _ db.Tx = (*fakeTx)(nil)
var _ db.Rows = (*fakeRows)(nil)

type fakeRows struct {
	columns []string
	data    [][]any
	idx     int
}

func (r *fakeRows) Next() bool {
	if r.idx >= len(r.data) {
		return false
	}
	r.idx++
	return true
}

func (r *fakeRows) Scan(dest ...any) error {
	row := r.data[r.idx-1]
	for i, v := range row {
		ptr, ok := dest[i].(*any)
		if !ok {
			return errs.New(errs.KindDriverError, "fakeRows.Scan: dest must be *any")
		}
		*ptr = v
	}
	return nil
}

func (r *fakeRows) Columns() ([]string, error) { return r.columns, nil }
func (r *fakeRows) Err() error                 { return nil }
func (r *fakeRows) Close()                     {}
