package db

import (
	"fmt"
	"strings"

	"dbjson/internal/errs"
)

// validOps is the allowlist of comparison operators for WHERE clauses.
// Any operator not in this list is rejected to prevent SQL injection
// through the operator position (which cannot be parameterized).
var validOps = map[string]bool{
	"=":     true,
	"!=":    true,
	"<>":    true,
	"<":     true,
	">":     true,
	"<=":    true,
	">=":    true,
	"LIKE":  true,
	"ILIKE": true,
}

// SelectBuilder constructs a parameterized SELECT query against PostgreSQL
// using a fluent API. Values are never interpolated into the SQL string —
// always passed as args. The schema fetcher uses this to pull a
// table's rows into a FlatDataset.
//
// Usage:
//
//	sql, args, err := Select("users").
//	    Columns("id", "name", "email").
//	    Where("active", "=", true).
//	    OrderBy("created_at", Desc).
//	    Limit(20).
//	    Build()
type SelectBuilder struct {
	table   string
	columns []string
	where   []whereClause
	orderBy []orderClause
	limit   *int
	offset  *int
}

// SortDirection controls the ORDER BY direction.
type SortDirection bool

const (
	Asc  SortDirection = false
	Desc SortDirection = true
)

type whereClause struct {
	column string
	op     string
	value  any
}

type orderClause struct {
	column string
	dir    SortDirection
}

// Select starts a new SelectBuilder for the given table.
func Select(table string) *SelectBuilder {
	return &SelectBuilder{table: table}
}

// Columns restricts the SELECT to the specified columns.
// If not called, SELECT * is used.
func (b *SelectBuilder) Columns(cols ...string) *SelectBuilder {
	b.columns = cols
	return b
}

// Where adds a WHERE condition. op must be one of the allowed comparison
// operators (=, !=, <, >, <=, >=, LIKE, ILIKE).
// Multiple calls are combined with AND.
func (b *SelectBuilder) Where(column, op string, value any) *SelectBuilder {
	b.where = append(b.where, whereClause{column, op, value})
	return b
}

// OrderBy appends an ORDER BY clause for the given column and direction.
func (b *SelectBuilder) OrderBy(column string, dir SortDirection) *SelectBuilder {
	b.orderBy = append(b.orderBy, orderClause{column, dir})
	return b
}

// Limit sets the maximum number of rows to return.
func (b *SelectBuilder) Limit(n int) *SelectBuilder {
	b.limit = &n
	return b
}

// Offset sets the number of rows to skip (for pagination).
func (b *SelectBuilder) Offset(n int) *SelectBuilder {
	b.offset = &n
	return b
}

// Build produces the final SQL string and argument slice.
// Returns an error if any WHERE operator is not in the allowlist.
func (b *SelectBuilder) Build() (string, []any, error) {
	cols := "*"
	if len(b.columns) > 0 {
		quoted := make([]string, len(b.columns))
		for i, c := range b.columns {
			quoted[i] = QuoteIdent(c)
		}
		cols = strings.Join(quoted, ", ")
	}

	var sb strings.Builder
	sb.WriteString("SELECT ")
	sb.WriteString(cols)
	sb.WriteString(" FROM ")
	sb.WriteString(QuoteIdent(b.table))

	var args []any
	argIdx := 1

	if len(b.where) > 0 {
		parts := make([]string, 0, len(b.where))
		for _, w := range b.where {
			op := strings.ToUpper(w.op)
			if !validOps[op] {
				return "", nil, errs.Newf(errs.KindParseError, "unsupported WHERE operator: %q", w.op)
			}
			parts = append(parts, fmt.Sprintf("%s %s %s", QuoteIdent(w.column), op, Placeholder(argIdx)))
			args = append(args, w.value)
			argIdx++
		}
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(parts, " AND "))
	}

	if len(b.orderBy) > 0 {
		parts := make([]string, len(b.orderBy))
		for i, o := range b.orderBy {
			dir := "ASC"
			if o.dir == Desc {
				dir = "DESC"
			}
			parts[i] = fmt.Sprintf("%s %s", QuoteIdent(o.column), dir)
		}
		sb.WriteString(" ORDER BY ")
		sb.WriteString(strings.Join(parts, ", "))
	}

	if b.limit != nil {
		sb.WriteString(fmt.Sprintf(" LIMIT %s", Placeholder(argIdx)))
		args = append(args, *b.limit)
		argIdx++
	}

	if b.offset != nil {
		sb.WriteString(fmt.Sprintf(" OFFSET %s", Placeholder(argIdx)))
		args = append(args, *b.offset)
	}

	return sb.String(), args, nil
}

// Placeholder returns the Postgres positional parameter for argument
// position idx (1-based): $1, $2, … — shared by SelectBuilder and
// internal/sqlgen so both emit the same placeholder style.
func Placeholder(idx int) string {
	return fmt.Sprintf("$%d", idx)
}

// QuoteIdent wraps a SQL identifier in double quotes (ANSI standard),
// doubling any embedded quote. This safely handles reserved words and
// mixed-case names.
func QuoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
