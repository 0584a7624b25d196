package dataset

import (
	"encoding/json"
	"strings"
)

// canonicalValue renders a scalar or structured value as a stable string
// for use in a composite lookup key. JSON encoding already canonicalizes
// numbers and escaping, and encoding/json sorts map keys; key comparisons
// below only rely on this for the PK domain (scalars), never for
// JSON-column structural equality (that's handled explicitly by
// internal/diff).
func canonicalValue(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}

// valueKey joins a sequence of column values into one composite key,
// using a separator (ASCII unit separator) that cannot appear inside a
// JSON-encoded scalar.
func valueKey(vals []any) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = canonicalValue(v)
	}
	return strings.Join(parts, "\x1f")
}

// RowKey computes the composite key for row over the given columns —
// typically a table's primary key. Two rows with equal RowKey are the same
// logical row.
func RowKey(row FlatRow, columns []string) string {
	vals := make([]any, len(columns))
	for i, c := range columns {
		vals[i] = row[c]
	}
	return valueKey(vals)
}

// valuesFor extracts row's values at columns, in order.
func valuesFor(row FlatRow, columns []string) []any {
	vals := make([]any, len(columns))
	for i, c := range columns {
		vals[i] = row[c]
	}
	return vals
}
