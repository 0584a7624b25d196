// Package dataset holds the two row-set representations the rest of the
// system converts between — FlatDataset (one sequence per table) and
// NestedDataset (a tree keyed by the ownership tree) — plus the fetcher,
// nester, flattener, and JSON codec that produce and consume them.
package dataset

import (
	"encoding/json"
	"sort"

	"dbjson/internal/errs"
)

// FlatRow maps column name to scalar JSON value: nil, bool, float64/string
// number, string (covers uuid/text/date-time as ISO-8601), or a base64
// string standing in for opaque bytes.
type FlatRow map[string]any

// FlatDataset maps table name to an ordered sequence of rows, insertion
// order equal to extraction order (PK order, when fetched). No two rows in
// the same table's sequence may share a primary key.
type FlatDataset struct {
	Tables map[string][]FlatRow
}

// NewFlatDataset returns an empty dataset with every given table
// initialized to an empty sequence, so diff sees tables with zero rows on
// either side.
func NewFlatDataset(tableNames []string) *FlatDataset {
	d := &FlatDataset{Tables: make(map[string][]FlatRow, len(tableNames))}
	for _, name := range tableNames {
		d.Tables[name] = []FlatRow{}
	}
	return d
}

// Rows returns table's row sequence, or nil if the table is absent.
func (d *FlatDataset) Rows(table string) []FlatRow {
	return d.Tables[table]
}

// Append adds row to the end of table's sequence.
func (d *FlatDataset) Append(table string, row FlatRow) {
	d.Tables[table] = append(d.Tables[table], row)
}

// MarshalJSON flattens metadata keys and table keys into one JSON object.
func (d *FlatDataset) MarshalJSON() ([]byte, error) {
	return marshalFlatDocument("", "", d.Tables)
}

// MarshalDocument renders the dataset as a flat-layout document carrying
// the given $schema / $base metadata references (empty strings omit them).
func (d *FlatDataset) MarshalDocument(schemaRef, baseRef string) ([]byte, error) {
	return marshalFlatDocument(schemaRef, baseRef, d.Tables)
}

func marshalFlatDocument(schemaRef, baseRef string, tables map[string][]FlatRow) ([]byte, error) {
	out := make(map[string]any, len(tables)+2)
	if schemaRef != "" {
		out["$schema"] = schemaRef
	}
	if baseRef != "" {
		out["$base"] = baseRef
	}
	names := make([]string, 0, len(tables))
	for name := range tables {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		out[name] = tables[name]
	}
	return json.Marshal(out)
}

// UnmarshalFlatDocument parses a flat-layout document, returning the
// dataset plus the raw $schema / $base references found (empty if absent).
func UnmarshalFlatDocument(data []byte) (ds *FlatDataset, schemaRef, baseRef string, err error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, "", "", errs.Wrap(errs.KindParseError, "decode flat document", err)
	}

	ds = &FlatDataset{Tables: make(map[string][]FlatRow)}
	for key, val := range raw {
		switch key {
		case "$schema":
			if err := json.Unmarshal(val, &schemaRef); err != nil {
				return nil, "", "", errs.Wrap(errs.KindParseError, "decode $schema", err)
			}
		case "$base":
			if err := json.Unmarshal(val, &baseRef); err != nil {
				return nil, "", "", errs.Wrap(errs.KindParseError, "decode $base", err)
			}
		default:
			var rows []FlatRow
			if err := json.Unmarshal(val, &rows); err != nil {
				return nil, "", "", errs.Wrap(errs.KindParseError, "decode table "+key, err)
			}
			ds.Tables[key] = rows
		}
	}
	return ds, schemaRef, baseRef, nil
}
