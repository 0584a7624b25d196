package dataset

import (
	"encoding/json"
	"sort"

	"dbjson/internal/errs"
	"dbjson/internal/ownership"
	"dbjson/internal/schema"
)

// NestedNode is one element of a nested sequence: a NestedRow, a RefMarker,
// or a PartialMarker.
type NestedNode interface {
	isNestedNode()
}

// NestedRow holds a table's scalar columns (excluding FK columns implicit
// from nesting context) plus one entry per dominant child edge, keyed by
// the child table's camelCase name.
type NestedRow struct {
	Columns  map[string]any
	Children map[string][]NestedNode
}

func (*NestedRow) isNestedNode() {}

// RefMarker stands in for a composition subtree that must be
// reconstructible from primary-key alone: the literal tag $ref: true plus
// the child's primary-key columns.
type RefMarker struct {
	PrimaryKey map[string]any
}

func (*RefMarker) isNestedNode() {}

// PartialMarker signals that the sequence it appears in was truncated: the
// literal tag $partial: true plus the non-negative count of skipped rows.
type PartialMarker struct {
	Skipped int
}

func (*PartialMarker) isNestedNode() {}

// NestedDataset is a presentation of a FlatDataset as a tree, keyed by
// root-table camelCase name, plus the per-table counts of rows skipped by
// truncation anywhere in the tree.
type NestedDataset struct {
	Roots     map[string][]NestedNode
	Truncated map[string]int
}

// MarshalDocument renders the dataset as a nested-layout document carrying
// the given $schema / $base metadata references (empty strings omit them).
func (d *NestedDataset) MarshalDocument(schemaRef, baseRef string) ([]byte, error) {
	out := make(map[string]any, len(d.Roots)+2)
	if schemaRef != "" {
		out["$schema"] = schemaRef
	}
	if baseRef != "" {
		out["$base"] = baseRef
	}
	names := make([]string, 0, len(d.Roots))
	for name := range d.Roots {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		out[name] = d.Roots[name]
	}
	return json.Marshal(out)
}

// MarshalJSON lets a bare NestedNode slice/NestedDataset participate in
// json.Marshal without metadata keys.
func (d *NestedDataset) MarshalJSON() ([]byte, error) {
	return d.MarshalDocument("", "")
}

func (r *NestedRow) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(r.Columns)+len(r.Children))
	for k, v := range r.Columns {
		out[k] = v
	}
	for k, v := range r.Children {
		out[k] = v
	}
	return json.Marshal(out)
}

func (m *RefMarker) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(m.PrimaryKey)+1)
	out["$ref"] = true
	for k, v := range m.PrimaryKey {
		out[k] = v
	}
	return json.Marshal(out)
}

func (m *PartialMarker) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]any{"$partial": true, "skipped": m.Skipped})
}

// UnmarshalNestedDocument parses a nested-layout document into a
// NestedDataset plus the raw $schema / $base references found. Disambiguating
// a row's keys into scalar columns versus nested child-table sequences needs
// the schema's ownership tree: a root or child key is only ever decoded as a
// sequence of child nodes when it matches a known dominant child edge for
// that table's camelCase spelling, so a JSONB/array-of-objects column that
// happens to share no name with a child table is left as a plain column
// value instead of being swallowed as a (nonexistent) child sequence.
func UnmarshalNestedDocument(data []byte, s *schema.Schema, tree *ownership.Tree) (ds *NestedDataset, schemaRef, baseRef string, err error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, "", "", errs.Wrap(errs.KindParseError, "decode nested document", err)
	}

	camel := camelIndex(s)

	ds = &NestedDataset{Roots: make(map[string][]NestedNode)}
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
			table, ok := camel[key]
			if !ok {
				return nil, "", "", errs.Newf(errs.KindUnknownTable, "unknown root table %q", key)
			}
			var rawNodes []json.RawMessage
			if err := json.Unmarshal(val, &rawNodes); err != nil {
				return nil, "", "", errs.Wrap(errs.KindParseError, "decode root "+key, err)
			}
			nodes := make([]NestedNode, 0, len(rawNodes))
			for _, rn := range rawNodes {
				node, err := decodeNestedNode(rn, table, tree)
				if err != nil {
					return nil, "", "", err
				}
				nodes = append(nodes, node)
			}
			ds.Roots[key] = nodes
		}
	}
	return ds, schemaRef, baseRef, nil
}

// decodeNestedNode inspects an object for the $ref / $partial sentinel tags
// to decide which NestedNode variant it represents. An object with neither
// tag is a normal NestedRow belonging to table: each remaining key is a
// nested child-table sequence only if it matches one of table's dominant
// child edges (by camelCase name), looked up via tree.Children(table); every
// other key, array-shaped or not, is a scalar column.
func decodeNestedNode(raw json.RawMessage, table string, tree *ownership.Tree) (NestedNode, error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, errs.Wrap(errs.KindParseError, "decode nested node", err)
	}

	if isTrue(probe["$partial"]) {
		var skipped int
		if v, ok := probe["skipped"]; ok {
			if err := json.Unmarshal(v, &skipped); err != nil {
				return nil, errs.Wrap(errs.KindParseError, "decode $partial.skipped", err)
			}
		}
		return &PartialMarker{Skipped: skipped}, nil
	}

	if isTrue(probe["$ref"]) {
		pk := make(map[string]any, len(probe)-1)
		for k, v := range probe {
			if k == "$ref" {
				continue
			}
			var val any
			if err := json.Unmarshal(v, &val); err != nil {
				return nil, errs.Wrap(errs.KindParseError, "decode $ref column "+k, err)
			}
			pk[k] = val
		}
		return &RefMarker{PrimaryKey: pk}, nil
	}

	childTables := make(map[string]string, 4)
	for _, edge := range tree.Children(table) {
		childTables[toCamelCase(edge.ChildTable)] = edge.ChildTable
	}

	columns := make(map[string]any, len(probe))
	children := make(map[string][]NestedNode)
	for k, v := range probe {
		if childTable, isChild := childTables[k]; isChild {
			var rawNodes []json.RawMessage
			if err := json.Unmarshal(v, &rawNodes); err != nil {
				return nil, errs.Wrap(errs.KindParseError, "decode child sequence "+k, err)
			}
			nodes := make([]NestedNode, 0, len(rawNodes))
			for _, rn := range rawNodes {
				node, err := decodeNestedNode(rn, childTable, tree)
				if err != nil {
					return nil, err
				}
				nodes = append(nodes, node)
			}
			children[k] = nodes
			continue
		}
		var val any
		if err := json.Unmarshal(v, &val); err != nil {
			return nil, errs.Wrap(errs.KindParseError, "decode column "+k, err)
		}
		columns[k] = val
	}
	return &NestedRow{Columns: columns, Children: children}, nil
}

func isTrue(raw json.RawMessage) bool {
	if raw == nil {
		return false
	}
	var b bool
	return json.Unmarshal(raw, &b) == nil && b
}
