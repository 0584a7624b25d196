package dataset

import (
	"dbjson/internal/errs"
	"dbjson/internal/ownership"
	"dbjson/internal/schema"
)

// UnresolvedRef identifies a RefMarker's target row by table and primary
// key, for the caller to confirm actually exists somewhere — either
// elsewhere in the same document or in the live database — before syncing.
type UnresolvedRef struct {
	Table      string
	PrimaryKey map[string]any
}

// Flatten converts a NestedDataset back into a FlatDataset. Fails
// with errs.KindTruncatedInput if any PartialMarker is encountered anywhere
// in the tree — a truncated nested document cannot be safely synced. Also
// returns one UnresolvedRef per RefMarker whose target is not a fully-defined
// row elsewhere in the same document, since the flattener itself never
// touches the database and cannot confirm such a target actually exists.
func Flatten(nested *NestedDataset, s *schema.Schema, tree *ownership.Tree) (*FlatDataset, []UnresolvedRef, error) {
	tableNames := make([]string, 0, len(s.Tables))
	for name := range s.Tables {
		tableNames = append(tableNames, name)
	}
	flat := NewFlatDataset(tableNames)
	camel := camelIndex(s)

	var refs []UnresolvedRef
	defined := make(map[string]map[string]bool)
	for camelRoot, nodes := range nested.Roots {
		table, ok := camel[camelRoot]
		if !ok {
			return nil, nil, errs.Newf(errs.KindUnknownTable, "unknown root table %q", camelRoot)
		}
		if err := flattenSequence(nodes, table, nil, nil, s, tree, flat, &refs, defined); err != nil {
			return nil, nil, err
		}
	}

	// A ref whose target also appears elsewhere as a fully-defined row in
	// this same document is already resolved — only genuinely dangling refs
	// are worth reporting.
	resolved := refs[:0]
	for _, ref := range refs {
		tbl := s.Table(ref.Table)
		if tbl != nil && defined[ref.Table][RowKey(FlatRow(ref.PrimaryKey), tbl.PrimaryKey)] {
			continue
		}
		resolved = append(resolved, ref)
	}

	return flat, resolved, nil
}

// flattenSequence processes one sequence of NestedNode belonging to table,
// with the edge and flat row of the parent that introduced it (nil at root).
func flattenSequence(
	nodes []NestedNode,
	table string,
	parentEdge *ownership.Edge,
	parentRow FlatRow,
	s *schema.Schema,
	tree *ownership.Tree,
	flat *FlatDataset,
	refs *[]UnresolvedRef,
	defined map[string]map[string]bool,
) error {
	for _, node := range nodes {
		switch n := node.(type) {
		case *PartialMarker:
			return errs.New(errs.KindTruncatedInput, "partial marker present; re-dump without a limit before syncing")

		case *RefMarker:
			row := FlatRow{}
			for k, v := range n.PrimaryKey {
				row[k] = v
			}
			if parentEdge != nil {
				inheritForeignKey(row, parentEdge, parentRow)
			}
			flat.Append(table, row)
			*refs = append(*refs, UnresolvedRef{Table: table, PrimaryKey: n.PrimaryKey})

		case *NestedRow:
			tbl := s.Table(table)
			if tbl == nil {
				return errs.Newf(errs.KindUnknownTable, "unknown table %q", table)
			}

			row := FlatRow{}
			for k, v := range n.Columns {
				if tbl.HasColumn(k) {
					row[k] = v
				}
			}
			if parentEdge != nil {
				inheritForeignKey(row, parentEdge, parentRow)
			}
			flat.Append(table, row)
			if tbl.HasPrimaryKey() {
				if defined[table] == nil {
					defined[table] = make(map[string]bool)
				}
				defined[table][RowKey(row, tbl.PrimaryKey)] = true
			}

			for _, edge := range tree.Children(table) {
				children := n.Children[toCamelCase(edge.ChildTable)]
				if err := flattenSequence(children, edge.ChildTable, edge, row, s, tree, flat, refs, defined); err != nil {
					return err
				}
			}

		default:
			return errs.Newf(errs.KindParseError, "unrecognized nested node type in table %q", table)
		}
	}
	return nil
}

// inheritForeignKey writes edge's FK columns onto row, pulled from
// parentRow at the edge's paired parent-side columns — the value a
// dominant child inherits implicitly from nesting context.
func inheritForeignKey(row FlatRow, edge *ownership.Edge, parentRow FlatRow) {
	for i, fkCol := range edge.Columns {
		parentCol := edge.Relationship.ToColumns[i]
		row[fkCol] = parentRow[parentCol]
	}
}
