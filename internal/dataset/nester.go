package dataset

import (
	"dbjson/internal/ownership"
	"dbjson/internal/schema"
)

// NestOptions bounds how many rows the nester emits at each level.
type NestOptions struct {
	Limit       *int // applied to root-level sequences
	NestedLimit *int // applied to every deeper level
}

// Nest converts a FlatDataset into a NestedDataset rooted at the
// ownership tree's root tables.
func Nest(flat *FlatDataset, s *schema.Schema, tree *ownership.Tree, opts NestOptions) (*NestedDataset, error) {
	nested := &NestedDataset{
		Roots:     make(map[string][]NestedNode),
		Truncated: make(map[string]int),
	}
	indices := make(map[*ownership.Edge]map[string][]FlatRow)

	for _, root := range tree.Roots {
		if !s.Table(root).HasPrimaryKey() {
			continue
		}
		rows := flat.Rows(root)
		limited, skipped := applyLimit(rows, opts.Limit)

		nodes := make([]NestedNode, 0, len(limited)+1)
		for _, row := range limited {
			node, err := materializeRow(row, root, flat, s, tree, indices, opts.NestedLimit, nested.Truncated)
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, node)
		}
		if skipped > 0 {
			nodes = append(nodes, &PartialMarker{Skipped: skipped})
			nested.Truncated[root] += skipped
		}
		nested.Roots[toCamelCase(root)] = nodes
	}

	return nested, nil
}

func materializeRow(
	row FlatRow,
	table string,
	flat *FlatDataset,
	s *schema.Schema,
	tree *ownership.Tree,
	indices map[*ownership.Edge]map[string][]FlatRow,
	limit *int,
	truncated map[string]int,
) (*NestedRow, error) {
	tbl := s.Table(table)

	excluded := map[string]bool{}
	if edge, ok := tree.DominantEdge(table); ok {
		for _, c := range edge.Columns {
			excluded[c] = true
		}
	}

	columns := make(map[string]any)
	for k, v := range row {
		if excluded[k] || !tbl.HasColumn(k) {
			continue
		}
		columns[k] = v
	}

	children := make(map[string][]NestedNode)
	for _, edge := range tree.Children(table) {
		if ct := s.Table(edge.ChildTable); ct == nil || !ct.HasPrimaryKey() {
			continue
		}
		idx, ok := indices[edge]
		if !ok {
			idx = buildChildIndex(flat.Rows(edge.ChildTable), edge.Columns)
			indices[edge] = idx
		}

		key := valueKey(valuesFor(row, edge.Relationship.ToColumns))
		childRows := idx[key]
		limited, skipped := applyLimit(childRows, limit)

		nodes := make([]NestedNode, 0, len(limited)+1)
		for _, cr := range limited {
			node, err := materializeRow(cr, edge.ChildTable, flat, s, tree, indices, limit, truncated)
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, node)
		}
		if skipped > 0 {
			nodes = append(nodes, &PartialMarker{Skipped: skipped})
			truncated[edge.ChildTable] += skipped
		}
		children[toCamelCase(edge.ChildTable)] = nodes
	}

	return &NestedRow{Columns: columns, Children: children}, nil
}

// buildChildIndex groups a child table's rows by their FK column values so
// materializeRow can look up a parent's children in O(1).
func buildChildIndex(rows []FlatRow, fkColumns []string) map[string][]FlatRow {
	idx := make(map[string][]FlatRow)
	for _, row := range rows {
		key := valueKey(valuesFor(row, fkColumns))
		idx[key] = append(idx[key], row)
	}
	return idx
}

// applyLimit returns the first limit rows (or all of them, if limit is nil
// or not exceeded) and the count of rows skipped.
func applyLimit(rows []FlatRow, limit *int) ([]FlatRow, int) {
	if limit == nil || len(rows) <= *limit {
		return rows, 0
	}
	return rows[:*limit], len(rows) - *limit
}
