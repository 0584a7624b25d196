// Package sqlgen orders a diff's ChangeSet so statements respect foreign-key
// dependencies, then renders it to parameterized SQL.
package sqlgen

import (
	"fmt"
	"sort"
	"strings"

	"dbjson/internal/diff"
	"dbjson/internal/schema"
)

// Order partitions changes by kind — deletes, then updates, then inserts —
// and sorts deletes child-first and inserts parent-first by the table
// dependency graph. Updates retain their relative input order across
// tables. Within one table, diff.Diff's own output order is unspecified
// (it ranges over Go maps), so every group additionally breaks ties by
// primary key to keep Order's output byte-identical across runs.
//
// Cyclic FK graphs (self-referential or mutual) place the affected tables at
// an arbitrary but deterministic position — statement-time FK checking and
// the composition/reference split keep this safe in practice.
func Order(s *schema.Schema, changes diff.ChangeSet) diff.ChangeSet {
	depth := topoDepth(s)

	var deletes, updates, inserts diff.ChangeSet
	for _, c := range changes {
		switch c.Kind {
		case diff.Delete:
			deletes = append(deletes, c)
		case diff.Update:
			updates = append(updates, c)
		case diff.Insert:
			inserts = append(inserts, c)
		}
	}

	// Parent-first: shallower tables (fewer FK hops from a root) sort
	// first. Child-first is the reverse. Tables at the same depth order by
	// name; changes to one table order by PK.
	sort.SliceStable(inserts, func(i, j int) bool {
		a, b := inserts[i], inserts[j]
		if depth[a.Table] != depth[b.Table] {
			return depth[a.Table] < depth[b.Table]
		}
		if a.Table != b.Table {
			return a.Table < b.Table
		}
		return pkSortKey(s, a) < pkSortKey(s, b)
	})
	sort.SliceStable(deletes, func(i, j int) bool {
		a, b := deletes[i], deletes[j]
		if depth[a.Table] != depth[b.Table] {
			return depth[a.Table] > depth[b.Table]
		}
		if a.Table != b.Table {
			return a.Table < b.Table
		}
		return pkSortKey(s, a) < pkSortKey(s, b)
	})
	sort.SliceStable(updates, func(i, j int) bool {
		a, b := updates[i], updates[j]
		if a.Table != b.Table {
			return false
		}
		return pkSortKey(s, a) < pkSortKey(s, b)
	})

	ordered := make(diff.ChangeSet, 0, len(changes))
	ordered = append(ordered, deletes...)
	ordered = append(ordered, updates...)
	ordered = append(ordered, inserts...)
	return ordered
}

// pkSortKey renders a Change's primary-key values as a single comparable
// string, in the table's own PK column order, so two changes in the same
// table sort deterministically regardless of the map-iteration order
// diff.Diff produced them in. Insert carries its key inside Row; Update
// and Delete carry it in PrimaryKey directly.
func pkSortKey(s *schema.Schema, c *diff.Change) string {
	tbl := s.Table(c.Table)
	if tbl == nil {
		return ""
	}
	values := c.PrimaryKey
	if c.Kind == diff.Insert {
		values = c.Row
	}
	parts := make([]string, len(tbl.PrimaryKey))
	for i, col := range tbl.PrimaryKey {
		parts[i] = fmt.Sprint(values[col])
	}
	return strings.Join(parts, "\x1f")
}

// topoDepth assigns each table a depth equal to the length of its longest
// chain of outgoing FKs (T₁ → T₂ iff T₁ has an FK to T₂, i.e. T₂ must exist
// before T₁): tables with no outgoing FK sit at depth 0, a table referencing
// only depth-0 tables sits at depth 1, and so on. Parent-first order is
// ascending depth; child-first is descending. Cycles are broken by visiting
// each table at most once per walk and falling back to the table's own
// partial result, which keeps the function total on cyclic graphs instead of
// recursing forever.
func topoDepth(s *schema.Schema) map[string]int {
	depth := make(map[string]int, len(s.Tables))
	visiting := make(map[string]bool, len(s.Tables))

	var visit func(table string) int
	visit = func(table string) int {
		if d, ok := depth[table]; ok {
			return d
		}
		if visiting[table] {
			return 0
		}
		visiting[table] = true

		best := 0
		for _, rel := range s.RelationshipsFrom(table) {
			if rel.ToTable == table {
				continue
			}
			if d := visit(rel.ToTable) + 1; d > best {
				best = d
			}
		}

		visiting[table] = false
		depth[table] = best
		return best
	}

	names := make([]string, 0, len(s.Tables))
	for name := range s.Tables {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		visit(name)
	}
	return depth
}
