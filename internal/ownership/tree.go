// Package ownership builds the acyclic ownership tree that projects a
// schema's foreign-key graph onto the single tree shape the nested JSON
// document needs.
package ownership

import (
	"sort"

	"dbjson/internal/errs"
	"dbjson/internal/schema"
)

// Edge is one dominant composition: the edge the nester/flattener follow to
// place child rows inside their parent's nested document.
type Edge struct {
	ParentTable  string
	ChildTable   string
	Relationship *schema.Relationship
	Columns      []string // copy of Relationship.FromColumns, for convenience
}

// Classification records, for every relationship in the schema, whether it
// was treated as composition or reference, and — for compositions — whether
// it won the dominance tie-break.
type Classification struct {
	Relationship  *schema.Relationship
	IsComposition bool
	IsDominant    bool
}

// Tree is the acyclic ownership forest derived from a Schema. The
// dominant-edge relation spans every table in the schema exactly once:
// each table has at most one incoming dominant edge.
type Tree struct {
	Roots           []string // tables with no dominant parent, alphabetical
	Classifications []*Classification

	childrenOf map[string][]*Edge // parent table -> ordered dominant edges
	dominantOf map[string]*Edge   // child table -> its single dominant edge
}

// Children returns the ordered dominant edges descending from parent.
func (t *Tree) Children(parent string) []*Edge {
	return t.childrenOf[parent]
}

// DominantEdge returns table's incoming dominant edge, if it has one.
func (t *Tree) DominantEdge(table string) (*Edge, bool) {
	e, ok := t.dominantOf[table]
	return e, ok
}

// IsRoot reports whether table has no dominant parent.
func (t *Tree) IsRoot(table string) bool {
	_, ok := t.dominantOf[table]
	return !ok
}

// Build is a pure, deterministic function of Schema → Tree.
func Build(s *schema.Schema) (*Tree, error) {
	classifications := classify(s)

	candidates := candidatesByChild(classifications)
	dominant, err := chooseDominant(candidates)
	if err != nil {
		return nil, err
	}

	for _, c := range classifications {
		if c.IsComposition && dominant[c.Relationship.FromTable] == c.Relationship {
			c.IsDominant = true
		}
	}

	t := &Tree{
		Classifications: classifications,
		childrenOf:      make(map[string][]*Edge),
		dominantOf:      make(map[string]*Edge),
	}

	for child, rel := range dominant {
		edge := &Edge{
			ParentTable:  rel.ToTable,
			ChildTable:   child,
			Relationship: rel,
			Columns:      append([]string(nil), rel.FromColumns...),
		}
		t.dominantOf[child] = edge
		t.childrenOf[rel.ToTable] = append(t.childrenOf[rel.ToTable], edge)
	}

	for parent, edges := range t.childrenOf {
		sort.Slice(edges, func(i, j int) bool { return edges[i].ChildTable < edges[j].ChildTable })
		t.childrenOf[parent] = edges
	}

	for name := range s.Tables {
		if t.IsRoot(name) {
			t.Roots = append(t.Roots, name)
		}
	}
	sort.Strings(t.Roots)

	return t, nil
}

// classify marks every relationship as composition or reference:
// a composition is a non-self-referential FK whose ON DELETE action is
// CASCADE. Everything else, including every self-referential FK regardless
// of action, is a reference.
func classify(s *schema.Schema) []*Classification {
	out := make([]*Classification, 0, len(s.Relationships))
	for _, r := range s.Relationships {
		out = append(out, &Classification{Relationship: r, IsComposition: r.IsComposition()})
	}
	return out
}

// candidatesByChild groups composition relationships by child table, each
// list sorted by the dominance tie-break: lower FK arity first, then
// alphabetically earlier parent-table name.
func candidatesByChild(classifications []*Classification) map[string][]*schema.Relationship {
	byChild := make(map[string][]*schema.Relationship)
	for _, c := range classifications {
		if c.IsComposition {
			byChild[c.Relationship.FromTable] = append(byChild[c.Relationship.FromTable], c.Relationship)
		}
	}
	for child, rels := range byChild {
		sort.SliceStable(rels, func(i, j int) bool {
			if len(rels[i].FromColumns) != len(rels[j].FromColumns) {
				return len(rels[i].FromColumns) < len(rels[j].FromColumns)
			}
			return rels[i].ToTable < rels[j].ToTable
		})
		byChild[child] = rels
	}
	return byChild
}

// chooseDominant picks one dominant composition per child, backing off to
// the next-preferred candidate whenever the current choice closes a cycle
// among dominant edges, and failing with
// errs.KindCyclicOwnership if no table in an unresolved cycle has a
// remaining candidate.
func chooseDominant(candidates map[string][]*schema.Relationship) (map[string]*schema.Relationship, error) {
	idx := make(map[string]int)
	dominant := make(map[string]*schema.Relationship)
	for child, rels := range candidates {
		dominant[child] = rels[0]
	}

	maxAttempts := len(candidates)*len(candidates) + 1
	for attempt := 0; attempt < maxAttempts; attempt++ {
		cyclic := tablesOnACycle(dominant)
		if len(cyclic) == 0 {
			return dominant, nil
		}

		advanced := false
		for _, table := range cyclic {
			next := idx[table] + 1
			if next < len(candidates[table]) {
				idx[table] = next
				dominant[table] = candidates[table][next]
				advanced = true
			} else {
				delete(dominant, table)
			}
		}
		if !advanced {
			return nil, errs.New(errs.KindCyclicOwnership, "no acyclic choice of dominant parents exists")
		}
	}

	return nil, errs.New(errs.KindCyclicOwnership, "dominance tie-break did not converge")
}

// tablesOnACycle walks the dominant-parent chain from every child and
// returns the set of tables that participate in any cycle found.
func tablesOnACycle(dominant map[string]*schema.Relationship) []string {
	seen := make(map[string]bool)
	var cyclic []string

	for start := range dominant {
		if seen[start] {
			continue
		}
		path := []string{}
		onPath := make(map[string]int)
		cur := start
		for {
			rel, ok := dominant[cur]
			if !ok {
				break // reached a root
			}
			if p, onP := onPath[cur]; onP {
				cyclic = append(cyclic, path[p:]...)
				break
			}
			onPath[cur] = len(path)
			path = append(path, cur)
			seen[cur] = true
			cur = rel.ToTable
		}
	}
	return dedupe(cyclic)
}

func dedupe(ss []string) []string {
	seen := make(map[string]bool, len(ss))
	out := make([]string, 0, len(ss))
	for _, s := range ss {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}
