// Package diff computes the minimum change set between two FlatDatasets,
// keyed by primary key.
package diff

// Kind tags a Change as one of the three mutation types.
type Kind int

const (
	Insert Kind = iota
	Update
	Delete
)

func (k Kind) String() string {
	switch k {
	case Insert:
		return "insert"
	case Update:
		return "update"
	case Delete:
		return "delete"
	default:
		return "unknown"
	}
}

// Change is one tagged mutation. Only the fields relevant to Kind are
// populated:
//
//   - Insert: Table, Row (full row; omitted columns defer to server default)
//   - Update: Table, PrimaryKey, OldValues, NewValues (same key set, non-PK
//     only), ChangedColumns (that same key set, in table column order)
//   - Delete: Table, PrimaryKey, OldRow (full pre-image)
type Change struct {
	Kind           Kind
	Table          string
	PrimaryKey     map[string]any
	Row            map[string]any
	OldRow         map[string]any
	OldValues      map[string]any
	NewValues      map[string]any
	ChangedColumns []string
}

// ChangeSet is an ordered sequence of Change. Diff's own output order is
// unspecified — internal/sqlgen imposes the FK-respecting order.
type ChangeSet []*Change
