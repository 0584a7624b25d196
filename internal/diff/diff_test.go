package diff

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dbjson/internal/dataset"
	"dbjson/internal/schema"
)

func userSchema() *schema.Schema {
	return &schema.Schema{
		Tables: map[string]*schema.Table{
			"user": {
				Name:       "user",
				Columns:    []*schema.Column{{Name: "id"}, {Name: "name"}, {Name: "email"}},
				PrimaryKey: []string{"id"},
			},
		},
	}
}

func TestDiff_FlatDiffIdempotence(t *testing.T) {
	s := userSchema()
	d := &dataset.FlatDataset{Tables: map[string][]dataset.FlatRow{
		"user": {{"id": "u1", "name": "Alice", "email": "alice@example.com"}},
	}}
	changes := Diff(s, d, d)
	assert.Empty(t, changes)
}

func TestDiff_ThreeWayMergePreservesConcurrentInserts(t *testing.T) {
	s := userSchema()
	base := &dataset.FlatDataset{Tables: map[string][]dataset.FlatRow{
		"user": {{"id": "u1", "name": "Alice"}},
	}}
	edited := &dataset.FlatDataset{Tables: map[string][]dataset.FlatRow{
		"user": {
			{"id": "u1", "name": "Alice"},
			{"id": "u3", "name": "Charlie"},
		},
	}}

	changes := Diff(s, base, edited)
	require.Len(t, changes, 1)
	assert.Equal(t, Insert, changes[0].Kind)
	assert.Equal(t, "user", changes[0].Table)
	assert.Equal(t, "Charlie", changes[0].Row["name"])
	assert.Equal(t, "u3", changes[0].Row["id"])
}

func TestDiff_UpdateCarriesOnlyChangedColumns(t *testing.T) {
	s := userSchema()
	base := &dataset.FlatDataset{Tables: map[string][]dataset.FlatRow{
		"user": {{"id": "u1", "name": "Alice", "email": "alice@old.com"}},
	}}
	modified := &dataset.FlatDataset{Tables: map[string][]dataset.FlatRow{
		"user": {{"id": "u1", "name": "Alice Updated", "email": "new@example.com"}},
	}}

	changes := Diff(s, base, modified)
	require.Len(t, changes, 1)
	c := changes[0]
	assert.Equal(t, Update, c.Kind)
	assert.Equal(t, map[string]any{"id": "u1"}, c.PrimaryKey)
	assert.Equal(t, "Alice", c.OldValues["name"])
	assert.Equal(t, "Alice Updated", c.NewValues["name"])
	assert.Equal(t, "alice@old.com", c.OldValues["email"])
	assert.Equal(t, "new@example.com", c.NewValues["email"])
	_, pkInOld := c.OldValues["id"]
	assert.False(t, pkInOld, "PK columns must never be reported as changed")
	assert.Equal(t, []string{"name", "email"}, c.ChangedColumns, "changed columns follow the table's declared order, not alphabetical")
}

func TestDiff_Delete(t *testing.T) {
	s := userSchema()
	base := &dataset.FlatDataset{Tables: map[string][]dataset.FlatRow{
		"user": {{"id": "u1", "name": "Alice"}, {"id": "u2", "name": "Bob"}},
	}}
	modified := &dataset.FlatDataset{Tables: map[string][]dataset.FlatRow{
		"user": {{"id": "u1", "name": "Alice"}},
	}}

	changes := Diff(s, base, modified)
	require.Len(t, changes, 1)
	assert.Equal(t, Delete, changes[0].Kind)
	assert.Equal(t, map[string]any{"id": "u2"}, changes[0].PrimaryKey)
	assert.Equal(t, "Bob", changes[0].OldRow["name"])
}

func TestDiff_TableWithoutPrimaryKeyIsSkipped(t *testing.T) {
	s := &schema.Schema{Tables: map[string]*schema.Table{
		"audit_log": {Name: "audit_log", Columns: []*schema.Column{{Name: "message"}}},
	}}
	base := &dataset.FlatDataset{Tables: map[string][]dataset.FlatRow{"audit_log": {{"message": "a"}}}}
	modified := &dataset.FlatDataset{Tables: map[string][]dataset.FlatRow{"audit_log": {{"message": "b"}}}}

	assert.Empty(t, Diff(s, base, modified))
}

func TestEqualValues_InstantEquality(t *testing.T) {
	assert.True(t, equalValues("2024-01-01T00:00:00Z", "2024-01-01T00:00:00.000Z"))
	assert.False(t, equalValues("2024-01-01T00:00:00Z", "2024-01-02T00:00:00Z"))
	assert.True(t, equalValues(nil, nil))
	assert.False(t, equalValues(nil, "x"))
}

func TestEqualValues_StructuralJSONEquality(t *testing.T) {
	a := map[string]any{"b": 1.0, "a": 2.0}
	b := map[string]any{"a": 2.0, "b": 1.0}
	assert.True(t, equalValues(a, b))

	c := map[string]any{"a": 2.0, "b": 3.0}
	assert.False(t, equalValues(a, c))
}
