package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActionFromCode(t *testing.T) {
	cases := []struct {
		code byte
		want Action
	}{
		{'c', Cascade},
		{'n', SetNull},
		{'d', SetDefault},
		{'r', Restrict},
		{'a', NoAction},
		{'x', NoAction}, // unknown code falls back to the safest default
	}
	for _, c := range cases {
		assert.Equal(t, c.want, actionFromCode(c.code))
	}
}

func TestRelationship_IsComposition(t *testing.T) {
	r := &Relationship{FromTable: "project", ToTable: "organization", OnDelete: Cascade}
	assert.True(t, r.IsComposition())

	selfRef := &Relationship{FromTable: "category", ToTable: "category", OnDelete: Cascade}
	assert.False(t, selfRef.IsComposition())

	restrict := &Relationship{FromTable: "project", ToTable: "organization", OnDelete: Restrict}
	assert.False(t, restrict.IsComposition())
}

func TestTable_ColumnLookup(t *testing.T) {
	tbl := &Table{
		Name:       "organization",
		Columns:    []*Column{{Name: "id"}, {Name: "name"}},
		PrimaryKey: []string{"id"},
	}
	require.True(t, tbl.HasColumn("name"))
	assert.False(t, tbl.HasColumn("missing"))
	assert.True(t, tbl.HasPrimaryKey())

	noKey := &Table{Name: "log"}
	assert.False(t, noKey.HasPrimaryKey())
}

func TestSchema_TableLookup(t *testing.T) {
	s := &Schema{Tables: map[string]*Table{
		"organization": {Name: "organization", Columns: []*Column{{Name: "id"}, {Name: "name"}}, PrimaryKey: []string{"id"}},
	}}
	require.True(t, s.HasTable("organization"))
	assert.False(t, s.HasTable("missing"))
	assert.True(t, s.Table("organization").HasColumn("name"))
}

func TestSchema_RelationshipsFromAndTo(t *testing.T) {
	r1 := &Relationship{ID: "fk_project_org", FromTable: "project", ToTable: "organization", OnDelete: Cascade}
	r2 := &Relationship{ID: "fk_task_project", FromTable: "task", ToTable: "project", OnDelete: Cascade}
	s := &Schema{Relationships: []*Relationship{r1, r2}}

	assert.Equal(t, []*Relationship{r1}, s.RelationshipsFrom("project"))
	assert.Equal(t, []*Relationship{r1}, s.RelationshipsTo("organization"))
	assert.Empty(t, s.RelationshipsFrom("organization"))
}
