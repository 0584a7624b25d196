package ownership

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dbjson/internal/errs"
	"dbjson/internal/schema"
)

func TestBuild_CascadeNesting(t *testing.T) {
	s := &schema.Schema{
		Tables: map[string]*schema.Table{
			"organization": {Name: "organization", PrimaryKey: []string{"id"}},
			"project":      {Name: "project", PrimaryKey: []string{"id"}},
		},
		Relationships: []*schema.Relationship{
			{ID: "fk_project_org", FromTable: "project", FromColumns: []string{"organizationId"}, ToTable: "organization", ToColumns: []string{"id"}, OnDelete: schema.Cascade},
		},
	}

	tree, err := Build(s)
	require.NoError(t, err)
	assert.Equal(t, []string{"organization"}, tree.Roots)

	children := tree.Children("organization")
	require.Len(t, children, 1)
	assert.Equal(t, "project", children[0].ChildTable)
	assert.Equal(t, []string{"organizationId"}, children[0].Columns)
}

func TestBuild_SelfReferenceStaysReference(t *testing.T) {
	s := &schema.Schema{
		Tables: map[string]*schema.Table{
			"category": {Name: "category", PrimaryKey: []string{"id"}},
		},
		Relationships: []*schema.Relationship{
			{ID: "fk_category_parent", FromTable: "category", FromColumns: []string{"parentId"}, ToTable: "category", ToColumns: []string{"id"}, OnDelete: schema.Cascade},
		},
	}

	tree, err := Build(s)
	require.NoError(t, err)
	assert.Equal(t, []string{"category"}, tree.Roots)
	assert.Empty(t, tree.Children("category"))

	require.Len(t, tree.Classifications, 1)
	assert.False(t, tree.Classifications[0].IsComposition)
}

func TestBuild_MultiParentTieBreak(t *testing.T) {
	s := &schema.Schema{
		Tables: map[string]*schema.Table{
			"user":       {Name: "user", PrimaryKey: []string{"id"}},
			"project":    {Name: "project", PrimaryKey: []string{"id"}},
			"membership": {Name: "membership", PrimaryKey: []string{"id"}},
		},
		Relationships: []*schema.Relationship{
			{ID: "fk_membership_user", FromTable: "membership", FromColumns: []string{"userId"}, ToTable: "user", ToColumns: []string{"id"}, OnDelete: schema.Cascade},
			{ID: "fk_membership_project", FromTable: "membership", FromColumns: []string{"projectId"}, ToTable: "project", ToColumns: []string{"id"}, OnDelete: schema.Cascade},
		},
	}

	tree, err := Build(s)
	require.NoError(t, err)

	edge, ok := tree.DominantEdge("membership")
	require.True(t, ok)
	assert.Equal(t, "project", edge.ParentTable)

	assert.ElementsMatch(t, []string{"user", "project"}, tree.Roots)
}

func TestBuild_MutualCompositionFailsCyclicOwnership(t *testing.T) {
	s := &schema.Schema{
		Tables: map[string]*schema.Table{
			"a": {Name: "a", PrimaryKey: []string{"id"}},
			"b": {Name: "b", PrimaryKey: []string{"id"}},
		},
		Relationships: []*schema.Relationship{
			{ID: "fk_a_b", FromTable: "a", FromColumns: []string{"bId"}, ToTable: "b", ToColumns: []string{"id"}, OnDelete: schema.Cascade},
			{ID: "fk_b_a", FromTable: "b", FromColumns: []string{"aId"}, ToTable: "a", ToColumns: []string{"id"}, OnDelete: schema.Cascade},
		},
	}

	_, err := Build(s)
	require.Error(t, err)
	assert.True(t, errs.IsCyclicOwnership(err))
}
