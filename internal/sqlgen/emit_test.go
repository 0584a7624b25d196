package sqlgen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dbjson/internal/diff"
	"dbjson/internal/schema"
)

func orgTable() *schema.Schema {
	return &schema.Schema{
		Tables: map[string]*schema.Table{
			"organization": {Name: "organization", PrimaryKey: []string{"id"}},
		},
	}
}

func TestEmit_Insert_OmitsMissingColumns(t *testing.T) {
	s := orgTable()
	changes := diff.ChangeSet{
		{Kind: diff.Insert, Table: "organization", Row: map[string]any{"id": "o1", "name": "Acme"}},
	}

	stmts, err := Emit(s, changes)
	require.NoError(t, err)
	require.Len(t, stmts, 1)
	assert.Equal(t, `INSERT INTO "organization" ("id", "name") VALUES ($1, $2)`, stmts[0].SQL)
	assert.Equal(t, []any{"o1", "Acme"}, stmts[0].Params)
}

func TestEmit_Update_SetBeforeWhere(t *testing.T) {
	s := orgTable()
	changes := diff.ChangeSet{
		{
			Kind: diff.Update, Table: "organization",
			PrimaryKey: map[string]any{"id": "o1"},
			NewValues:  map[string]any{"name": "Globex"},
		},
	}

	stmts, err := Emit(s, changes)
	require.NoError(t, err)
	require.Len(t, stmts, 1)
	assert.Equal(t, `UPDATE "organization" SET "name" = $1 WHERE "id" = $2`, stmts[0].SQL)
	assert.Equal(t, []any{"Globex", "o1"}, stmts[0].Params)
}

func TestEmit_Update_SetColumnsFollowChangedColumnsOrder(t *testing.T) {
	s := &schema.Schema{
		Tables: map[string]*schema.Table{
			"user": {
				Name:       "user",
				Columns:    []*schema.Column{{Name: "id"}, {Name: "name"}, {Name: "email"}},
				PrimaryKey: []string{"id"},
			},
		},
	}
	changes := diff.ChangeSet{
		{
			Kind: diff.Update, Table: "user",
			PrimaryKey:     map[string]any{"id": "u1"},
			NewValues:      map[string]any{"name": "Alice Updated", "email": "new@example.com"},
			ChangedColumns: []string{"name", "email"},
		},
	}

	stmts, err := Emit(s, changes)
	require.NoError(t, err)
	require.Len(t, stmts, 1)
	assert.Equal(t, `UPDATE "user" SET "name" = $1, "email" = $2 WHERE "id" = $3`, stmts[0].SQL)
	assert.Equal(t, []any{"Alice Updated", "new@example.com", "u1"}, stmts[0].Params)
}

func TestEmit_Delete_ByPrimaryKey(t *testing.T) {
	s := orgTable()
	changes := diff.ChangeSet{
		{Kind: diff.Delete, Table: "organization", PrimaryKey: map[string]any{"id": "o1"}},
	}

	stmts, err := Emit(s, changes)
	require.NoError(t, err)
	require.Len(t, stmts, 1)
	assert.Equal(t, `DELETE FROM "organization" WHERE "id" = $1`, stmts[0].SQL)
	assert.Equal(t, []any{"o1"}, stmts[0].Params)
}

func TestEmit_UnknownTable_ReturnsError(t *testing.T) {
	s := orgTable()
	changes := diff.ChangeSet{
		{Kind: diff.Insert, Table: "ghost", Row: map[string]any{"id": "g1"}},
	}

	_, err := Emit(s, changes)
	require.Error(t, err)
}
