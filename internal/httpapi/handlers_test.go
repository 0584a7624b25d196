package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dbjson/internal/db"
	"dbjson/internal/ownership"
	"dbjson/internal/schema"
	"dbjson/internal/sync"
)

// noopDB answers every query with zero rows — enough to exercise the HTTP
// layer's request/response plumbing without a live database.
type noopDB struct{}

func (noopDB) Ping(ctx context.Context) error { return nil }
func (noopDB) Close()                         {}
func (noopDB) Query(ctx context.Context, sqlText string, args ...any) (db.Rows, error) {
	return &noopRows{}, nil
}
func (noopDB) QueryRow(ctx context.Context, sqlText string, args ...any) db.Row { return nil }
func (noopDB) Exec(ctx context.Context, sqlText string, args ...any) (int64, error) {
	return 0, nil
}
func (noopDB) Begin(ctx context.Context) (db.Tx, error) { return nil, nil }

var _ db.DB = noopDB{}
var _ db.Rows = (*noopRows)(nil)

type noopRows struct{}

func (*noopRows) Next() bool                 { return false }
func (*noopRows) Scan(dest ...any) error     { return nil }
func (*noopRows) Columns() ([]string, error) { return nil, nil }
func (*noopRows) Err() error                 { return nil }
func (*noopRows) Close()                     {}

func testServer(t *testing.T) *Server {
	s := &schema.Schema{
		Tables: map[string]*schema.Table{
			"organization": {
				Name:       "organization",
				Columns:    []*schema.Column{{Name: "id"}, {Name: "name"}},
				PrimaryKey: []string{"id"},
			},
		},
	}
	tree, err := ownership.Build(s)
	require.NoError(t, err)

	o := sync.New(noopDB{}, s, tree, nil, afero.NewMemMapFs())
	return New(o, nil)
}

func TestHandleDump_MissingOutputPath_ReturnsBadRequest(t *testing.T) {
	srv := testServer(t)

	body, _ := json.Marshal(map[string]any{})
	req := httptest.NewRequest(http.MethodPost, "/v1/dump", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleDump_WritesFile(t *testing.T) {
	srv := testServer(t)

	body, _ := json.Marshal(map[string]any{"outputPath": "/work/dump.json"})
	req := httptest.NewRequest(http.MethodPost, "/v1/dump", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	srv.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	exists, _ := afero.Exists(srv.Orchestrator.FS, "/work/dump.json")
	assert.True(t, exists)
}

func TestHandleDump_WrongMethod_Returns405(t *testing.T) {
	srv := testServer(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/dump", nil)
	rec := httptest.NewRecorder()

	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
