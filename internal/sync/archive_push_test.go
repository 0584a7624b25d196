package sync

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dbjson/internal/archive"
	"dbjson/internal/errs"
)

// fakeArchive is a minimal in-memory stand-in for archive.Store, keyed by
// bucket+key, exercising exactly the Put/Get surface internal/sync uses.
type fakeArchive struct {
	objects map[string][]byte
}

func newFakeArchive() *fakeArchive {
	return &fakeArchive{objects: make(map[string][]byte)}
}

func (a *fakeArchive) Ping(ctx context.Context) error { return nil }
func (a *fakeArchive) Close() error                   { return nil }

func (a *fakeArchive) ListObjects(ctx context.Context, bucket string, opts archive.ListOptions) ([]archive.ObjectInfo, error) {
	panic("fakeArchive: ListObjects not used by internal/sync")
}

func (a *fakeArchive) StatObject(ctx context.Context, bucket, key string) (*archive.ObjectInfo, error) {
	panic("fakeArchive: StatObject not used by internal/sync")
}

func (a *fakeArchive) GetObject(ctx context.Context, bucket, key string) (archive.Object, error) {
	data, ok := a.objects[bucket+"/"+key]
	if !ok {
		return nil, assert.AnError
	}
	return &fakeObject{r: bytes.NewReader(data)}, nil
}

func (a *fakeArchive) PutObject(ctx context.Context, bucket, key string, r io.Reader, size int64, contentType string) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	a.objects[bucket+"/"+key] = data
	return nil
}

type fakeObject struct {
	r *bytes.Reader
}

func (o *fakeObject) Read(p []byte) (int, error) { return o.r.Read(p) }
func (o *fakeObject) Close() error                { return nil }
func (o *fakeObject) Info() *archive.ObjectInfo   { return &archive.ObjectInfo{} }

var _ archive.Store = (*fakeArchive)(nil)
var _ archive.Object = (*fakeObject)(nil)

func TestDump_PushesDumpSchemaAndBaseToArchive(t *testing.T) {
	o, conn := newTestOrchestrator(t)
	conn.seed("organization", map[string]any{"id": "o1", "name": "Acme"})

	ar := newFakeArchive()
	o.Archive, o.ArchiveBucket = ar, "team-bucket"

	err := o.Dump(context.Background(), DumpOptions{OutputPath: "/work/dump.json"})
	require.NoError(t, err)

	assert.Contains(t, ar.objects, "team-bucket/dump.json")
	assert.Contains(t, ar.objects, "team-bucket/dump.schema.json")
	assert.Contains(t, ar.objects, "team-bucket/dump.base.json")
}

func TestPreview_PullsMissingBaseFromArchive(t *testing.T) {
	o, conn := newTestOrchestrator(t)
	conn.seed("organization", map[string]any{"id": "o1", "name": "Acme"})

	ar := newFakeArchive()
	o.Archive, o.ArchiveBucket = ar, "team-bucket"

	require.NoError(t, o.Dump(context.Background(), DumpOptions{OutputPath: "/work/dump.json"}))

	// A teammate on a different machine deletes their local base snapshot
	// (or never had one locally) but the bucket still has the copy pushed
	// by Dump.
	require.NoError(t, o.FS.Remove("/work/.db-editor/dump.base.json"))

	// The database changes after the snapshot was taken — a three-way
	// preview pulled from the archive must diff against the pulled base,
	// not the live row.
	conn.seed("organization", map[string]any{"id": "o2", "name": "Globex"})

	changes, err := o.Preview(context.Background(), PreviewOptions{InputPath: "/work/dump.json"})
	require.NoError(t, err)
	// The pulled base and the dump both hold only o1, so the concurrent o2
	// row must not surface as a change.
	assert.Empty(t, changes)

	exists, _ := afero.Exists(o.FS, "/work/.db-editor/dump.base.json")
	assert.True(t, exists, "pulled base snapshot is written back to the local filesystem")
}

func TestPreview_MissingBaseWithoutArchive_StillReturnsMissingBase(t *testing.T) {
	o, conn := newTestOrchestrator(t)
	conn.seed("organization", map[string]any{"id": "o1", "name": "Acme"})

	require.NoError(t, o.Dump(context.Background(), DumpOptions{OutputPath: "/work/dump.json"}))
	require.NoError(t, o.FS.Remove("/work/.db-editor/dump.base.json"))

	_, err := o.Preview(context.Background(), PreviewOptions{InputPath: "/work/dump.json"})
	require.Error(t, err)
	assert.True(t, errs.IsMissingBase(err))
}
