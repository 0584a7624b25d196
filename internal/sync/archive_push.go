package sync

import (
	"bytes"
	"context"
	"io"
	"path/filepath"

	"github.com/spf13/afero"
)

// pushArchive mirrors a freshly-written dump file and its companions to
// the configured bucket, keyed by basename, so a teammate without access
// to this filesystem can fetch them.
func (o *Orchestrator) pushArchive(ctx context.Context, outputPath string, paths companionPaths) error {
	for _, abs := range []string{outputPath, paths.SchemaAbs, paths.BaseAbs} {
		if !fileExists(o.FS, abs) {
			continue
		}
		data, err := afero.ReadFile(o.FS, abs)
		if err != nil {
			return err
		}
		key := filepath.Base(abs)
		if err := o.Archive.PutObject(ctx, o.ArchiveBucket, key, bytes.NewReader(data), int64(len(data)), "application/json"); err != nil {
			return err
		}
	}
	return nil
}

// pullArchiveObject fetches the object keyed by filepath.Base(abs) from the
// configured bucket and writes it to abs, so a base snapshot a teammate
// produced (and pushed via pushArchive) can be resolved locally even though
// this filesystem never saw it written. Returns false, nil if no archive is
// configured, leaving the caller to report the original missing-base error.
func (o *Orchestrator) pullArchiveObject(ctx context.Context, abs string) (bool, error) {
	if o.Archive == nil || o.ArchiveBucket == "" {
		return false, nil
	}

	key := filepath.Base(abs)
	obj, err := o.Archive.GetObject(ctx, o.ArchiveBucket, key)
	if err != nil {
		return false, nil
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return false, err
	}
	if err := writeFileAtomic(o.FS, abs, data); err != nil {
		return false, err
	}
	return true, nil
}
