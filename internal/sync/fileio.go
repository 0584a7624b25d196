package sync

import (
	"path/filepath"

	"github.com/spf13/afero"

	"dbjson/internal/errs"
)

// writeFileAtomic writes data to path by writing to a temp file in the same
// directory and renaming over path, so a crash mid-write never leaves a
// truncated or partially-written base snapshot.
func writeFileAtomic(fs afero.Fs, path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return errs.Wrap(errs.KindDriverError, "create directory "+dir, err)
	}

	tmp, err := afero.TempFile(fs, dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return errs.Wrap(errs.KindDriverError, "create temp file", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		fs.Remove(tmpName)
		return errs.Wrap(errs.KindDriverError, "write temp file", err)
	}
	if err := tmp.Close(); err != nil {
		fs.Remove(tmpName)
		return errs.Wrap(errs.KindDriverError, "close temp file", err)
	}

	if err := fs.Rename(tmpName, path); err != nil {
		fs.Remove(tmpName)
		return errs.Wrap(errs.KindDriverError, "rename into place: "+path, err)
	}
	return nil
}

func readFile(fs afero.Fs, path string) ([]byte, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, errs.Wrap(errs.KindDriverError, "read file "+path, err)
	}
	return data, nil
}

func fileExists(fs afero.Fs, path string) bool {
	ok, err := afero.Exists(fs, path)
	return err == nil && ok
}
