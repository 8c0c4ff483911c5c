// Package storage writes exported cookie files.
package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
)

// FilePersister will persist files. It abstracts away the where and how of
// writing files to the source destination.
type FilePersister interface {
	Persist(ctx context.Context, path string, data io.Reader) error
}

// LocalFilePersister will persist files to a filesystem, the local disk
// unless Fs is set.
type LocalFilePersister struct {
	Fs afero.Fs
}

// NewLocalFilePersister returns a persister writing to the local disk.
func NewLocalFilePersister() *LocalFilePersister {
	return &LocalFilePersister{Fs: afero.NewOsFs()}
}

// Persist will write the contents of data to path, replacing an existing
// file. Files are readable by their owner only since they hold credentials.
func (l *LocalFilePersister) Persist(ctx context.Context, path string, data io.Reader) (err error) {
	if err = ctx.Err(); err != nil {
		return err
	}
	fs := l.Fs
	if fs == nil {
		fs = afero.NewOsFs()
	}
	cp := filepath.Clean(path)

	dir := filepath.Dir(cp)
	if err = fs.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrapf(err, "creating a local directory %q", dir)
	}

	f, err := fs.OpenFile(cp, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return errors.Wrapf(err, "creating a local file %q", cp)
	}
	defer func() {
		tempErr := f.Close()
		// Only return the close error if there isn't already an existing error.
		if tempErr != nil && err == nil {
			err = errors.Wrapf(tempErr, "closing the local file %q", cp)
		}
	}()

	if _, err = io.Copy(f, data); err != nil {
		return errors.Wrapf(err, "writing the local file %q", cp)
	}

	return nil
}
