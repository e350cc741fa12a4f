package gmt

import (
	"encoding/hex"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/gofrs/uuid"
	"github.com/spf13/afero"
)

// UniqueName returns 32 random hex characters.
func UniqueName() string {
	id := uuid.Must(uuid.NewV4())
	return hex.EncodeToString(id.Bytes())
}

// TempFile is an empty file with a unique name. Remove it when done.
type TempFile struct {
	fs   afero.Fs
	name string
}

// NewTempFile creates dir/<prefix><unique><suffix> on fsys.
func NewTempFile(fsys afero.Fs, dir, prefix, suffix string) (*TempFile, error) {
	return CreateTempFile(fsys, filepath.Join(dir, prefix+UniqueName()+suffix))
}

// CreateTempFile creates name on fsys, failing if it already exists.
func CreateTempFile(fsys afero.Fs, name string) (*TempFile, error) {
	f, err := fsys.OpenFile(name, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return nil, err
	}
	if err := f.Close(); err != nil {
		_ = fsys.Remove(name)
		return nil, err
	}
	return &TempFile{fs: fsys, name: name}, nil
}

// Name returns the file's path.
func (t *TempFile) Name() string { return t.name }

// Remove deletes the file. A file that is already gone is not an error.
func (t *TempFile) Remove() error {
	if err := t.fs.Remove(t.name); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
