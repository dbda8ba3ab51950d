// Package filesystem stores processed photos on a local (or in-memory) afero filesystem.
package filesystem

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"path"
	"strings"

	"github.com/code19m/errx"
	"github.com/spf13/afero"
)

// CodePhotoNotFound is returned by Open when no photo exists under the name.
const CodePhotoNotFound = "PHOTO_NOT_FOUND"

// PhotoStorage writes photos under a single directory.
type PhotoStorage struct {
	fs  afero.Fs
	dir string
}

// NewPhotoStorage creates the upload directory if needed.
func NewPhotoStorage(fsys afero.Fs, dir string) (*PhotoStorage, error) {
	exists, err := afero.DirExists(fsys, dir)
	if err != nil {
		return nil, errx.Wrap(err)
	}
	if !exists {
		if err := fsys.MkdirAll(dir, 0o755); err != nil {
			return nil, errx.Wrap(err)
		}
	}
	return &PhotoStorage{fs: fsys, dir: dir}, nil
}

// Save writes data to a temp file in the same directory and renames it into place,
// so a reader never observes a partially written photo under name.
func (s *PhotoStorage) Save(_ context.Context, name string, data []byte) error {
	target, err := s.path(name)
	if err != nil {
		return err
	}

	tmp, err := afero.TempFile(s.fs, s.dir, ".upload-*")
	if err != nil {
		return errx.Wrap(err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = s.fs.Remove(tmpName)
		return errx.Wrap(err)
	}
	if err := tmp.Close(); err != nil {
		_ = s.fs.Remove(tmpName)
		return errx.Wrap(err)
	}
	if err := s.fs.Rename(tmpName, target); err != nil {
		_ = s.fs.Remove(tmpName)
		return errx.Wrap(err)
	}
	return nil
}

// Delete removes the photo. A missing file is not an error.
func (s *PhotoStorage) Delete(_ context.Context, name string) error {
	target, err := s.path(name)
	if err != nil {
		return err
	}
	if err := s.fs.Remove(target); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return errx.Wrap(err)
	}
	return nil
}

// Open returns the stored photo for serving.
func (s *PhotoStorage) Open(_ context.Context, name string) (io.ReadCloser, error) {
	target, err := s.path(name)
	if err != nil {
		return nil, err
	}
	f, err := s.fs.Open(target)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, errx.New("photo not found", errx.WithCode(CodePhotoNotFound), errx.WithType(errx.T_NotFound))
	}
	if err != nil {
		return nil, errx.Wrap(err)
	}
	return f, nil
}

// path confines name to the upload directory.
func (s *PhotoStorage) path(name string) (string, error) {
	if name == "" || name != path.Base(name) || strings.HasPrefix(name, ".") || strings.ContainsAny(name, `/\`) {
		return "", errx.New("invalid photo name",
			errx.WithCode(CodePhotoNotFound),
			errx.WithType(errx.T_NotFound),
			errx.WithDetails(errx.D{"name": name}),
		)
	}
	return path.Join(s.dir, name), nil
}
