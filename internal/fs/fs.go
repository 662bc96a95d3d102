// Package fs provides the filesystem seam used by tracecheck and an atomic
// JSON writer for evidence files.
package fs

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
)

// FS is the subset of filesystem operations tracecheck performs.
// Tests substitute a stub.
type FS interface {
	Open(path string) (io.ReadCloser, error)
	ReadFile(path string) ([]byte, error)
	MkdirAll(path string, perm os.FileMode) error
	Rename(oldpath, newpath string) error
	Remove(path string) error
	Chmod(path string, perm os.FileMode) error
	CreateTemp(dir, pattern string) (string, io.WriteCloser, error)
}

// RealFS implements FS on the host filesystem.
type RealFS struct{}

// NewRealFS returns the host filesystem.
func NewRealFS() *RealFS {
	return &RealFS{}
}

func (RealFS) Open(path string) (io.ReadCloser, error) { return os.Open(path) }

func (RealFS) ReadFile(path string) ([]byte, error) { return os.ReadFile(path) }

func (RealFS) MkdirAll(path string, perm os.FileMode) error { return os.MkdirAll(path, perm) }

func (RealFS) Rename(oldpath, newpath string) error { return os.Rename(oldpath, newpath) }

func (RealFS) Remove(path string) error { return os.Remove(path) }

func (RealFS) Chmod(path string, perm os.FileMode) error { return os.Chmod(path, perm) }

func (RealFS) CreateTemp(dir, pattern string) (string, io.WriteCloser, error) {
	f, err := os.CreateTemp(dir, pattern)
	if err != nil {
		return "", nil, err
	}
	return f.Name(), f, nil
}

// WriteJSONAtomicFS writes v as indented JSON to path on fsys via a temp file
// and rename, so readers never observe a partial record.
func WriteJSONAtomicFS(fsys FS, path string, v any, perm os.FileMode) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return WriteFileAtomic(fsys, path, append(data, '\n'), perm)
}

// WriteFileAtomic writes data to path via a temp file in the same directory
// and a rename, creating parent directories as needed.
func WriteFileAtomic(fsys FS, path string, data []byte, perm os.FileMode) (err error) {
	dir := filepath.Dir(path)
	if err := fsys.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmpPath, w, err := fsys.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = fsys.Remove(tmpPath)
		}
	}()

	if _, err = w.Write(data); err != nil {
		_ = w.Close()
		return err
	}
	if err = w.Close(); err != nil {
		return err
	}
	if err = fsys.Chmod(tmpPath, perm); err != nil {
		return err
	}
	return fsys.Rename(tmpPath, path)
}
