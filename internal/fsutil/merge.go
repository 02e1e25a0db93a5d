package fsutil

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"syscall"
)

// FilesystemError reports a failed merge, move, or delete.
type FilesystemError struct {
	Op   string
	Path string
	Err  error
}

func (e *FilesystemError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *FilesystemError) Unwrap() error {
	return e.Err
}

// rename is swapped in tests to simulate cross-device moves.
var rename = os.Rename

// Merge relocates every direct entry of src into dst, replacing same-named
// entries already in dst, then removes src. Subdirectories move wholesale.
// A missing src is a no-op.
func Merge(src, dst string) error {
	info, err := os.Stat(src)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return &FilesystemError{Op: "stat", Path: src, Err: err}
	}
	if !info.IsDir() {
		return &FilesystemError{Op: "merge", Path: src, Err: errors.New("not a directory")}
	}

	if err := os.MkdirAll(dst, 0755); err != nil {
		return &FilesystemError{Op: "mkdir", Path: dst, Err: err}
	}

	entries, err := os.ReadDir(src)
	if err != nil {
		return &FilesystemError{Op: "read", Path: src, Err: err}
	}

	for _, entry := range entries {
		from := filepath.Join(src, entry.Name())
		to := filepath.Join(dst, entry.Name())

		if err := os.RemoveAll(to); err != nil {
			return &FilesystemError{Op: "remove", Path: to, Err: err}
		}
		if err := relocate(from, to); err != nil {
			return err
		}
	}

	return RemoveAll(src)
}

// Move relocates the directory src to dst. dst must not exist; its parent is
// created as needed.
func Move(src, dst string) error {
	if _, err := os.Stat(src); err != nil {
		return &FilesystemError{Op: "move", Path: src, Err: err}
	}
	if _, err := os.Lstat(dst); err == nil {
		return &FilesystemError{Op: "move", Path: dst, Err: fs.ErrExist}
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return &FilesystemError{Op: "mkdir", Path: filepath.Dir(dst), Err: err}
	}
	return relocate(src, dst)
}

// MkdirAll is os.MkdirAll reporting a *FilesystemError.
func MkdirAll(path string) error {
	if err := os.MkdirAll(path, 0755); err != nil {
		return &FilesystemError{Op: "mkdir", Path: path, Err: err}
	}
	return nil
}

// MkdirTemp creates a fresh scratch directory under dir.
func MkdirTemp(dir, pattern string) (string, error) {
	if err := MkdirAll(dir); err != nil {
		return "", err
	}
	path, err := os.MkdirTemp(dir, pattern)
	if err != nil {
		return "", &FilesystemError{Op: "mkdtemp", Path: dir, Err: err}
	}
	return path, nil
}

// RemoveAll is os.RemoveAll reporting a *FilesystemError.
func RemoveAll(path string) error {
	if err := os.RemoveAll(path); err != nil {
		return &FilesystemError{Op: "remove", Path: path, Err: err}
	}
	return nil
}

// relocate renames from to to, copying and deleting when the two paths are
// on different filesystems.
func relocate(from, to string) error {
	err := rename(from, to)
	if err == nil {
		return nil
	}
	if !errors.Is(err, syscall.EXDEV) {
		return &FilesystemError{Op: "rename", Path: from, Err: err}
	}

	if err := copyEntry(from, to); err != nil {
		return &FilesystemError{Op: "copy", Path: from, Err: err}
	}
	return RemoveAll(from)
}
