// Package atomicfile writes files through a temporary sibling that is renamed into place
// only after the content is fully written, so readers never observe a partial file.
package atomicfile

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// DefaultPerm is the mode given to files created by this package.
const DefaultPerm os.FileMode = 0o644

// WriteFile atomically replaces path with data.
func WriteFile(path string, data []byte, perm os.FileMode) error {
	_, err := Write(path, perm, func(w io.Writer) (int64, error) {
		return io.Copy(w, bytes.NewReader(data))
	})
	return err
}

// Write creates a temp file next to path, hands it to fill, and renames it over path
// when fill succeeds. On any error the temp file is removed and path is left untouched.
// It returns the byte count reported by fill.
func Write(path string, perm os.FileMode, fill func(w io.Writer) (int64, error)) (int64, error) {
	if perm == 0 {
		perm = DefaultPerm
	}
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return 0, fmt.Errorf("create temp for %s: %w", path, err)
	}
	tmpPath := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	bw := bufio.NewWriterSize(tmp, 64*1024)
	n, err := fill(bw)
	if err != nil {
		return n, err
	}
	if err := bw.Flush(); err != nil {
		return n, fmt.Errorf("flush %s: %w", path, err)
	}
	if err := tmp.Sync(); err != nil {
		return n, fmt.Errorf("sync %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return n, fmt.Errorf("close %s: %w", path, err)
	}
	if err := os.Chmod(tmpPath, perm); err != nil {
		return n, fmt.Errorf("chmod %s: %w", path, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return n, fmt.Errorf("rename into %s: %w", path, err)
	}
	committed = true
	return n, nil
}
