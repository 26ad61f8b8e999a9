// Package fileutil provides the atomic-write helper index save/load relies
// on: write to a temporary path, then rename, so a crash mid-write never
// leaves a partially-written index file at the target path.
package fileutil

import (
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// WriteAtomic calls write with a freshly created temporary file in the same
// directory as path, then renames it into place only if write returns nil.
// The uuid suffix avoids collisions between concurrent saves of the same
// path rather than relying on a PID or timestamp, either of which can
// collide under fast repeated saves in tests.
func WriteAtomic(path string, write func(f *os.File) error) error {
	dir := filepath.Dir(path)
	tmp := filepath.Join(dir, filepath.Base(path)+".tmp."+uuid.NewString())

	f, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	defer os.Remove(tmp) // no-op once the rename below succeeds

	if err := write(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
