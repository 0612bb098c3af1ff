package store

import (
	"fmt"
	"os"
	"path/filepath"
)

// atomicWriter writes to a temp file in the target's directory and renames it
// into place on commit, so a durable-store fetch never leaves a partially
// written file at the canonical path.
type atomicWriter struct {
	path    string
	tmpPath string
	file    *os.File
}

func newAtomicWriter(path string) (*atomicWriter, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create directory: %w", err)
	}

	tmpFile, err := os.CreateTemp(dir, ".mediafetch-*.tmp")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}

	return &atomicWriter{
		path:    path,
		tmpPath: tmpFile.Name(),
		file:    tmpFile,
	}, nil
}

func (w *atomicWriter) Write(p []byte) (n int, err error) {
	return w.file.Write(p)
}

// Commit syncs the temp file and atomically replaces the target.
func (w *atomicWriter) Commit() error {
	if err := w.file.Sync(); err != nil {
		return fmt.Errorf("sync: %w", err)
	}
	if err := w.file.Close(); err != nil {
		return fmt.Errorf("close: %w", err)
	}
	if err := os.Rename(w.tmpPath, w.path); err != nil {
		os.Remove(w.tmpPath)
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}

// Abort discards the temp file without committing.
func (w *atomicWriter) Abort() error {
	w.file.Close()
	return os.Remove(w.tmpPath)
}
