package util

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"

	"github.com/markusressel/twiddle/internal/ui"
	"github.com/natefinch/atomic"
)

// EnsureParentDir creates the parent directory of the given path if it doesn't exist yet
func EnsureParentDir(path string) error {
	parentDir := filepath.Dir(path)
	_, err := os.Stat(parentDir)
	if errors.Is(err, os.ErrNotExist) {
		ui.Info("Creating directory: %s", parentDir)
		return os.MkdirAll(parentDir, 0755)
	}
	return err
}

// WriteFileAtomic replaces the content of the file at path with data,
// readers never observe a partially written file
func WriteFileAtomic(path string, data []byte) error {
	if err := EnsureParentDir(path); err != nil {
		return err
	}
	return atomic.WriteFile(path, bytes.NewReader(data))
}
