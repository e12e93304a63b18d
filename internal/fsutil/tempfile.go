package fsutil

import (
	"fmt"
	"io"
	"os"
)

// MaterializeCheckpoint writes write's output to a new temp file in dir
// and returns its path. The caller owns the returned file and is
// responsible for removing it once no model references it (Session does
// this in DestroyLastCheckpoint and Close).
func MaterializeCheckpoint(dir string, write func(io.Writer) error) (string, error) {
	if dir == "" {
		dir = os.TempDir()
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("fsutil: create checkpoint directory %s: %w", dir, err)
	}

	f, err := os.CreateTemp(dir, "segedit-checkpoint-*.tmp")
	if err != nil {
		return "", fmt.Errorf("fsutil: create checkpoint temp file: %w", err)
	}

	path := f.Name()

	if werr := write(f); werr != nil {
		_ = f.Close()
		_ = os.Remove(path)

		return "", fmt.Errorf("fsutil: write checkpoint %s: %w", path, werr)
	}

	if err := f.Sync(); err != nil {
		_ = f.Close()
		_ = os.Remove(path)

		return "", fmt.Errorf("fsutil: sync checkpoint %s: %w", path, err)
	}

	if err := f.Close(); err != nil {
		_ = os.Remove(path)

		return "", fmt.Errorf("fsutil: close checkpoint %s: %w", path, err)
	}

	return path, nil
}
