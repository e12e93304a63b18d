// Package fsutil holds the file-level plumbing segedit's Session needs
// around the core edit model: atomic saves, checkpoint/transform temp
// files, and a test-only file comparison helper.
package fsutil

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/natefinch/atomic"
)

// Save streams write's output to path, creating path's parent directory
// if it doesn't exist yet. If overwrite is false and path already exists,
// Save derives an available sibling filename ("name-1.ext", "name-2.ext",
// ... up to "name-99.ext") instead of failing, and returns the path
// actually written; it fails if all 99 are taken.
//
// Grounded on the teacher's lock.go atomic-write-after-lock pattern
// (github.com/natefinch/atomic) and original_source's omega_edit_save
// available-filename derivation.
func Save(path string, overwrite bool, write func(io.Writer) error) (string, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("fsutil: create directory %s: %w", dir, err)
		}
	}

	target := path

	if !overwrite {
		avail, err := availablePath(path)
		if err != nil {
			return "", err
		}

		target = avail
	}

	pr, pw := io.Pipe()
	errCh := make(chan error, 1)

	go func() {
		err := write(pw)
		if err != nil {
			_ = pw.CloseWithError(err)
		} else {
			_ = pw.Close()
		}

		errCh <- err
	}()

	if err := atomic.WriteFile(target, pr); err != nil {
		<-errCh

		return "", fmt.Errorf("fsutil: save %s: %w", target, err)
	}

	if err := <-errCh; err != nil {
		return "", fmt.Errorf("fsutil: save %s: %w", target, err)
	}

	return target, nil
}

// availablePath returns path unchanged if nothing exists there yet,
// otherwise the first "path-N.ext" sibling (N = 1..99) that doesn't.
func availablePath(path string) (string, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return path, nil
	} else if err != nil {
		return "", fmt.Errorf("fsutil: stat %s: %w", path, err)
	}

	ext := filepath.Ext(path)
	base := strings.TrimSuffix(path, ext)

	for i := 1; i <= 99; i++ {
		candidate := fmt.Sprintf("%s-%d%s", base, i, ext)

		if _, err := os.Stat(candidate); errors.Is(err, os.ErrNotExist) {
			return candidate, nil
		} else if err != nil {
			return "", fmt.Errorf("fsutil: stat %s: %w", candidate, err)
		}
	}

	return "", fmt.Errorf("fsutil: no available filename for %s", path)
}
