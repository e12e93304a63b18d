package fsutil

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
)

// FilesEqual reports whether the files at a and b have identical content.
// Test-only helper for comparing a written file against an expected
// fixture; grounded on original_source's omega_util_compare_files.
func FilesEqual(a, b string) (bool, error) {
	ha, err := hashFile(a)
	if err != nil {
		return false, err
	}

	hb, err := hashFile(b)
	if err != nil {
		return false, err
	}

	return ha == hb, nil
}

func hashFile(path string) (string, error) {
	f, err := os.Open(path) //nolint:gosec // test-only helper over caller-supplied fixture paths
	if err != nil {
		return "", fmt.Errorf("fsutil: open %s: %w", path, err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("fsutil: read %s: %w", path, err)
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}
