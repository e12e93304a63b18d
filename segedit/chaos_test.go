package segedit

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/segedit/segedit/internal/backing"
)

// White-box: exercises internal/backing's Chaos fault-injection wrapper
// through the model's actual read path (project), rather than only against
// backing.Store directly. Confirms a failing backing read surfaces as an
// error out of model.project instead of silently truncating or panicking.
func TestModelProjectPropagatesBackingReadFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "source.bin")
	require.NoError(t, os.WriteFile(path, []byte("0123456789abcdef"), 0o644))

	store, err := backing.Open(path)
	require.NoError(t, err)

	chaos := backing.NewChaos(store, backing.ChaosConfig{ReadFailRate: 1.0}, 99)
	m := newModel(chaos, "", false)

	buf := make([]byte, 4)
	_, err = m.project(0, 4, buf)
	require.Error(t, err)
}

// A partial read from the backing store (fewer bytes than requested, no
// error — Chaos's PartialReadRate simulates exactly this) must not appear
// to project as a short or corrupted result: project loops internally until
// the destination buffer is completely filled, the same way io.ReadFull
// loops over a short io.Reader.
func TestModelProjectRetriesPartialBackingReads(t *testing.T) {
	content := "0123456789abcdef"

	path := filepath.Join(t.TempDir(), "source.bin")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	store, err := backing.Open(path)
	require.NoError(t, err)

	chaos := backing.NewChaos(store, backing.ChaosConfig{PartialReadRate: 1.0}, 13)
	m := newModel(chaos, "", false)

	buf := make([]byte, 8)

	n, err := m.project(0, 8, buf)
	require.NoError(t, err)
	require.Equal(t, 8, n)
	require.Equal(t, content[:8], string(buf))
}
