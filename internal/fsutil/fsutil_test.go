package fsutil_test

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/segedit/segedit/internal/fsutil"
)

func writer(content string) func(io.Writer) error {
	return func(w io.Writer) error {
		_, err := w.Write([]byte(content))

		return err
	}
}

func TestSaveCreatesMissingDirectory(t *testing.T) {
	root := t.TempDir()
	target := filepath.Join(root, "nested", "deeper", "out.bin")

	final, err := fsutil.Save(target, false, writer("hello"))
	require.NoError(t, err)
	require.Equal(t, target, final)

	got, err := os.ReadFile(final)
	require.NoError(t, err)
	require.Equal(t, "hello", string(got))
}

func TestSaveWithoutOverwriteDerivesAvailableName(t *testing.T) {
	root := t.TempDir()
	target := filepath.Join(root, "out.bin")

	require.NoError(t, os.WriteFile(target, []byte("existing"), 0o644))

	final, err := fsutil.Save(target, false, writer("new"))
	require.NoError(t, err)
	require.NotEqual(t, target, final)
	require.Equal(t, filepath.Join(root, "out-1.bin"), final)

	original, err := os.ReadFile(target)
	require.NoError(t, err)
	require.Equal(t, "existing", string(original))

	replaced, err := os.ReadFile(final)
	require.NoError(t, err)
	require.Equal(t, "new", string(replaced))
}

func TestSaveWithOverwriteReplacesExisting(t *testing.T) {
	root := t.TempDir()
	target := filepath.Join(root, "out.bin")

	require.NoError(t, os.WriteFile(target, []byte("existing"), 0o644))

	final, err := fsutil.Save(target, true, writer("new"))
	require.NoError(t, err)
	require.Equal(t, target, final)

	got, err := os.ReadFile(final)
	require.NoError(t, err)
	require.Equal(t, "new", string(got))
}

func TestSavePropagatesWriterError(t *testing.T) {
	root := t.TempDir()
	target := filepath.Join(root, "out.bin")

	failing := func(w io.Writer) error {
		_, _ = w.Write([]byte("partial"))

		return errFake
	}

	_, err := fsutil.Save(target, true, failing)
	require.Error(t, err)

	_, statErr := os.Stat(target)
	require.True(t, os.IsNotExist(statErr), "a failed save must not leave a partial file behind")
}

func TestMaterializeCheckpointCleansUpOnError(t *testing.T) {
	dir := t.TempDir()

	_, err := fsutil.MaterializeCheckpoint(dir, func(io.Writer) error { return errFake })
	require.Error(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestFilesEqual(t *testing.T) {
	root := t.TempDir()
	a := filepath.Join(root, "a.bin")
	b := filepath.Join(root, "b.bin")
	c := filepath.Join(root, "c.bin")

	require.NoError(t, os.WriteFile(a, []byte("same content"), 0o644))
	require.NoError(t, os.WriteFile(b, []byte("same content"), 0o644))
	require.NoError(t, os.WriteFile(c, []byte("different"), 0o644))

	equal, err := fsutil.FilesEqual(a, b)
	require.NoError(t, err)
	require.True(t, equal)

	equal, err = fsutil.FilesEqual(a, c)
	require.NoError(t, err)
	require.False(t, equal)
}

var errFake = errFakeType{}

type errFakeType struct{}

func (errFakeType) Error() string { return "fsutil_test: injected failure" }
