package segedit_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/segedit/segedit/segedit"
)

func newEmptySession(t *testing.T) *segedit.Session {
	t.Helper()

	s, err := segedit.NewSession(segedit.SessionOptions{CheckpointDir: t.TempDir()})
	require.NoError(t, err)

	t.Cleanup(func() { _ = s.Close() })

	return s
}

func newFileSession(t *testing.T, content string) *segedit.Session {
	t.Helper()

	path := filepath.Join(t.TempDir(), "source.bin")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	s, err := segedit.NewSession(segedit.SessionOptions{Path: path, CheckpointDir: t.TempDir()})
	require.NoError(t, err)

	t.Cleanup(func() { _ = s.Close() })

	return s
}

func readAll(t *testing.T, s *segedit.Session) []byte {
	t.Helper()

	path := filepath.Join(t.TempDir(), "saved.bin")

	final, err := s.Save(path, true)
	require.NoError(t, err)

	got, err := os.ReadFile(final)
	require.NoError(t, err)

	return got
}

func TestInsertIntoEmptySessionThenUndo(t *testing.T) {
	s := newEmptySession(t)

	require.Equal(t, int64(0), s.GetComputedFileSize())

	serial, err := s.Insert(0, []byte("hello world"))
	require.NoError(t, err)
	require.Positive(t, serial)
	require.Equal(t, int64(11), s.GetComputedFileSize())
	require.Equal(t, "hello world", string(readAll(t, s)))

	undone, err := s.Undo()
	require.NoError(t, err)
	require.Equal(t, -serial, undone)
	require.Equal(t, int64(0), s.GetComputedFileSize())

	redone, err := s.Redo()
	require.NoError(t, err)
	require.Equal(t, serial, redone)
	require.Equal(t, "hello world", string(readAll(t, s)))
}

func TestUndoWithEmptyStackIsSilentNoOp(t *testing.T) {
	s := newEmptySession(t)

	serial, err := s.Undo()
	require.NoError(t, err)
	require.Zero(t, serial)
}

func TestRepeatedMidpointInsertion(t *testing.T) {
	// Stress the segment-splitting path by repeatedly inserting at the
	// midpoint of the growing buffer, doubling the split pressure on the
	// existing segment list each round — the same shape of workload the
	// recursive halving in a Tower-of-Hanoi move sequence produces.
	s := newEmptySession(t)

	reference := []byte{}
	rounds := []string{"E", "D", "C", "B", "A"}

	for _, piece := range rounds {
		offset := int64(len(reference) / 2)

		_, err := s.Insert(offset, []byte(piece))
		require.NoError(t, err)

		reference = append(reference[:offset], append([]byte(piece), reference[offset:]...)...)
	}

	require.Equal(t, reference, readAll(t, s))
	require.Equal(t, int64(len(reference)), s.GetComputedFileSize())
}

func TestFixedVsFloatingViewport(t *testing.T) {
	s := newFileSession(t, "123456789")

	fixed, err := s.NewViewport(4, 4, false, nil, 0)
	require.NoError(t, err)

	floating, err := s.NewViewport(4, 4, true, nil, 0)
	require.NoError(t, err)

	require.Equal(t, "5678", string(fixed.Data()))
	require.Equal(t, "5678", string(floating.Data()))

	_, err = s.Delete(0, 2)
	require.NoError(t, err)

	require.Equal(t, "789", string(fixed.Data()), "fixed viewport keeps reading from offset 4")
	require.Equal(t, "5678", string(floating.Data()), "floating viewport tracks the same bytes as they shift left")

	_, err = s.Insert(0, []byte("12"))
	require.NoError(t, err)

	require.Equal(t, "5678", string(fixed.Data()))
	require.Equal(t, "5678", string(floating.Data()), "floating offset returns to its original position once the shift is undone")
}

func TestSearchFindsAllOccurrencesAndSupportsReplace(t *testing.T) {
	s := newFileSession(t, "the cat sat on the mat with the cat")

	sc, err := s.NewSearchContext([]byte("cat"), 0, s.GetComputedFileSize(), false)
	require.NoError(t, err)

	defer sc.Close()

	var offsets []int64

	for {
		found, err := sc.NextMatch(1)
		require.NoError(t, err)

		if !found {
			break
		}

		offsets = append(offsets, sc.MatchOffset())
	}

	require.Equal(t, []int64{4, 32}, offsets)

	// Replace every match with "dog" (same length, so offsets of later
	// matches remain valid) by overwriting at each previously found
	// offset.
	for _, offset := range offsets {
		_, err := s.Overwrite(offset, []byte("dog"))
		require.NoError(t, err)
	}

	require.Equal(t, "the dog sat on the mat with the dog", string(readAll(t, s)))
}

func TestSearchCaseInsensitive(t *testing.T) {
	s := newFileSession(t, "Hello HELLO hello")

	sc, err := s.NewSearchContext([]byte("hello"), 0, s.GetComputedFileSize(), true)
	require.NoError(t, err)

	defer sc.Close()

	count := 0

	for {
		found, err := sc.NextMatch(1)
		require.NoError(t, err)

		if !found {
			break
		}

		count++
	}

	require.Equal(t, 3, count)
}

// TestSearchReplaceWithDifferingLengthUsesAdvanceBy replaces every match
// in place as it is found, with a replacement longer than the pattern.
// The search context reads the session's live content on every tile
// load, so each later match offset already reflects the growth from
// earlier replacements; advanceBy lets NextMatch resume just past the
// bytes just written instead of re-matching into them.
func TestSearchReplaceWithDifferingLengthUsesAdvanceBy(t *testing.T) {
	s := newFileSession(t, "needle in a needle stack with a needle!!")

	pattern := []byte("needle")
	replacement := []byte("Noodles")

	sc, err := s.NewSearchContext(pattern, 0, s.GetComputedFileSize(), false)
	require.NoError(t, err)

	defer sc.Close()

	replaced := 0

	for {
		found, err := sc.NextMatch(int64(len(replacement)))
		require.NoError(t, err)

		if !found {
			break
		}

		offset := sc.MatchOffset()

		_, err = s.Delete(offset, int64(len(pattern)))
		require.NoError(t, err)

		_, err = s.Insert(offset, replacement)
		require.NoError(t, err)

		replaced++
	}

	require.Equal(t, 3, replaced)
	require.Equal(t, "Noodles in a Noodles stack with a Noodles!!", string(readAll(t, s)))
}

func TestOverwriteThenDeleteThenOverwrite(t *testing.T) {
	s := newFileSession(t, "0123456789")

	_, err := s.Overwrite(2, []byte("XY"))
	require.NoError(t, err)
	require.Equal(t, "01XY456789", string(readAll(t, s)))

	_, err = s.Delete(1, 3)
	require.NoError(t, err)
	require.Equal(t, "0456789", string(readAll(t, s)))

	_, err = s.Overwrite(0, []byte("ZZZZ"))
	require.NoError(t, err)
	require.Equal(t, "ZZZZ789", string(readAll(t, s)))
}

func TestOverwriteNeverExtendsFile(t *testing.T) {
	s := newFileSession(t, "abc")

	serial, err := s.Overwrite(1, []byte("XYZW"))
	require.NoError(t, err)
	require.Positive(t, serial)
	require.Equal(t, "aXY", string(readAll(t, s)), "overwrite past the end is silently truncated, not extended")
}

func TestCheckpointAndByteTransformInvolution(t *testing.T) {
	s := newFileSession(t, "abcdef")

	_, err := s.Insert(0, []byte("XYZ"))
	require.NoError(t, err)
	require.Equal(t, "XYZabcdef", string(readAll(t, s)))

	require.NoError(t, s.CreateCheckpoint())
	require.Equal(t, 1, s.NumCheckpoints())
	require.Equal(t, int64(1), s.NumChanges(), "NumChanges stays monotonic across a checkpoint boundary")

	xor := func(_ int64, b byte) byte { return b ^ 0xFF }

	require.NoError(t, s.ApplyByteTransform(xor, 0, s.GetComputedFileSize()))
	require.Equal(t, 2, s.NumCheckpoints())

	transformed := readAll(t, s)
	require.NotEqual(t, "XYZabcdef", string(transformed))

	require.NoError(t, s.ApplyByteTransform(xor, 0, s.GetComputedFileSize()))
	require.Equal(t, "XYZabcdef", string(readAll(t, s)), "applying an involution twice returns the original content")

	require.NoError(t, s.DestroyLastCheckpoint())
	require.NoError(t, s.DestroyLastCheckpoint())
	require.Equal(t, 1, s.NumCheckpoints())
	require.Equal(t, "XYZabcdef", string(readAll(t, s)), "destroying both transform checkpoints resumes the pre-transform model")
}

func TestByteTransformOverSubRangeLeavesRestUntouched(t *testing.T) {
	s := newFileSession(t, "0123456789abcdef01234567890123456789")

	xor := func(_ int64, b byte) byte { return b ^ 0xFF }

	require.NoError(t, s.ApplyByteTransform(xor, 10, 16))

	content := readAll(t, s)
	require.Equal(t, "0123456789", string(content[:10]), "bytes before the range pass through unchanged")
	require.Equal(t, "0123456789", string(content[26:]), "bytes after the range pass through unchanged")

	for i := 10; i < 26; i++ {
		require.Equal(t, "0123456789abcdef0123456789"[i]^0xFF, content[i], "byte %d inside the range was transformed", i)
	}

	require.NoError(t, s.ApplyByteTransform(xor, 10, 16))
	require.Equal(t, "0123456789abcdef01234567890123456789", string(readAll(t, s)), "applying the involution again over the same range restores it")
}

func TestTransactionGroupsUndoRedoTogether(t *testing.T) {
	s := newEmptySession(t)

	require.NoError(t, s.BeginTransaction())

	_, err := s.Insert(0, []byte("AAA"))
	require.NoError(t, err)
	_, err = s.Insert(3, []byte("BBB"))
	require.NoError(t, err)
	_, err = s.Insert(6, []byte("CCC"))
	require.NoError(t, err)

	require.NoError(t, s.EndTransaction())

	require.Equal(t, "AAABBBCCC", string(readAll(t, s)))

	_, err = s.Undo()
	require.NoError(t, err)
	require.Equal(t, int64(0), s.GetComputedFileSize(), "undo reverts the whole transaction group in one call")

	_, err = s.Redo()
	require.NoError(t, err)
	require.Equal(t, "AAABBBCCC", string(readAll(t, s)))
}

func TestPauseChangesSuppressesEdits(t *testing.T) {
	s := newEmptySession(t)

	s.PauseChanges()

	serial, err := s.Insert(0, []byte("ignored"))
	require.NoError(t, err)
	require.Zero(t, serial)
	require.Equal(t, int64(0), s.GetComputedFileSize())

	s.ResumeChanges()

	serial, err = s.Insert(0, []byte("applied"))
	require.NoError(t, err)
	require.Positive(t, serial)
}

func TestSaveWithoutOverwriteDerivesAvailableName(t *testing.T) {
	s := newFileSession(t, "payload")

	dir := t.TempDir()
	target := filepath.Join(dir, "out.bin")

	require.NoError(t, os.WriteFile(target, []byte("existing"), 0o644))

	final, err := s.Save(target, false)
	require.NoError(t, err)
	require.NotEqual(t, target, final)

	got, err := os.ReadFile(final)
	require.NoError(t, err)
	require.Equal(t, "payload", string(got))
}

func TestViewportEventCallbackFires(t *testing.T) {
	s := newFileSession(t, "0123456789")

	var events []segedit.ViewportEventMask

	_, err := s.NewViewport(0, 4, false, func(_ *segedit.Viewport, event segedit.ViewportEventMask, _ *segedit.Change) {
		events = append(events, event)
	}, segedit.ViewportEventAll)
	require.NoError(t, err)

	require.Equal(t, []segedit.ViewportEventMask{segedit.ViewportEventCreate}, events)

	_, err = s.Overwrite(0, []byte("X"))
	require.NoError(t, err)

	require.Equal(t, []segedit.ViewportEventMask{segedit.ViewportEventCreate, segedit.ViewportEventEdit}, events)
}

func TestViewportEventKindsAreDistinctPerOperation(t *testing.T) {
	s := newFileSession(t, "0123456789")

	var events []segedit.ViewportEventMask

	v, err := s.NewViewport(0, 4, false, func(_ *segedit.Viewport, event segedit.ViewportEventMask, _ *segedit.Change) {
		events = append(events, event)
	}, segedit.ViewportEventAll)
	require.NoError(t, err)

	_, err = s.Overwrite(0, []byte("X"))
	require.NoError(t, err)

	_, err = s.Undo()
	require.NoError(t, err)

	require.NoError(t, s.Clear())

	xor := func(_ int64, b byte) byte { return b ^ 0xFF }
	require.NoError(t, s.ApplyByteTransform(xor, 0, s.GetComputedFileSize()))

	require.NoError(t, v.Modify(1, 3, true))

	s.NotifyChangedViewports()

	require.Equal(t, []segedit.ViewportEventMask{
		segedit.ViewportEventCreate,
		segedit.ViewportEventEdit,
		segedit.ViewportEventUndo,
		segedit.ViewportEventClear,
		segedit.ViewportEventTransform,
		segedit.ViewportEventModify,
		segedit.ViewportEventChanges,
	}, events, "each operation fires its own distinct viewport event kind")
}

func TestByteFrequencyProfile(t *testing.T) {
	s := newFileSession(t, "aaabbc")

	profile, err := s.ByteFrequencyProfile(0, s.GetComputedFileSize())
	require.NoError(t, err)

	require.Equal(t, int64(3), profile['a'])
	require.Equal(t, int64(2), profile['b'])
	require.Equal(t, int64(1), profile['c'])
	require.Equal(t, int64(0), profile['z'])
}
