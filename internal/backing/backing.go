// Package backing provides random-access, read-only byte sources for the
// segedit core.
//
// A [Store] is the contract a model's segment list reads through: given
// an offset and a length it returns that many bytes, or fewer with an
// error if the range runs past the end of the source. Implementations
// must be safe for concurrent use by multiple readers with no shared seek
// state, since the core may read disjoint ranges of the same store from
// concurrent viewport materializations.
//
// [Open] wraps an on-disk file using [os.File.ReadAt], which has no
// shared file-position state and is therefore safe for concurrent callers
// without an external lock. [Empty] represents the zero-length backing
// store used when a session is created without a path.
package backing

import (
	"errors"
	"fmt"
	"io"
	"os"
)

// ErrOutOfRange indicates a read requested bytes past the end of the store.
var ErrOutOfRange = errors.New("backing: read out of range")

// Store is a random-access, read-only byte source.
//
// All methods must be safe for concurrent use by multiple goroutines.
type Store interface {
	// ReadAt reads up to len(p) bytes starting at off into p, returning
	// the number of bytes read. It returns fewer bytes with
	// [ErrOutOfRange] (wrapped) if the range extends past [Store.Size].
	// As with [io.ReaderAt], a single call may also return fewer bytes
	// with a nil error; callers that need all of p loop until it is full.
	ReadAt(p []byte, off int64) (int, error)

	// Size returns the total number of bytes in the store.
	Size() int64

	// Close releases any resources held by the store (e.g. the
	// underlying file descriptor). Close is idempotent.
	Close() error
}

// file is a [Store] backed by an open, read-only [os.File].
type file struct {
	f    *os.File
	size int64
}

// Open opens path read-only and returns a [Store] over its current
// contents. The core never writes to this file; all mutation is modeled
// in memory via change records layered on top of the segment list.
func Open(path string) (Store, error) {
	f, err := os.Open(path) //nolint:gosec // path is supplied by the embedding application
	if err != nil {
		return nil, fmt.Errorf("backing: open %s: %w", path, err)
	}

	info, statErr := f.Stat()
	if statErr != nil {
		_ = f.Close()

		return nil, fmt.Errorf("backing: stat %s: %w", path, statErr)
	}

	return &file{f: f, size: info.Size()}, nil
}

func (s *file) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 || off > s.size {
		return 0, fmt.Errorf("%w: offset %d, size %d", ErrOutOfRange, off, s.size)
	}

	want := len(p)
	if avail := s.size - off; int64(want) > avail {
		want = int(avail)
	}

	n, err := s.f.ReadAt(p[:want], off)
	if err != nil && !errors.Is(err, io.EOF) {
		return n, fmt.Errorf("backing: read at %d: %w", off, err)
	}

	if n < len(p) {
		return n, fmt.Errorf("%w: offset %d, length %d, size %d", ErrOutOfRange, off, len(p), s.size)
	}

	return n, nil
}

func (s *file) Size() int64 {
	return s.size
}

func (s *file) Close() error {
	return s.f.Close()
}

// empty is the zero-length [Store] used when a session has no backing file.
type empty struct{}

// Empty returns a [Store] with size zero. Any non-empty read fails with
// [ErrOutOfRange].
func Empty() Store {
	return empty{}
}

func (empty) ReadAt(p []byte, off int64) (int, error) {
	if len(p) == 0 && off == 0 {
		return 0, nil
	}

	return 0, fmt.Errorf("%w: offset %d, length %d, size 0", ErrOutOfRange, off, len(p))
}

func (empty) Size() int64 { return 0 }
func (empty) Close() error { return nil }

// Compile-time interface checks.
var (
	_ Store = (*file)(nil)
	_ Store = empty{}
)
