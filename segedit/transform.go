package segedit

import (
	"fmt"
	"io"
)

// ByteTransform maps the byte at logical offset to a replacement byte.
// ApplyByteTransform calls it once for each offset inside the transformed
// range, in increasing offset order.
type ByteTransform func(offset int64, b byte) byte

// ApplyByteTransform streams the session's current logical content through
// a new checkpointed model, one chunk at a time, applying transform only to
// bytes inside [offset, offset+length) and copying everything outside that
// window through unchanged — out-of-core (no more than one chunk is ever
// held in memory) and atomic (the old model and its full change history
// remain live and reachable via DestroyLastCheckpoint until the new one is
// fully written and opened).
//
// An involution transform (XOR with a fixed key, a self-inverse byte
// substitution) applied twice over the same range returns that range's
// content to its prior state, modulo the checkpoint layer each application
// pushes.
//
// Grounded on original_source's omega_edit_apply_transform.
func (s *Session) ApplyByteTransform(transform ByteTransform, offset, length int64) error {
	if s.closed {
		return ErrSessionClosed
	}

	top := s.top()

	size := top.logicalSize()
	if offset < 0 || offset > size {
		return ErrInvalidOffset
	}

	if length < 0 {
		return ErrInvalidLength
	}

	if remaining := size - offset; length > remaining {
		length = remaining
	}

	if err := s.pushFlattenedModel(func(w io.Writer) error {
		return writeTransformed(top, transform, offset, length, w)
	}); err != nil {
		return err
	}

	s.contentGeneration++

	s.notify(EventTransform, nil)
	s.notifyViewports(ViewportEventTransform, nil)

	return nil
}

// writeTransformed streams the whole of m's logical content to w, applying
// transform only to the [rangeOffset, rangeOffset+rangeLength) window so
// the rest of the file passes through untouched.
func writeTransformed(m *model, transform ByteTransform, rangeOffset, rangeLength int64, w io.Writer) error {
	buf := make([]byte, writeChunkSize)
	size := m.logicalSize()
	rangeEnd := rangeOffset + rangeLength

	for offset := int64(0); offset < size; {
		n := int64(writeChunkSize)
		if remaining := size - offset; n > remaining {
			n = remaining
		}

		if _, err := m.project(offset, n, buf[:n]); err != nil {
			return err
		}

		lo := offset
		if lo < rangeOffset {
			lo = rangeOffset
		}

		hi := offset + n
		if hi > rangeEnd {
			hi = rangeEnd
		}

		for i := lo; i < hi; i++ {
			buf[i-offset] = transform(i, buf[i-offset])
		}

		if _, err := w.Write(buf[:n]); err != nil {
			return fmt.Errorf("segedit: write transformed: %w", err)
		}

		offset += n
	}

	return nil
}
