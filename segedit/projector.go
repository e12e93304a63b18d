package segedit

import (
	"fmt"
	"io"

	"github.com/segedit/segedit/internal/backing"
)

// project materializes length logical bytes starting at offset into buf
// (which must have capacity >= length) by walking the segment list and
// reading each covered segment from its source: the backing store for a
// SegmentRead, the owning change's payload for a SegmentInsert.
//
// Grounded on original_source's save loop in edit.cpp (the same
// segment-walk that drives omega_edit_save) generalized to an arbitrary
// sub-range instead of the whole file, for use by viewports, search, the
// byte-frequency profile, and byte transforms.
func (m *model) project(offset, length int64, buf []byte) (int, error) {
	if length == 0 {
		return 0, nil
	}

	end := offset + length
	written := 0
	readOffset := int64(0)

	for _, seg := range m.segments {
		segEnd := readOffset + seg.computedLength

		if segEnd <= offset {
			readOffset = segEnd

			continue
		}

		if readOffset >= end {
			break
		}

		// Overlap of [offset, end) with [readOffset, segEnd).
		startInSeg := int64(0)
		if offset > readOffset {
			startInSeg = offset - readOffset
		}

		stopInSeg := seg.computedLength
		if segEnd > end {
			stopInSeg = end - readOffset
		}

		n := int(stopInSeg - startInSeg)
		if n > 0 {
			dst := buf[written : written+n]
			srcOffset := seg.changeOffset + startInSeg

			var err error

			switch seg.kind {
			case SegmentRead:
				err = readFull(m.store, dst, srcOffset)
			case SegmentInsert:
				if srcOffset < 0 || srcOffset+int64(n) > int64(len(seg.change.bytes)) {
					err = fmt.Errorf("%w: insert segment change-offset %d length %d exceeds payload %d", ErrInvariantViolation, srcOffset, n, len(seg.change.bytes))
				} else {
					copy(dst, seg.change.bytes[srcOffset:srcOffset+int64(n)])
				}
			}

			if err != nil {
				return written, fmt.Errorf("segedit: project at %d: %w", offset+int64(written), err)
			}

			written += n
		}

		readOffset = segEnd
	}

	return written, nil
}

// writeTo streams the model's full logical content to w, segment by
// segment, without ever materializing more than one chunk in memory at a
// time — the same out-of-core access pattern project uses for a bounded
// range, generalized to the whole file for Save and checkpoint
// materialization.
//
// Grounded on original_source's omega_edit_save segment walk.
func (m *model) writeTo(w io.Writer) error {
	var buf []byte

	for _, seg := range m.segments {
		switch seg.kind {
		case SegmentRead:
			if err := copyFromStore(w, m.store, seg.changeOffset, seg.computedLength, &buf); err != nil {
				return err
			}
		case SegmentInsert:
			start := seg.changeOffset
			end := start + seg.computedLength

			if start < 0 || end > int64(len(seg.change.bytes)) {
				return fmt.Errorf("%w: insert segment change-offset %d length %d exceeds payload %d", ErrInvariantViolation, start, seg.computedLength, len(seg.change.bytes))
			}

			if _, err := w.Write(seg.change.bytes[start:end]); err != nil {
				return fmt.Errorf("segedit: write: %w", err)
			}
		}
	}

	return nil
}

const writeChunkSize = 1 << 20

// readFull fills dst completely from store starting at offset, looping over
// short reads the way io.ReadFull loops over an io.Reader: backing.Store's
// contract (like io.ReaderAt) allows a call to return fewer bytes than
// requested, with no error, when the underlying medium only has that many
// ready at once — backing.Chaos's PartialReadRate exists specifically to
// make callers exercise this path instead of assuming one call suffices.
func readFull(store backing.Store, dst []byte, offset int64) error {
	for len(dst) > 0 {
		n, err := store.ReadAt(dst, offset)
		if err != nil {
			return err
		}

		if n == 0 {
			return fmt.Errorf("%w: store.ReadAt at %d returned 0 bytes with no error", ErrInvariantViolation, offset)
		}

		dst = dst[n:]
		offset += int64(n)
	}

	return nil
}

func copyFromStore(w io.Writer, store backing.Store, offset, length int64, buf *[]byte) error {
	if cap(*buf) < writeChunkSize {
		*buf = make([]byte, writeChunkSize)
	}

	for length > 0 {
		n := int64(writeChunkSize)
		if n > length {
			n = length
		}

		b := (*buf)[:n]

		if err := readFull(store, b, offset); err != nil {
			return fmt.Errorf("segedit: read at %d: %w", offset, err)
		}

		if _, err := w.Write(b); err != nil {
			return fmt.Errorf("segedit: write: %w", err)
		}

		offset += n
		length -= n
	}

	return nil
}
