package segedit

import (
	"fmt"

	"github.com/segedit/segedit/internal/backing"
)

// model is one entry in a session's checkpoint stack: a backing store, the
// ordered segment list that partitions the logical file built on top of
// it, and the change/undo-change stacks recorded against it. A fresh
// session has exactly one model (the root); CreateCheckpoint pushes
// another; only the top model accepts edits.
//
// Grounded on original_source's omega_edit_model_t and the segment-list
// algorithm in edit.cpp's update_model_helper_ / update_model_.
type model struct {
	store        backing.Store
	storePath    string // "" for an in-memory/no-path root model
	isCheckpoint bool

	segments      []*segment
	size          int64 // cached sum of segments' computedLength
	changes       []*Change
	changesUndone []*Change
}

func newModel(store backing.Store, path string, isCheckpoint bool) *model {
	m := &model{store: store, storePath: path, isCheckpoint: isCheckpoint}
	m.resetSegments()

	return m
}

// resetSegments discards the segment list and replaces it with a single
// READ segment spanning the whole backing store, as a fresh model or a
// Clear always starts out.
func (m *model) resetSegments() {
	size := m.store.Size()
	m.segments = nil
	m.size = size

	if size > 0 {
		root := rootChange(size)
		m.segments = append(m.segments, &segment{
			kind:           SegmentRead,
			computedOffset: 0,
			computedLength: size,
			changeOffset:   0,
			change:         root,
		})
	}
}

func (m *model) logicalSize() int64 { return m.size }

// clear resets the model to its just-opened state: one READ segment over
// the backing store, and empty change/undo stacks.
func (m *model) clear() {
	m.resetSegments()
	m.changes = nil
	m.changesUndone = nil
}

// apply appends change to the model's change stack and folds it into the
// segment list. Called for every freshly-accepted edit and for redo (which
// reuses the same forward-application path).
func (m *model) apply(change *Change) error {
	segs, delta, err := applyToSegments(m.segments, change)
	if err != nil {
		return err
	}

	m.segments = segs
	m.size += delta
	m.changes = append(m.changes, change)

	return nil
}

// rebuild replays every change still on the change stack against a fresh
// segment list. Used by undo, which removes a change (or a whole
// transaction group) from the middle — logically the end — of the applied
// sequence and must recompute the list from scratch rather than try to
// invert the edit in place.
func (m *model) rebuild() error {
	m.resetSegments()

	for _, c := range m.changes {
		segs, delta, err := applyToSegments(m.segments, c)
		if err != nil {
			return err
		}

		m.segments = segs
		m.size += delta
	}

	return nil
}

// applyToSegments folds change into segs, returning the new segment slice
// and the net change in logical size. An OVERWRITE is modeled, as in
// original_source, as a synthetic zero-serial DELETE of the overwritten
// span immediately followed by the real INSERT of the replacement bytes.
func applyToSegments(segs []*segment, change *Change) ([]*segment, int64, error) {
	if change.kind == KindOverwrite {
		del := syntheticDelete(change.offset, change.length)

		var err error

		segs, _, err = applyHelper(segs, del)
		if err != nil {
			return nil, 0, err
		}

		segs, _, err = applyHelper(segs, newInsert(change.serial, change.offset, change.bytes, change.txGroup))
		if err != nil {
			return nil, 0, err
		}

		return segs, 0, nil
	}

	segs, delta, err := applyHelper(segs, change)
	if err != nil {
		return nil, 0, err
	}

	return segs, delta, nil
}

// applyHelper is the segment-list edit primitive: it locates the
// segment(s) change.offset/change.length cover, splitting at the edit
// boundary if the offset doesn't already land on one, then either removes
// the deleted span or inserts a new INSERT segment for the payload.
//
// Ported directly from original_source's update_model_helper_: same
// split-then-splice structure, same boundary-attaches-cleanly rule (an
// edit exactly at a segment's start or end never splits it).
func applyHelper(segs []*segment, change *Change) ([]*segment, int64, error) {
	if len(segs) == 0 {
		if change.kind == KindDelete {
			return segs, 0, nil
		}

		ns := &segment{kind: SegmentInsert, computedOffset: change.offset, computedLength: change.length, change: change}

		return append(segs, ns), change.length, nil
	}

	readOffset := int64(0)

	for i := range segs {
		seg := segs[i]
		if readOffset != seg.computedOffset {
			return nil, 0, fmt.Errorf("%w: segment %d expected offset %d, has %d", ErrInvariantViolation, i, readOffset, seg.computedOffset)
		}

		if change.offset < readOffset || change.offset > readOffset+seg.computedLength {
			readOffset += seg.computedLength

			continue
		}

		idx := i

		if delta := change.offset - seg.computedOffset; delta != 0 {
			if delta == seg.computedLength {
				idx = i + 1
			} else {
				split := seg.clone()
				split.computedOffset += delta
				split.computedLength -= delta
				split.changeOffset += delta

				seg.computedLength = delta

				segs = append(segs, nil)
				copy(segs[i+2:], segs[i+1:])
				segs[i+1] = split
				idx = i + 1
			}
		}

		switch change.kind {
		case KindDelete:
			return deleteAt(segs, idx, change.length), -change.length, nil
		case KindInsert, KindOverwrite:
			ns := &segment{kind: SegmentInsert, computedOffset: change.offset, computedLength: change.length, change: change}

			segs = append(segs, nil)
			copy(segs[idx+1:], segs[idx:])
			segs[idx] = ns

			for k := idx + 1; k < len(segs); k++ {
				segs[k].computedOffset += change.length
			}

			return segs, change.length, nil
		}

		return nil, 0, fmt.Errorf("%w: unhandled change kind %v", ErrInvariantViolation, change.kind)
	}

	return nil, 0, fmt.Errorf("%w: offset %d beyond end of segment list", ErrInvariantViolation, change.offset)
}

// deleteAt removes deleteLen logical bytes starting at segs[idx], trimming
// the segment boundary segments as needed and shifting every later
// segment's computedOffset left by deleteLen.
func deleteAt(segs []*segment, idx int, deleteLen int64) []*segment {
	remaining := deleteLen
	j := idx

	for remaining > 0 && j < len(segs) {
		if segs[j].computedLength <= remaining {
			remaining -= segs[j].computedLength
			segs = append(segs[:j], segs[j+1:]...)

			continue
		}

		segs[j].computedLength -= remaining
		segs[j].computedOffset += remaining - deleteLen
		segs[j].changeOffset += remaining
		remaining = 0
		j++
	}

	for ; j < len(segs); j++ {
		segs[j].computedOffset -= deleteLen
	}

	return segs
}
