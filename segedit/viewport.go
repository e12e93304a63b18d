package segedit

// Viewport is a capacity-bounded window onto a session's current logical
// file contents, kept up to date as edits are accepted.
//
// A fixed viewport's Offset never moves: as bytes are inserted or deleted
// before it, the bytes it displays change, but the offset it reads from
// does not. A floating viewport instead tracks the same logical content:
// its effective offset shifts by offsetAdjustment so it keeps pointing at
// the same bytes even as everything before it moves.
//
// Grounded on original_source's src/lib/viewport.cpp and
// omega_edit/viewport.h.
type Viewport struct {
	session *Session

	baseOffset       int64
	isFloating       bool
	offsetAdjustment int64
	capacity         int64

	data  []byte
	dirty bool

	userData any
	callback ViewportEventCallback
	interest ViewportEventMask
}

// NewViewport creates a viewport over session starting at offset with room
// for capacity bytes, and immediately populates it from current content.
func (s *Session) NewViewport(offset, capacity int64, floating bool, callback ViewportEventCallback, interest ViewportEventMask) (*Viewport, error) {
	if s.closed {
		return nil, ErrSessionClosed
	}

	if offset < 0 {
		return nil, ErrInvalidOffset
	}

	if capacity <= 0 || capacity > ViewportCapacityLimit {
		return nil, ErrCapacityOutOfRange
	}

	v := &Viewport{
		session:          s,
		baseOffset:       offset,
		isFloating:       floating,
		offsetAdjustment: 0,
		capacity:         capacity,
		data:             make([]byte, 0, capacity),
		callback:         callback,
		interest:         interest,
	}

	if err := v.refresh(); err != nil {
		return nil, err
	}

	s.viewports = append(s.viewports, v)
	v.notify(ViewportEventCreate, nil)
	s.notify(EventCreateViewport, nil)

	return v, nil
}

// Modify changes v's offset, capacity, and floating/fixed mode in place.
// offsetAdjustment is always reset to 0, since the new offset is a fresh
// anchor rather than a continuation of whatever drift a prior floating
// window had accumulated. The buffer is reallocated only if capacity
// actually changes. Resizing, relocating, or flipping floating/fixed
// this way is not equivalent to destroying and recreating the viewport:
// the caller's *Viewport identity, callback, interest mask, and user
// data all survive.
//
// Grounded on original_source's omega_edit_modify_viewport.
func (v *Viewport) Modify(offset, capacity int64, floating bool) error {
	if v.session == nil || v.session.closed {
		return ErrSessionClosed
	}

	if offset < 0 {
		return ErrInvalidOffset
	}

	if capacity <= 0 || capacity > ViewportCapacityLimit {
		return ErrCapacityOutOfRange
	}

	v.baseOffset = offset
	v.isFloating = floating
	v.offsetAdjustment = 0

	if capacity != v.capacity {
		v.capacity = capacity
		v.data = make([]byte, 0, capacity)
	}

	if err := v.refresh(); err != nil {
		return err
	}

	v.dirty = true
	v.notify(ViewportEventModify, nil)

	return nil
}

// DestroyViewport removes v from the session. After this call v must not
// be used.
func (s *Session) DestroyViewport(v *Viewport) {
	for i, candidate := range s.viewports {
		if candidate == v {
			s.viewports = append(s.viewports[:i], s.viewports[i+1:]...)
			v.session = nil
			s.notify(EventDestroyViewport, nil)

			return
		}
	}
}

// Offset returns the viewport's current effective offset: the fixed base
// offset it was created with, or for a floating viewport, that base offset
// adjusted for every insert/delete that has shifted content before it.
func (v *Viewport) Offset() int64 {
	if v.isFloating {
		return v.baseOffset + v.offsetAdjustment
	}

	return v.baseOffset
}

// Capacity returns the maximum number of bytes the viewport will buffer.
func (v *Viewport) Capacity() int64 { return v.capacity }

// Length returns the number of bytes currently buffered, which is less
// than Capacity only when the viewport's window runs past the end of the
// logical file.
func (v *Viewport) Length() int64 { return int64(len(v.data)) }

// Data returns the viewport's current buffered bytes. The returned slice
// is owned by the viewport and is invalidated by the next edit; callers
// that need to retain it must copy it.
func (v *Viewport) Data() []byte { return v.data }

// IsFloating reports whether the viewport tracks content (floating) or a
// fixed logical offset.
func (v *Viewport) IsFloating() bool { return v.isFloating }

// HasChanges reports whether the viewport is dirty: its content has
// changed since it was created or since the last
// Session.NotifyChangedViewports flushed it. It does not re-project.
func (v *Viewport) HasChanges() bool {
	return v.dirty
}

// UserData returns the value last attached with SetUserData, or nil.
func (v *Viewport) UserData() any { return v.userData }

// SetUserData attaches an arbitrary caller value to the viewport.
func (v *Viewport) SetUserData(data any) { v.userData = data }

// Notify manually invokes v's event callback for event (subject to v's
// interest mask and the session's viewport-callback pause state), with no
// associated change record. Exposed for callers that want to report
// viewport-level activity of their own choosing rather than one driven by
// a Session edit.
func (v *Viewport) Notify(event ViewportEventMask) {
	v.notify(event, nil)
}

func (v *Viewport) refresh() error {
	m := v.session.top()
	offset := v.Offset()

	length := v.capacity
	if remaining := m.logicalSize() - offset; remaining < length {
		length = remaining
	}

	if length < 0 {
		length = 0
	}

	if int64(cap(v.data)) < v.capacity {
		v.data = make([]byte, v.capacity)
	}

	v.data = v.data[:length]

	n, err := m.project(offset, length, v.data)
	if err != nil {
		return err
	}

	v.data = v.data[:n]

	return nil
}

// affects reports whether change could have altered the bytes currently
// displayed by v. INSERT/DELETE affect the viewport whenever they occur at
// or before its trailing edge, since either can shift content into or out
// of view even when applied before the window starts. OVERWRITE only
// affects the viewport when its range intersects the window, checked as a
// closed interval on both sides so a change that lands exactly on the
// viewport's boundary (offset == end, or offset+length == start) still
// counts, matching original_source's change_affects_viewport_.
func (v *Viewport) affects(change *Change) bool {
	start := v.Offset()
	end := start + v.capacity

	switch change.kind {
	case KindOverwrite:
		return change.offset <= end && change.offset+change.length >= start
	default: // KindInsert, KindDelete
		return change.offset <= end
	}
}

// adjustFloating updates offsetAdjustment for a floating viewport in
// response to change being applied (forward=true, a normal edit or redo)
// or unwound (forward=false, an undo).
func (v *Viewport) adjustFloating(change *Change, forward bool) {
	if !v.isFloating {
		return
	}

	if change.offset > v.Offset() {
		return
	}

	sign := int64(1)
	if !forward {
		sign = -1
	}

	switch change.kind {
	case KindDelete:
		v.offsetAdjustment -= sign * change.length
	case KindInsert:
		v.offsetAdjustment += sign * change.length
	case KindOverwrite:
		// OVERWRITE never shifts positions.
	}
}

// onChange applies change's positional and content effects to v. forward
// is false only when change is being undone. kind is the viewport event
// fired if change actually affects v (ViewportEventEdit for a normal edit
// or redo, ViewportEventUndo for an undo).
func (v *Viewport) onChange(change *Change, forward bool, kind ViewportEventMask) error {
	v.adjustFloating(change, forward)

	if v.affects(change) {
		if err := v.refresh(); err != nil {
			return err
		}

		v.dirty = true
		v.notify(kind, change)
	}

	return nil
}
