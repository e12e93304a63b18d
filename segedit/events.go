package segedit

// SessionEventMask is a bitmask of session-level events a caller registers
// interest in via SessionOptions.EventInterest / Session.SetEventInterest.
// Grounded on original_source's omega_edit/session.h event bit values.
type SessionEventMask uint32

const (
	// EventCreate fires once, synchronously, at the end of NewSession.
	EventCreate SessionEventMask = 1 << iota
	EventEdit
	EventUndo
	EventRedo
	EventClear
	EventTransactionBegin
	EventTransactionEnd
	EventCreateCheckpoint
	EventDestroyCheckpoint
	EventCreateViewport
	EventDestroyViewport
	EventSave

	// EventTransform fires on a completed ApplyByteTransform, distinct
	// from EventEdit since a transform replaces the whole top model
	// rather than recording an undoable change against it.
	EventTransform

	// EventChangesPaused and EventChangesResumed fire from PauseChanges
	// and ResumeChanges respectively.
	EventChangesPaused
	EventChangesResumed

	// EventAll matches every event kind; passing it as EventInterest
	// subscribes to everything.
	EventAll = EventCreate | EventEdit | EventUndo | EventRedo | EventClear |
		EventTransactionBegin | EventTransactionEnd |
		EventCreateCheckpoint | EventDestroyCheckpoint |
		EventCreateViewport | EventDestroyViewport | EventSave |
		EventTransform | EventChangesPaused | EventChangesResumed
)

// SessionEventCallback is invoked after a session-level event the session
// is subscribed to. change is nil for events with no associated change
// record (Clear, transaction boundaries, checkpoint/viewport lifecycle,
// Save).
type SessionEventCallback func(session *Session, event SessionEventMask, change *Change)

// ViewportEventMask is a bitmask of viewport-level events.
type ViewportEventMask uint32

const (
	// ViewportEventCreate fires once, synchronously, when a viewport is
	// first populated by NewViewport.
	ViewportEventCreate ViewportEventMask = 1 << iota

	// ViewportEventEdit fires when an Insert/Overwrite/Delete/Redo
	// invalidates and refreshes the viewport's buffer.
	ViewportEventEdit

	// ViewportEventUndo fires when an Undo invalidates and refreshes the
	// viewport's buffer.
	ViewportEventUndo

	// ViewportEventClear fires when Session.Clear refreshes the viewport.
	ViewportEventClear

	// ViewportEventTransform fires when ApplyByteTransform swaps in a
	// transformed model and refreshes the viewport.
	ViewportEventTransform

	// ViewportEventModify fires when Viewport.Modify changes the
	// viewport's offset, capacity, or floating/fixed mode.
	ViewportEventModify

	// ViewportEventChanges fires when Session.NotifyChangedViewports
	// flushes a dirty viewport.
	ViewportEventChanges

	ViewportEventAll = ViewportEventCreate | ViewportEventEdit | ViewportEventUndo |
		ViewportEventClear | ViewportEventTransform | ViewportEventModify | ViewportEventChanges
)

// ViewportEventCallback is invoked after a viewport-level event the
// viewport is subscribed to.
type ViewportEventCallback func(viewport *Viewport, event ViewportEventMask, change *Change)

func (s *Session) notify(event SessionEventMask, change *Change) {
	if s.eventCallback == nil || s.eventInterest&event == 0 {
		return
	}

	s.eventCallback(s, event, change)
}

func (v *Viewport) notify(event ViewportEventMask, change *Change) {
	if v.callback == nil || v.interest&event == 0 {
		return
	}

	if v.session != nil && v.session.viewportCallbacksPaused {
		return
	}

	v.callback(v, event, change)
}
