package segedit

import (
	"io"
	"os"
	"path/filepath"

	"github.com/segedit/segedit/internal/backing"
	"github.com/segedit/segedit/internal/fsutil"
)

type transactionState int

const (
	txNone transactionState = iota
	txOpen
	txInProgress
)

// SessionOptions configures a new Session.
type SessionOptions struct {
	// Path is the backing file to edit. Empty starts from a zero-length
	// logical file (a session with nothing to insert into but itself).
	Path string

	// CheckpointDir is where checkpoint and byte-transform temp files are
	// materialized. Defaults to Path's directory, or os.TempDir() when
	// Path is empty.
	CheckpointDir string

	EventCallback SessionEventCallback
	EventInterest SessionEventMask

	UserData any
}

// Session is the top-level handle a caller holds: a stack of models (the
// root plus zero or more checkpoints), the viewports watching it, and the
// event/transaction/pause state that governs how edits are accepted.
//
// A Session is not safe for concurrent mutation; see the package doc
// comment's Concurrency section.
//
// Grounded on original_source's omega_session_t and the session-level
// functions in src/lib/edit.cpp.
type Session struct {
	models        []*model
	viewports     []*Viewport
	checkpointDir string

	eventCallback SessionEventCallback
	eventInterest SessionEventMask

	changePaused            bool
	viewportCallbacksPaused bool

	txState        transactionState
	txGroupCounter int64
	currentTxGroup int64

	nextSerial           int64
	numChangesAdjustment int64
	searchContexts       int

	// contentGeneration increments on every operation that changes the
	// top model's logical content (accepted edit, undo, redo, clear, byte
	// transform, or checkpoint push or pop). SearchContext uses it to tell a cached tile from
	// a stale one instead of scanning bytes from before a mid-scan edit.
	contentGeneration int64

	userData any
	closed   bool
}

// NewSession opens a session over opts.Path (or an empty logical file if
// Path is unset).
func NewSession(opts SessionOptions) (*Session, error) {
	var store backing.Store

	dir := opts.CheckpointDir

	if opts.Path != "" {
		s, err := backing.Open(opts.Path)
		if err != nil {
			return nil, err
		}

		store = s

		if dir == "" {
			dir = filepath.Dir(opts.Path)
		}
	} else {
		store = backing.Empty()

		if dir == "" {
			dir = os.TempDir()
		}
	}

	s := &Session{
		models:        []*model{newModel(store, "", false)},
		checkpointDir: dir,
		eventCallback: opts.EventCallback,
		eventInterest: opts.EventInterest,
		nextSerial:    1,
		userData:      opts.UserData,
	}

	s.notify(EventCreate, nil)

	return s, nil
}

// Close releases the backing stores held by the session, including every
// checkpoint's flattened temp file. After Close, every other method that
// returns an error returns ErrSessionClosed.
func (s *Session) Close() error {
	if s.closed {
		return nil
	}

	s.closed = true

	var firstErr error

	for i, m := range s.models {
		if err := m.store.Close(); err != nil && firstErr == nil {
			firstErr = err
		}

		if i > 0 && m.storePath != "" {
			_ = os.Remove(m.storePath)
		}
	}

	return firstErr
}

func (s *Session) top() *model { return s.models[len(s.models)-1] }

// UserData returns the caller value supplied in SessionOptions (or set via
// SetUserData).
func (s *Session) UserData() any { return s.userData }

// SetUserData attaches an arbitrary caller value to the session.
func (s *Session) SetUserData(v any) { s.userData = v }

// SetEventInterest replaces the session's event subscription mask.
func (s *Session) SetEventInterest(mask SessionEventMask) { s.eventInterest = mask }

// PauseChanges makes Insert/Overwrite/Delete/Undo/Redo/Clear succeed
// silently with no effect until ResumeChanges.
func (s *Session) PauseChanges() {
	s.changePaused = true
	s.notify(EventChangesPaused, nil)
}

// ResumeChanges undoes PauseChanges.
func (s *Session) ResumeChanges() {
	s.changePaused = false
	s.notify(EventChangesResumed, nil)
}

// PauseViewportCallbacks suppresses viewport event callbacks (the
// viewports themselves still refresh) until ResumeViewportCallbacks.
func (s *Session) PauseViewportCallbacks() { s.viewportCallbacksPaused = true }

// ResumeViewportCallbacks undoes PauseViewportCallbacks.
func (s *Session) ResumeViewportCallbacks() { s.viewportCallbacksPaused = false }

// GetComputedFileSize returns the current logical file size: the backing
// store's size plus every accepted insert, minus every accepted delete.
func (s *Session) GetComputedFileSize() int64 { return s.top().logicalSize() }

// NumChanges returns the number of active (undoable) changes, including
// those recorded against checkpoints below the current top model.
func (s *Session) NumChanges() int64 {
	return s.numChangesAdjustment + int64(len(s.top().changes))
}

// NumUndoneChanges returns the number of changes on the top model's redo
// stack.
func (s *Session) NumUndoneChanges() int64 { return int64(len(s.top().changesUndone)) }

// NumViewports returns the number of live viewports on this session.
func (s *Session) NumViewports() int { return len(s.viewports) }

// NumCheckpoints returns the number of checkpoints pushed on top of the
// root model.
func (s *Session) NumCheckpoints() int { return len(s.models) - 1 }

// NumChangeTransactions returns the number of BeginTransaction/
// EndTransaction groups that recorded at least one change, across the
// life of the session.
func (s *Session) NumChangeTransactions() int64 { return s.txGroupCounter }

// NumSearchContexts returns the number of SearchContext instances created
// by this session that have not yet been closed.
func (s *Session) NumSearchContexts() int { return s.searchContexts }

// LastChange returns the most recently accepted active change on the top
// model, or nil if there isn't one.
func (s *Session) LastChange() *Change {
	top := s.top()
	if len(top.changes) == 0 {
		return nil
	}

	return top.changes[len(top.changes)-1]
}

// LastUndo returns the most recently undone change on the top model, or
// nil if the redo stack is empty.
func (s *Session) LastUndo() *Change {
	top := s.top()
	if len(top.changesUndone) == 0 {
		return nil
	}

	return top.changesUndone[len(top.changesUndone)-1]
}

// Change looks up a change by serial, active or undone (a negative serial
// and its positive counterpart both resolve to the same record). It
// returns nil if no change with that serial exists on the top model.
func (s *Session) Change(serial int64) *Change {
	if serial == 0 {
		return nil
	}

	want := abs64(serial)
	top := s.top()

	for _, c := range top.changes {
		if abs64(c.serial) == want {
			return c
		}
	}

	for _, c := range top.changesUndone {
		if abs64(c.serial) == want {
			return c
		}
	}

	return nil
}

// Segments returns introspection info for every segment overlapping
// [offset, offset+length) of the top model's logical file.
func (s *Session) Segments(offset, length int64) []SegmentInfo {
	top := s.top()
	end := offset + length

	var out []SegmentInfo

	readOffset := int64(0)

	for _, seg := range top.segments {
		segEnd := readOffset + seg.computedLength

		if segEnd > offset && readOffset < end {
			out = append(out, seg.info())
		}

		readOffset = segEnd
		if readOffset >= end {
			break
		}
	}

	return out
}

// Clear discards every change on the top model, reverting it to its
// just-opened state. It does not affect checkpoints below the top model.
func (s *Session) Clear() error {
	if s.closed {
		return ErrSessionClosed
	}

	if s.changePaused {
		return nil
	}

	s.top().clear()
	s.contentGeneration++
	s.notify(EventClear, nil)

	for _, v := range s.viewports {
		if err := v.refresh(); err != nil {
			return err
		}

		v.dirty = true
		v.notify(ViewportEventClear, nil)
	}

	return nil
}

// NotifyChangedViewports flushes a ViewportEventChanges notification to
// every viewport whose buffer has changed since its last flush (or since
// creation), without requiring a callback per intervening edit. Useful
// for a caller that wants one batched notification per caller-driven
// cycle instead of one per Insert/Overwrite/Delete/Undo/Redo.
func (s *Session) NotifyChangedViewports() {
	for _, v := range s.viewports {
		if !v.dirty {
			continue
		}

		v.dirty = false
		v.notify(ViewportEventChanges, nil)
	}
}

// BeginTransaction opens a transaction: every edit accepted before the
// matching EndTransaction is recorded as one group, undone or redone
// together by a single Undo/Redo call.
func (s *Session) BeginTransaction() error {
	if s.closed {
		return ErrSessionClosed
	}

	if s.txState != txNone {
		return ErrTransactionAlreadyOpen
	}

	s.txState = txOpen
	s.notify(EventTransactionBegin, nil)

	return nil
}

// EndTransaction closes the currently open transaction.
func (s *Session) EndTransaction() error {
	if s.closed {
		return ErrSessionClosed
	}

	if s.txState == txNone {
		return ErrNoTransaction
	}

	s.txState = txNone
	s.currentTxGroup = 0
	s.notify(EventTransactionEnd, nil)

	return nil
}

func (s *Session) nextChangeTxGroup() int64 {
	switch s.txState {
	case txOpen:
		s.txGroupCounter++
		s.currentTxGroup = s.txGroupCounter
		s.txState = txInProgress

		return s.currentTxGroup
	case txInProgress:
		return s.currentTxGroup
	default:
		return 0
	}
}

// Insert inserts bytes at offset. offset must be within [0, size]
// (inserting at size appends). Returns the new change's serial, or 0 if
// the session is paused or the arguments fail validation.
func (s *Session) Insert(offset int64, bytes []byte) (int64, error) {
	if s.closed {
		return 0, ErrSessionClosed
	}

	if s.changePaused {
		return 0, nil
	}

	size := s.top().logicalSize()
	if offset < 0 || offset > size || len(bytes) == 0 {
		return 0, nil
	}

	payload := append([]byte(nil), bytes...)
	serial := s.nextSerial
	s.nextSerial++

	return s.acceptNew(newInsert(serial, offset, payload, s.nextChangeTxGroup()))
}

// Overwrite overwrites up to len(bytes) bytes starting at offset. offset
// must be within [0, size). The write is silently truncated rather than
// extending the file if it would run past the current end.
func (s *Session) Overwrite(offset int64, bytes []byte) (int64, error) {
	if s.closed {
		return 0, ErrSessionClosed
	}

	if s.changePaused {
		return 0, nil
	}

	size := s.top().logicalSize()
	if offset < 0 || offset >= size || len(bytes) == 0 {
		return 0, nil
	}

	payload := bytes
	if maxLen := size - offset; int64(len(payload)) > maxLen {
		payload = payload[:maxLen]
	}

	payload = append([]byte(nil), payload...)
	serial := s.nextSerial
	s.nextSerial++

	return s.acceptNew(newOverwrite(serial, offset, payload, s.nextChangeTxGroup()))
}

// Delete removes up to length bytes starting at offset. offset must be
// within [0, size). length is silently clamped to the number of bytes
// actually available.
func (s *Session) Delete(offset, length int64) (int64, error) {
	if s.closed {
		return 0, ErrSessionClosed
	}

	if s.changePaused {
		return 0, nil
	}

	size := s.top().logicalSize()
	if offset < 0 || offset >= size || length <= 0 {
		return 0, nil
	}

	if length > size-offset {
		length = size - offset
	}

	serial := s.nextSerial
	s.nextSerial++

	return s.acceptNew(newDelete(serial, offset, length, s.nextChangeTxGroup()))
}

// acceptNew folds a freshly constructed change into the top model,
// invalidates the redo stack (a new edit after an undo discards the
// undone future, same as any conventional editor), refreshes viewports,
// and emits EventEdit.
func (s *Session) acceptNew(change *Change) (int64, error) {
	if err := s.top().apply(change); err != nil {
		return 0, err
	}

	s.top().changesUndone = nil
	s.contentGeneration++

	for _, v := range s.viewports {
		if err := v.onChange(change, true, ViewportEventEdit); err != nil {
			return 0, err
		}
	}

	s.notify(EventEdit, change)

	return change.serial, nil
}

// Undo reverts the most recently accepted change, or the whole group of
// changes recorded in a single transaction if the top of the change stack
// belongs to one. Returns the (now-negative) serial of the change undone,
// or 0 if there was nothing to undo.
func (s *Session) Undo() (int64, error) {
	if s.closed {
		return 0, ErrSessionClosed
	}

	if s.changePaused {
		return 0, nil
	}

	top := s.top()
	if len(top.changes) == 0 {
		return 0, nil
	}

	var popped []*Change

	top.changes, popped = popGroup(top.changes)

	if err := top.rebuild(); err != nil {
		return 0, err
	}

	s.contentGeneration++

	for _, c := range popped {
		c.serial = -c.serial
	}

	top.changesUndone = append(top.changesUndone, popped...)

	for _, c := range popped {
		for _, v := range s.viewports {
			if err := v.onChange(c, false, ViewportEventUndo); err != nil {
				return 0, err
			}
		}
	}

	last := popped[len(popped)-1]
	s.notify(EventUndo, last)

	return last.serial, nil
}

// Redo reapplies the most recently undone change or transaction group.
// Returns the (now-positive) serial of the change redone, or 0 if there
// was nothing to redo.
func (s *Session) Redo() (int64, error) {
	if s.closed {
		return 0, ErrSessionClosed
	}

	if s.changePaused {
		return 0, nil
	}

	top := s.top()
	if len(top.changesUndone) == 0 {
		return 0, nil
	}

	var popped []*Change

	top.changesUndone, popped = popGroup(top.changesUndone)

	for _, c := range popped {
		c.serial = -c.serial

		if err := top.apply(c); err != nil {
			return 0, err
		}

		s.contentGeneration++

		for _, v := range s.viewports {
			if err := v.onChange(c, true, ViewportEventEdit); err != nil {
				return 0, err
			}
		}
	}

	last := popped[len(popped)-1]
	s.notify(EventRedo, last)

	return last.serial, nil
}

// popGroup pops the trailing run of changes sharing a common non-zero
// txGroup off the tail of stack (a single change if the tail change isn't
// part of a transaction), returning the remaining stack and the popped
// changes in their original application order (oldest first).
func popGroup(stack []*Change) ([]*Change, []*Change) {
	n := len(stack)
	if n == 0 {
		return stack, nil
	}

	group := stack[n-1].txGroup
	start := n - 1

	if group != 0 {
		for start > 0 && stack[start-1].txGroup == group {
			start--
		}
	}

	popped := append([]*Change(nil), stack[start:]...)

	return stack[:start], popped
}

// notifyViewports marks every viewport dirty and fires event on it with
// no change record. Used by operations that replace the top model's
// content wholesale (ApplyByteTransform) rather than folding in one
// Change that onChange's affects/adjustFloating logic can reason about.
func (s *Session) notifyViewports(event ViewportEventMask, change *Change) {
	for _, v := range s.viewports {
		v.dirty = true
		v.notify(event, change)
	}
}

func abs64(x int64) int64 {
	if x < 0 {
		return -x
	}

	return x
}

// pushFlattenedModel materializes write's output to a fresh temp file in
// checkpointDir, opens it as a backing store, and pushes a new model over
// it. Shared by CreateCheckpoint (a straight copy of current content) and
// ApplyByteTransform (a transformed copy).
func (s *Session) pushFlattenedModel(write func(io.Writer) error) error {
	top := s.top()

	tmpPath, err := fsutil.MaterializeCheckpoint(s.checkpointDir, write)
	if err != nil {
		return err
	}

	store, err := backing.Open(tmpPath)
	if err != nil {
		return err
	}

	s.numChangesAdjustment += int64(len(top.changes))
	s.models = append(s.models, newModel(store, tmpPath, true))

	for _, v := range s.viewports {
		if err := v.refresh(); err != nil {
			return err
		}
	}

	return nil
}

// CreateCheckpoint flattens the session's current logical content into a
// new temp file and pushes a fresh model over it. Further edits apply to
// the new top model; the checkpointed model and its full change history
// remain intact below it, reachable again via DestroyLastCheckpoint.
func (s *Session) CreateCheckpoint() error {
	if s.closed {
		return ErrSessionClosed
	}

	if err := s.pushFlattenedModel(s.top().writeTo); err != nil {
		return err
	}

	s.contentGeneration++
	s.notify(EventCreateCheckpoint, nil)

	return nil
}

// DestroyLastCheckpoint discards the top model — and every edit made
// against it — and resumes editing the model it was checkpointed from.
func (s *Session) DestroyLastCheckpoint() error {
	if s.closed {
		return ErrSessionClosed
	}

	if len(s.models) <= 1 {
		return ErrNoCheckpoint
	}

	last := s.models[len(s.models)-1]
	s.models = s.models[:len(s.models)-1]
	s.numChangesAdjustment -= int64(len(last.changes))

	_ = last.store.Close()

	if last.storePath != "" {
		_ = os.Remove(last.storePath)
	}

	s.contentGeneration++
	s.notify(EventDestroyCheckpoint, nil)

	for _, v := range s.viewports {
		if err := v.refresh(); err != nil {
			return err
		}
	}

	return nil
}

// Save writes the session's current logical content to path, without
// materializing it in memory, and returns the path actually written to.
// If overwrite is false and path already exists, Save derives an
// available sibling filename instead of failing.
func (s *Session) Save(path string, overwrite bool) (string, error) {
	if s.closed {
		return "", ErrSessionClosed
	}

	finalPath, err := fsutil.Save(path, overwrite, s.top().writeTo)
	if err != nil {
		return "", err
	}

	s.notify(EventSave, nil)

	return finalPath, nil
}
