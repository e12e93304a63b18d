package segedit

// Kind identifies the sort of edit a Change represents.
type Kind int

const (
	KindInsert Kind = iota
	KindOverwrite
	KindDelete
)

func (k Kind) String() string {
	switch k {
	case KindInsert:
		return "insert"
	case KindOverwrite:
		return "overwrite"
	case KindDelete:
		return "delete"
	default:
		return "unknown"
	}
}

// Change is an immutable record of a single accepted edit. Serial is
// positive while the change is active, negated while it sits on the undo
// stack, and zero for the two kinds of change no caller ever sees directly:
// the synthetic root READ change a fresh model is seeded with, and the
// synthetic DELETE change update_model_helper_ fabricates to model the
// "delete, then insert" decomposition of an overwrite.
//
// Grounded on original_source's change_def.hpp / edit.h change struct.
type Change struct {
	serial  int64
	kind    Kind
	offset  int64
	length  int64
	bytes   []byte // payload for INSERT/OVERWRITE; nil for DELETE and the root change
	txGroup int64  // 0 if not part of a transaction, else a session-assigned group id
}

// Serial returns the change's serial number. Positive means active,
// negative means undone, zero marks a synthetic change never exposed
// through Session.Change.
func (c *Change) Serial() int64 { return c.serial }

// Kind returns the edit kind this change represents.
func (c *Change) Kind() Kind { return c.kind }

// Offset returns the logical offset, at the time the change was accepted,
// the edit was applied at.
func (c *Change) Offset() int64 { return c.offset }

// Length returns the number of bytes the change inserted, overwrote, or
// deleted.
func (c *Change) Length() int64 { return c.length }

// Bytes returns the payload bytes for an INSERT or OVERWRITE change. It is
// nil for a DELETE change. Callers must not mutate the returned slice.
func (c *Change) Bytes() []byte { return c.bytes }

// InTransaction reports whether this change was recorded as part of a
// BeginTransaction/EndTransaction group.
func (c *Change) InTransaction() bool { return c.txGroup != 0 }

func newInsert(serial, offset int64, bytes []byte, txGroup int64) *Change {
	return &Change{serial: serial, kind: KindInsert, offset: offset, length: int64(len(bytes)), bytes: bytes, txGroup: txGroup}
}

func newOverwrite(serial, offset int64, bytes []byte, txGroup int64) *Change {
	return &Change{serial: serial, kind: KindOverwrite, offset: offset, length: int64(len(bytes)), bytes: bytes, txGroup: txGroup}
}

func newDelete(serial, offset, length int64, txGroup int64) *Change {
	return &Change{serial: serial, kind: KindDelete, offset: offset, length: length, txGroup: txGroup}
}

// syntheticDelete models the implicit delete half of an overwrite. It is
// never assigned a real serial, never pushed onto a change stack, and
// never surfaced to a caller or an event callback.
func syntheticDelete(offset, length int64) *Change {
	return &Change{serial: 0, kind: KindDelete, offset: offset, length: length}
}

// rootChange is the synthetic change a fresh model's initial READ segment
// points at. It is never pushed onto a change stack either.
func rootChange(backingSize int64) *Change {
	return &Change{serial: 0, kind: KindInsert, offset: 0, length: backingSize}
}
