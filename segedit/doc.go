// Package segedit is an embeddable library for editing very large binary
// files without loading them into memory.
//
// A caller opens a read-only backing file (or starts from nothing) with
// [NewSession], applies a sequence of [Session.Insert] / [Session.Overwrite]
// / [Session.Delete] edits against arbitrary byte offsets, observes changes
// through live [Viewport] windows, searches with [Session.NewSearchContext],
// undoes/redoes with [Session.Undo] / [Session.Redo], and saves a
// contiguous result to a new file with [Session.Save]. The original file is
// never modified in place; the full edit history lives in memory as an
// ordered sequence of segments pointing either into the backing file or
// into in-memory change buffers.
//
// # Basic usage
//
//	session, err := segedit.NewSession(segedit.SessionOptions{Path: "big.bin"})
//	if err != nil {
//	    return err
//	}
//	defer session.Close()
//
//	session.Insert(0, []byte("hello "))
//	session.Overwrite(10, []byte("!"))
//	session.Delete(20, 4)
//
//	path, err := session.Save("out.bin", false)
//
// # Concurrency
//
// A [Session] is single-threaded: all mutating calls (Insert, Overwrite,
// Delete, Undo, Redo, Clear, transactions, checkpoints) must be serialized
// by the caller, typically with one goroutine or one external lock per
// session. Concurrent reads of disjoint [Viewport] windows are safe
// provided no mutation is in flight.
//
// # Error handling
//
// Parameter-validation failures (offset out of range, zero length, paused
// session) are not returned as errors: edit operations return a serial of
// 0, matching the documented "silent no-op" contract. I/O failures that
// leave the session in a consistent state are returned as wrapped errors.
// A violated internal invariant (model corruption) is a programming error,
// not a retryable condition — it's still returned as a wrapped error
// ([ErrInvariantViolation]) rather than a panic, but callers should treat
// it the same way: stop using the session rather than retry.
package segedit
