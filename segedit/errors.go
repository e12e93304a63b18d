package segedit

import "errors"

// Sentinel errors returned (often wrapped with offset/length context) by
// the segedit API. Parameter-validation failures on edit operations are
// NOT reported through these — they return a serial of 0 per the
// documented silent-no-op contract. These sentinels cover failures that
// can't be expressed as "serial 0": bad construction arguments, I/O
// failures, and misuse of the checkpoint/transaction/search APIs.
var (
	// ErrInvalidOffset is returned when an offset argument is negative or
	// otherwise cannot be validated before an operation proceeds.
	ErrInvalidOffset = errors.New("segedit: invalid offset")

	// ErrInvalidLength is returned when a length or capacity argument is
	// negative, zero where a positive value is required, or exceeds a
	// hard limit (see limits.go).
	ErrInvalidLength = errors.New("segedit: invalid length")

	// ErrPatternTooLong is returned by NewSearchContext when the pattern
	// exceeds SearchPatternLengthLimit.
	ErrPatternTooLong = errors.New("segedit: search pattern too long")

	// ErrPatternExceedsRange is returned by NewSearchContext when the
	// pattern is longer than the search range itself.
	ErrPatternExceedsRange = errors.New("segedit: search pattern longer than search range")

	// ErrCapacityOutOfRange is returned by NewViewport when the requested
	// capacity is non-positive or exceeds ViewportCapacityLimit.
	ErrCapacityOutOfRange = errors.New("segedit: viewport capacity out of range")

	// ErrNoCheckpoint is returned by DestroyLastCheckpoint when the model
	// stack holds only the root model.
	ErrNoCheckpoint = errors.New("segedit: no checkpoint to destroy")

	// ErrTransactionAlreadyOpen is returned by BeginTransaction when a
	// transaction is already open on the session.
	ErrTransactionAlreadyOpen = errors.New("segedit: transaction already open")

	// ErrNoTransaction is returned by EndTransaction when no transaction
	// is open.
	ErrNoTransaction = errors.New("segedit: no transaction open")

	// ErrSessionClosed is returned by any error-returning call made on a
	// session after Close.
	ErrSessionClosed = errors.New("segedit: session is closed")

	// ErrInvariantViolation indicates the segment list or change stack
	// reached a state the algorithm's invariants say is unreachable. This
	// is a programming-error class failure, not a data or I/O failure;
	// callers should treat it the same as a panic recovered at a trust
	// boundary rather than a retryable condition.
	ErrInvariantViolation = errors.New("segedit: internal invariant violation")
)
