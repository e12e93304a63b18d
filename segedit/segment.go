package segedit

// SegmentKind identifies whether a segment's bytes come from the backing
// store or from a change record's in-memory payload.
type SegmentKind int

const (
	// SegmentRead sources bytes from the model's backing store, at
	// changeOffset within it.
	SegmentRead SegmentKind = iota

	// SegmentInsert sources bytes from change.Bytes()[changeOffset:],
	// where change is an INSERT or OVERWRITE change.
	SegmentInsert
)

func (k SegmentKind) String() string {
	if k == SegmentRead {
		return "read"
	}

	return "insert"
}

// segment is one contiguous run of the logical file, expressed relative to
// either the backing store (SegmentRead) or a change's payload
// (SegmentInsert). The ordered segment list partitions [0, logicalSize)
// with no gaps and no overlaps; this is the model's core invariant.
type segment struct {
	kind SegmentKind

	// computedOffset/computedLength are this segment's position and
	// extent in the logical (post-edit) file. Maintained incrementally by
	// every insert/delete so the list never needs a full offset
	// recomputation pass.
	computedOffset int64
	computedLength int64

	// changeOffset is the offset within the source (backing store for
	// SegmentRead, change.bytes for SegmentInsert) the segment's first
	// byte comes from.
	changeOffset int64

	// change is the change record this segment was carved from. For
	// SegmentRead it is either the model's root change (whole backing
	// file) or an earlier SegmentRead's source change, carried forward
	// across splits — SegmentRead segments never reference change.bytes.
	change *Change
}

func (s *segment) clone() *segment {
	c := *s

	return &c
}

// SegmentInfo is the read-only view of a segment exposed to callers via
// Session.Segments, for introspection and debugging.
type SegmentInfo struct {
	Kind           SegmentKind
	ComputedOffset int64
	ComputedLength int64
	ChangeOffset   int64
	ChangeSerial   int64
}

func (s *segment) info() SegmentInfo {
	return SegmentInfo{
		Kind:           s.kind,
		ComputedOffset: s.computedOffset,
		ComputedLength: s.computedLength,
		ChangeOffset:   s.changeOffset,
		ChangeSerial:   s.change.Serial(),
	}
}
