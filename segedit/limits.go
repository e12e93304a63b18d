package segedit

// Hardcoded implementation limits. These are not spec-mandated values in
// the sense of a wire format; they exist to keep a single session's memory
// footprint bounded and predictable regardless of caller input.

const (
	// ViewportCapacityLimit bounds how many bytes a single viewport will
	// buffer. Far above any interactive use (a terminal or hex-editor
	// pane) while still ruling out a caller accidentally materializing a
	// multi-gigabyte viewport into memory.
	ViewportCapacityLimit = 1 << 30 // 1 GiB

	// SearchPatternLengthLimit bounds the pattern length NewSearchContext
	// will accept. Each context keeps its own copies of the pattern, so
	// this also caps per-context memory; patterns longer than this are almost
	// always a caller passing a whole buffer instead of a needle.
	SearchPatternLengthLimit = 1 << 16 // 64 KiB

	// searchTileSize is the window size the search context reads into at
	// once. Large enough to amortize backing-store reads across many
	// candidate match positions, small enough that a search over a
	// multi-gigabyte file never materializes more than one tile.
	searchTileSize = 1 << 20 // 1 MiB

	// searchTileOverlap is how much of the trailing edge of one tile is
	// re-read at the head of the next, so a match straddling a tile
	// boundary is never missed. Set equal to SearchPatternLengthLimit so
	// every pattern the constructor accepts is guaranteed to fit within
	// one overlap window.
	searchTileOverlap = SearchPatternLengthLimit
)
