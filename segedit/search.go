package segedit

import "fmt"

// asciiLower is the case-folding table used for case-insensitive search: a
// precomputed 256-entry map from byte value to its ASCII lowercase form
// (non-letters map to themselves).
var asciiLower [256]byte

func init() {
	for i := range asciiLower {
		b := byte(i)
		if b >= 'A' && b <= 'Z' {
			b += 'a' - 'A'
		}

		asciiLower[i] = b
	}
}

// SearchContext scans a range of a session's logical content for
// occurrences of a fixed byte pattern, using a Boyer-Moore-Horspool bad
// character skip table over tiles read out-of-core rather than the whole
// range at once.
//
// Grounded on original_source's src/lib/search.cpp.
type SearchContext struct {
	session *Session

	pattern         []byte
	folded          []byte // case-folded form scanning compares against
	caseInsensitive bool
	skip            [256]int

	rangeEnd int64
	pos      int64

	tile       []byte
	tileOffset int64
	tileLen    int64
	tileGen    int64

	matchOffset int64
	matchLength int64
	closed      bool
}

// NewSearchContext creates a search over [offset, offset+length) of the
// session's current logical content (length is clamped to the bytes
// actually available). The pattern must be non-empty, no longer than
// SearchPatternLengthLimit, and no longer than the search range itself.
func (s *Session) NewSearchContext(pattern []byte, offset, length int64, caseInsensitive bool) (*SearchContext, error) {
	if s.closed {
		return nil, ErrSessionClosed
	}

	if len(pattern) == 0 {
		return nil, ErrInvalidLength
	}

	if len(pattern) > SearchPatternLengthLimit {
		return nil, ErrPatternTooLong
	}

	size := s.top().logicalSize()
	if offset < 0 || offset > size {
		return nil, ErrInvalidOffset
	}

	if length < 0 {
		return nil, ErrInvalidLength
	}

	if remaining := size - offset; length > remaining {
		length = remaining
	}

	if int64(len(pattern)) > length {
		return nil, ErrPatternExceedsRange
	}

	folded := append([]byte(nil), pattern...)
	if caseInsensitive {
		for i, b := range folded {
			folded[i] = asciiLower[b]
		}
	}

	sc := &SearchContext{
		session:         s,
		pattern:         append([]byte(nil), pattern...),
		folded:          folded,
		caseInsensitive: caseInsensitive,
		rangeEnd:        offset + length,
		pos:             offset,
	}
	sc.buildSkipTable()

	s.searchContexts++

	return sc, nil
}

func (sc *SearchContext) buildSkipTable() {
	n := len(sc.folded)
	for i := range sc.skip {
		sc.skip[i] = n
	}

	for i := 0; i < n-1; i++ {
		sc.skip[sc.folded[i]] = n - 1 - i
	}
}

// Close releases the context's slot in its session's search-context
// count. It does not error if called more than once.
func (sc *SearchContext) Close() {
	if sc.closed {
		return
	}

	sc.closed = true
	sc.session.searchContexts--
}

// Pattern returns the pattern this context searches for.
func (sc *SearchContext) Pattern() []byte { return sc.pattern }

// MatchOffset returns the offset of the most recent match found by
// NextMatch.
func (sc *SearchContext) MatchOffset() int64 { return sc.matchOffset }

// MatchLength returns the length of the most recent match (always
// len(Pattern())).
func (sc *SearchContext) MatchLength() int64 { return sc.matchLength }

// NextMatch advances the scan and reports whether another match was found
// before the end of the configured range. On a match it resumes the next
// call from matchOffset+advanceBy rather than matchOffset+1, so a caller
// replacing each match with a string of different length can pass that
// length and keep scanning from the right place instead of re-matching
// into bytes it just wrote. advanceBy must be at least 1. Once NextMatch
// returns false the context is exhausted; calling it again continues to
// return false.
func (sc *SearchContext) NextMatch(advanceBy int64) (bool, error) {
	if advanceBy < 1 {
		advanceBy = 1
	}

	n := int64(len(sc.folded))

	for sc.pos+n <= sc.rangeEnd {
		if err := sc.ensureTile(); err != nil {
			return false, err
		}

		local := sc.pos - sc.tileOffset
		if local+n > sc.tileLen {
			return false, nil
		}

		window := sc.tile[local : local+n]

		if sc.matches(window) {
			sc.matchOffset = sc.pos
			sc.matchLength = n
			sc.pos = sc.matchOffset + advanceBy

			return true, nil
		}

		lastByte := window[n-1]
		if sc.caseInsensitive {
			lastByte = asciiLower[lastByte]
		}

		sc.pos += int64(sc.skip[lastByte])
	}

	return false, nil
}

func (sc *SearchContext) matches(window []byte) bool {
	for i, p := range sc.folded {
		b := window[i]
		if sc.caseInsensitive {
			b = asciiLower[b]
		}

		if b != p {
			return false
		}
	}

	return true
}

// ensureTile makes sure sc.tile covers at least len(sc.folded) bytes
// starting at sc.pos, reloading a fresh tile anchored at sc.pos once the
// current one is close enough to exhausted that another skip could run
// past its end — searchTileOverlap bounds how early that reload happens,
// so a single pass rarely reloads more than once per searchTileSize
// bytes scanned. It also reloads unconditionally whenever the session's
// content has changed since the cached tile was read, so a caller that
// edits the session between NextMatch calls (the advance_by replace-loop
// pattern) always scans live bytes rather than a stale snapshot.
func (sc *SearchContext) ensureTile() error {
	n := int64(len(sc.folded))
	stale := sc.tileGen != sc.session.contentGeneration

	if !stale && sc.tile != nil && sc.pos >= sc.tileOffset {
		availableFromPos := sc.tileOffset + sc.tileLen - sc.pos
		atRangeEnd := sc.tileOffset+sc.tileLen >= sc.rangeEnd

		if availableFromPos >= n && (availableFromPos >= searchTileOverlap || atRangeEnd) {
			return nil
		}
	}

	want := int64(searchTileSize)
	if remaining := sc.rangeEnd - sc.pos; want > remaining {
		want = remaining
	}

	if sc.tile == nil || int64(cap(sc.tile)) < want {
		sc.tile = make([]byte, want)
	} else {
		sc.tile = sc.tile[:want]
	}

	read, err := sc.session.top().project(sc.pos, want, sc.tile)
	if err != nil {
		return fmt.Errorf("segedit: search read at %d: %w", sc.pos, err)
	}

	sc.tileOffset = sc.pos
	sc.tileLen = int64(read)
	sc.tileGen = sc.session.contentGeneration

	if sc.tileLen < n && sc.tileOffset+sc.tileLen < sc.rangeEnd {
		return fmt.Errorf("%w: short read while tiling search at offset %d", ErrInvariantViolation, sc.pos)
	}

	return nil
}
