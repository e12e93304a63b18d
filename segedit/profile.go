package segedit

// ByteFrequencyProfile is a histogram of byte value occurrences: index i
// holds the count of byte value i seen in the scanned range.
type ByteFrequencyProfile [256]int64

// ByteFrequencyProfile computes a histogram over [offset, offset+length) of
// the session's current logical content, reading out-of-core in fixed-size
// chunks rather than materializing the range in memory.
//
// Supplemented from original_source's omega_util_byte_frequency_profile,
// dropped by the spec's distillation but retained here since it's a cheap,
// self-contained read-only operation over the same projector every other
// read path uses.
func (s *Session) ByteFrequencyProfile(offset, length int64) (ByteFrequencyProfile, error) {
	var profile ByteFrequencyProfile

	if s.closed {
		return profile, ErrSessionClosed
	}

	top := s.top()

	size := top.logicalSize()
	if offset < 0 || offset > size {
		return profile, ErrInvalidOffset
	}

	if length < 0 {
		return profile, ErrInvalidLength
	}

	if remaining := size - offset; length > remaining {
		length = remaining
	}

	buf := make([]byte, writeChunkSize)

	for remaining := length; remaining > 0; {
		n := int64(len(buf))
		if n > remaining {
			n = remaining
		}

		read, err := top.project(offset, n, buf[:n])
		if err != nil {
			return profile, err
		}

		for _, b := range buf[:read] {
			profile[b]++
		}

		offset += int64(read)
		remaining -= int64(read)
	}

	return profile, nil
}
