package backing

import (
	"fmt"
	"math/rand"
)

// ChaosConfig controls fault injection probabilities for [Chaos].
//
// Each rate is a float64 from 0.0 (never) to 1.0 (always). The zero value
// disables all fault injection.
type ChaosConfig struct {
	// ReadFailRate controls how often ReadAt fails entirely, returning
	// zero bytes and an error, independent of whether the requested
	// range is actually in bounds.
	ReadFailRate float64

	// PartialReadRate controls how often ReadAt returns fewer bytes than
	// requested (but more than zero) without an error, simulating a short
	// read from the underlying medium. Exercises callers that must treat
	// a short [Store.ReadAt] as retryable rather than as [ErrOutOfRange].
	PartialReadRate float64
}

// Chaos wraps a [Store] and injects random read failures according to
// [ChaosConfig]. It exists only to drive the model projection tests in
// segedit/chaos_test.go under simulated I/O failure; it is never used by
// the production API.
//
// Grounded on the teacher's internal/fs.Chaos fault-injection wrapper,
// reduced to the read-only subset a backing [Store] actually exposes.
type Chaos struct {
	inner Store
	cfg   ChaosConfig
	rng   *rand.Rand
}

// NewChaos wraps store with fault injection driven by cfg. seed makes
// injected failures reproducible across test runs.
func NewChaos(store Store, cfg ChaosConfig, seed int64) *Chaos {
	return &Chaos{inner: store, cfg: cfg, rng: rand.New(rand.NewSource(seed))} //nolint:gosec // test-only determinism, not security
}

func (c *Chaos) ReadAt(p []byte, off int64) (int, error) {
	if c.cfg.ReadFailRate > 0 && c.rng.Float64() < c.cfg.ReadFailRate {
		return 0, fmt.Errorf("backing: injected read failure at offset %d", off)
	}

	if c.cfg.PartialReadRate > 0 && len(p) > 1 && c.rng.Float64() < c.cfg.PartialReadRate {
		short := 1 + c.rng.Intn(len(p)-1)

		n, err := c.inner.ReadAt(p[:short], off)
		if err != nil {
			return n, err
		}

		return n, nil
	}

	return c.inner.ReadAt(p, off)
}

func (c *Chaos) Size() int64 { return c.inner.Size() }
func (c *Chaos) Close() error { return c.inner.Close() }

var _ Store = (*Chaos)(nil)
