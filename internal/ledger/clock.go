// Package ledger adapts the external ledger environment: the block clock
// that orders registry writes.
package ledger

import (
	"context"
	"sync"
	"time"
)

// Clock reports the current block height. Implementations never report a
// height lower than one they already returned.
type Clock interface {
	Height(ctx context.Context) (uint64, error)
}

// ManualClock is advanced explicitly; used by tests and local tooling.
type ManualClock struct {
	mu     sync.Mutex
	height uint64
}

func NewManualClock(start uint64) *ManualClock {
	return &ManualClock{height: start}
}

func (c *ManualClock) Height(context.Context) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.height, nil
}

// Advance moves the clock forward by n blocks and returns the new height.
func (c *ManualClock) Advance(n uint64) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.height += n
	return c.height
}

// Set moves the clock to h. Lower values are ignored.
func (c *ManualClock) Set(h uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if h > c.height {
		c.height = h
	}
}

// IntervalClock derives the height from wall time: one block per interval
// since genesis.
type IntervalClock struct {
	genesis  time.Time
	interval time.Duration
	now      func() time.Time

	mu   sync.Mutex
	last uint64
}

func NewIntervalClock(genesis time.Time, interval time.Duration) *IntervalClock {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	return &IntervalClock{genesis: genesis, interval: interval, now: time.Now}
}

func (c *IntervalClock) Height(context.Context) (uint64, error) {
	elapsed := c.now().Sub(c.genesis)
	var h uint64
	if elapsed > 0 {
		h = uint64(elapsed / c.interval)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	// wall clocks can step backwards
	if h < c.last {
		h = c.last
	}
	c.last = h
	return h, nil
}
