// Package dnd holds the shared do-not-disturb flag. The control plane and
// the tray write it; the orchestrator reads it once per tick.
package dnd

import (
	"sync"
	"time"
)

// Cell is the process-wide do-not-disturb flag with its last-updated
// timestamp. It is constructed once and passed by reference to everything
// that needs it; the lock is held only for the copy in or out.
type Cell struct {
	mu      sync.RWMutex
	active  bool
	updated time.Time

	// maxAge bounds how stale a confirmation may be before the flag is
	// treated as inactive. Zero disables the staleness check.
	maxAge time.Duration
}

// NewCell creates a Cell that is inactive until first set. maxAge is the
// staleness bound; pass zero to trust the last known value forever.
func NewCell(maxAge time.Duration) *Cell {
	return &Cell{maxAge: maxAge}
}

// Set records the flag. Setting the same value again just refreshes the
// timestamp, so callers may re-post idempotently to keep the flag fresh.
func (c *Cell) Set(active bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.active = active
	c.updated = time.Now()
}

// Get returns the raw flag value and when it was last set.
func (c *Cell) Get() (bool, time.Time) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.active, c.updated
}

// Active reports whether the flag should gate triggering right now. A flag
// whose last confirmation is older than the staleness bound reads as
// inactive: no spray without a recently confirmed armed flag.
func (c *Cell) Active(now time.Time) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.active {
		return false
	}
	if c.maxAge > 0 && now.Sub(c.updated) > c.maxAge {
		return false
	}
	return true
}
