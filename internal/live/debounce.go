// Package live keeps editors and viewers of a shared split in step: edits are saved
// after a quiet period and polled views never regress to a half-saved state.
package live

import (
	"sync"
	"time"
)

// Debouncer collapses a burst of edits into one save. Every edit gets a sequence tag;
// only the latest tag is still current when its window elapses. Superseded saves are
// dropped, never retried.
type Debouncer struct {
	mu    sync.Mutex
	delay time.Duration
	seq   uint64
}

func NewDebouncer(delay time.Duration) *Debouncer {
	return &Debouncer{delay: delay}
}

func (d *Debouncer) Delay() time.Duration {
	return d.delay
}

// Bump records an edit and returns its tag.
func (d *Debouncer) Bump() uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.seq++

	return d.seq
}

// Current reports whether tag belongs to the most recent edit.
func (d *Debouncer) Current(tag uint64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	return tag == d.seq
}

// Stop invalidates every outstanding tag so no pending save fires.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.seq++
}
