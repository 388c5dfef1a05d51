// File: core/platform/cond.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Condition variable bound to exactly one Mutex for its lifetime.
// Unlike sync.Cond, waits support absolute microsecond deadlines, which the
// native core needs for send/receive timeouts.

package platform

import "time"

// Cond is a condition variable. Wake releases all current waiters; waiters
// may also be released spuriously, so callers must re-check their predicate
// in a loop. The bound mutex must be held around Wait, WaitUntil and Wake.
type Cond struct {
	mtx *Mutex
	ch  chan struct{}
}

// NewCond creates a condition variable bound to m.
func NewCond(m *Mutex) *Cond {
	return &Cond{mtx: m, ch: make(chan struct{})}
}

// Wake releases every goroutine currently blocked in Wait or WaitUntil.
func (c *Cond) Wake() {
	close(c.ch)
	c.ch = make(chan struct{})
}

// Wait atomically releases the mutex and blocks until woken, then reacquires
// the mutex before returning.
func (c *Cond) Wait() {
	ch := c.ch
	c.mtx.Unlock()
	<-ch
	c.mtx.Lock()
}

// WaitUntil behaves like Wait but blocks no longer than the absolute deadline,
// expressed in the Now() microsecond clock. A deadline already in the past
// converts to a zero wait. Returns true when the deadline expired before a
// wakeup.
func (c *Cond) WaitUntil(deadline int64) bool {
	ch := c.ch
	var rel time.Duration
	if now := Now(); deadline > now {
		rel = time.Duration(deadline-now) * time.Microsecond
	}
	timer := time.NewTimer(rel)
	c.mtx.Unlock()
	timedOut := false
	select {
	case <-ch:
	case <-timer.C:
		timedOut = true
	}
	timer.Stop()
	c.mtx.Lock()
	return timedOut
}
