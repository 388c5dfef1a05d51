// File: core/platform/once.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// One-time initializer. The state machine only ever moves forward:
// idle -> running -> done. The fast path is a single atomic load with no
// further synchronization; latecomers block on a completion channel instead
// of polling, so heavy concurrent first use does not burn CPU.

package platform

import (
	"sync"
	"sync/atomic"
)

const (
	onceIdle int32 = iota
	onceRunning
	onceDone
)

// Once guards a process-wide initializer. The zero value is ready for use.
type Once struct {
	state atomic.Int32
	mu    sync.Mutex
	done  chan struct{}
}

// Do runs fn exactly once across all callers of this Once. Every caller,
// including losers of the race, returns only after fn has completed, and the
// completed state is visible to all goroutines.
func (o *Once) Do(fn func()) {
	if o.state.Load() == onceDone {
		return
	}
	o.mu.Lock()
	switch o.state.Load() {
	case onceDone:
		o.mu.Unlock()
	case onceIdle:
		ch := make(chan struct{})
		o.done = ch
		o.state.Store(onceRunning)
		o.mu.Unlock()
		fn()
		o.state.Store(onceDone)
		close(ch)
	default:
		ch := o.done
		o.mu.Unlock()
		<-ch
	}
}

// Done reports whether the initializer has completed.
func (o *Once) Done() bool {
	return o.state.Load() == onceDone
}
