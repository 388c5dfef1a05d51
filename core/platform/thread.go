// File: core/platform/thread.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package platform

import "sync/atomic"

// Thread runs a single start function to completion and is joined exactly
// once. Joining twice is a programming error and panics.
type Thread struct {
	done   chan struct{}
	joined atomic.Bool
}

// StartThread spawns a goroutine running fn(arg).
func StartThread(fn func(arg any), arg any) *Thread {
	t := &Thread{done: make(chan struct{})}
	go func() {
		defer close(t.done)
		fn(arg)
	}()
	return t
}

// Join blocks until the start function returns and reclaims the thread.
// The Thread must not be used after Join.
func (t *Thread) Join() {
	if !t.joined.CompareAndSwap(false, true) {
		panic("platform: thread joined twice")
	}
	<-t.done
}
