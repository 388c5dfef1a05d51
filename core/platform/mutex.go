// File: core/platform/mutex.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package platform

import "sync"

// Mutex is an exclusive, non-reentrant lock with no fairness guarantee.
// The zero value is ready for use; no explicit init or fini is required.
type Mutex struct {
	impl sync.Mutex
}

// Lock acquires the mutex, blocking until it is available.
// Locking a mutex already held by the calling goroutine deadlocks.
func (m *Mutex) Lock() {
	m.impl.Lock()
}

// Unlock releases the mutex. Unlocking an unheld mutex panics.
func (m *Mutex) Unlock() {
	m.impl.Unlock()
}
