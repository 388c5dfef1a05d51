// Package pool
// Author: momentics <momentics@gmail.com>
//
// Memory layer for hioload-sp.
// Implements size-classed byte pooling and generic object pooling used by the
// native message core. All primitives are cross-platform and allocation-light:
// storage is recycled through sync.Pool per size class so steady-state message
// traffic does not touch the allocator.
// See bytepool.go and objpool.go for implementation details.
package pool
