// File: pool/bytepool.go
// Package pool implements size-classed byte slice pooling.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package pool

import "sync"

// Predefined (power-of-two) buffer size classes (bytes)
// This table can be tuned for deployment needs.
var sizeClasses = [...]int{
	64,
	256,
	1024,
	4 * 1024,
	16 * 1024,
	64 * 1024,
	256 * 1024,
	1024 * 1024,
}

// classIndex returns the index of the smallest class >= size, or -1 when the
// request exceeds the largest class.
func classIndex(size int) int {
	for i, c := range sizeClasses {
		if size <= c {
			return i
		}
	}
	return -1
}

// BytePool recycles byte slices through per-size-class sync.Pools.
// Oversized requests fall through to the allocator and are not recycled.
type BytePool struct {
	classes [len(sizeClasses)]sync.Pool
}

// NewBytePool creates an empty byte pool.
func NewBytePool() *BytePool {
	p := &BytePool{}
	for i := range p.classes {
		c := sizeClasses[i]
		p.classes[i].New = func() any {
			b := make([]byte, c)
			return &b
		}
	}
	return p
}

// Get returns a zeroed-length slice with capacity of at least size.
func (p *BytePool) Get(size int) []byte {
	idx := classIndex(size)
	if idx < 0 {
		return make([]byte, 0, size)
	}
	b := *(p.classes[idx].Get().(*[]byte))
	return b[:0]
}

// Put returns a slice to its class. Slices that never came from the pool
// (oversized or foreign) are dropped for the GC to handle.
func (p *BytePool) Put(b []byte) {
	idx := classIndex(cap(b))
	if idx < 0 || cap(b) != sizeClasses[idx] {
		return
	}
	b = b[:cap(b)]
	p.classes[idx].Put(&b)
}
