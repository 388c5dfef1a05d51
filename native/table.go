// File: native/table.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Generation-tagged handle table. A handle packs a 16-bit slot index with a
// 16-bit generation; removing an entry bumps the generation, so a stale
// handle pointing at a reused slot misses instead of resolving to the new
// occupant.

package native

import "sync"

type tableSlot[T any] struct {
	gen  uint16
	used bool
	val  T
}

type handleTable[T any] struct {
	mu    sync.Mutex
	slots []tableSlot[T]
	free  []uint16
}

const maxTableSlots = 1 << 16

// insert stores v and returns its handle, or 0 when the table is full.
func (t *handleTable[T]) insert(v T) uint32 {
	t.mu.Lock()
	defer t.mu.Unlock()
	var idx uint16
	if n := len(t.free); n > 0 {
		idx = t.free[n-1]
		t.free = t.free[:n-1]
	} else {
		if len(t.slots) >= maxTableSlots-1 {
			return 0
		}
		t.slots = append(t.slots, tableSlot[T]{})
		idx = uint16(len(t.slots) - 1)
	}
	s := &t.slots[idx]
	s.used = true
	s.val = v
	// Slot indexes are 1-based on the wire so handle 0 stays invalid.
	return uint32(s.gen)<<16 | uint32(idx+1)
}

func (t *handleTable[T]) lookup(h uint32) (*tableSlot[T], bool) {
	idx := h & 0xffff
	if idx == 0 || int(idx) > len(t.slots) {
		return nil, false
	}
	s := &t.slots[idx-1]
	if !s.used || s.gen != uint16(h>>16) {
		return nil, false
	}
	return s, true
}

// get resolves a handle to its value.
func (t *handleTable[T]) get(h uint32) (T, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if s, ok := t.lookup(h); ok {
		return s.val, true
	}
	var zero T
	return zero, false
}

// remove drops the entry and retires the generation.
func (t *handleTable[T]) remove(h uint32) (T, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	s, ok := t.lookup(h)
	if !ok {
		var zero T
		return zero, false
	}
	v := s.val
	var zero T
	s.val = zero
	s.used = false
	s.gen++
	t.free = append(t.free, uint16(h&0xffff)-1)
	return v, true
}
