// File: native/msg.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Message object with distinct body and header regions. Body storage keeps a
// headroom prefix so Trim and Prepend are reslices instead of reallocations
// on the common path. Storage comes from the shared byte pool and message
// objects themselves are recycled through a SyncPool.

package native

import (
	"math"

	"github.com/momentics/hioload-sp/pool"
)

// headroom reserved in front of every message body for cheap prepends.
const msgHeadroom = 32

var (
	msgPool  = pool.NewSyncPool(func() *Msg { return &Msg{} })
	bodyPool = pool.NewBytePool()
)

// Msg is a native message. A Msg has exactly one owner; once handed to a
// successful send or freed it must not be touched again.
type Msg struct {
	buf    []byte // body storage, body = buf[off:]
	off    int
	header []byte
}

// AllocMsg allocates a message with a zeroed body of exactly size bytes.
func AllocMsg(size int) (*Msg, error) {
	if size < 0 || size > math.MaxInt-msgHeadroom {
		return nil, EInval
	}
	b := bodyPool.Get(size + msgHeadroom)
	b = b[:msgHeadroom+size]
	clear(b)
	m := msgPool.Get()
	m.buf = b
	m.off = msgHeadroom
	m.header = nil
	return m, nil
}

// Free releases the message and its storage. The message must not be reused.
func (m *Msg) Free() {
	if m.buf != nil {
		bodyPool.Put(m.buf)
	}
	m.buf = nil
	m.off = 0
	m.header = nil
	msgPool.Put(m)
}

// Body returns the current body region.
func (m *Msg) Body() []byte { return m.buf[m.off:] }

// Len returns the body length.
func (m *Msg) Len() int { return len(m.buf) - m.off }

// Header returns the header region.
func (m *Msg) Header() []byte { return m.header }

// HeaderLen returns the header length.
func (m *Msg) HeaderLen() int { return len(m.header) }

// Resize grows or shrinks the body to exactly n bytes, preserving the first
// min(old, n) bytes. On failure the message is left untouched.
func (m *Msg) Resize(n int) error {
	if n < 0 || n > math.MaxInt-msgHeadroom {
		return EInval
	}
	old := m.Body()
	switch {
	case n <= len(old):
		m.buf = m.buf[:m.off+n]
	case m.off+n <= cap(m.buf):
		m.buf = m.buf[:m.off+n]
		clear(m.buf[m.off+len(old):])
	default:
		nb := bodyPool.Get(n + msgHeadroom)
		nb = nb[:msgHeadroom+n]
		clear(nb[msgHeadroom+len(old):])
		copy(nb[msgHeadroom:], old)
		bodyPool.Put(m.buf)
		m.buf = nb
		m.off = msgHeadroom
	}
	return nil
}

// Trim removes n bytes from the front of the body.
func (m *Msg) Trim(n int) error {
	if n < 0 || n > m.Len() {
		return EInval
	}
	m.off += n
	return nil
}

// Prepend inserts data in front of the body.
func (m *Msg) Prepend(data []byte) error {
	if len(data) <= m.off {
		m.off -= len(data)
		copy(m.buf[m.off:], data)
		return nil
	}
	body := m.Body()
	if len(data) > math.MaxInt-msgHeadroom-len(body) {
		return EInval
	}
	nb := bodyPool.Get(len(data) + len(body) + msgHeadroom)
	nb = nb[:msgHeadroom+len(data)+len(body)]
	copy(nb[msgHeadroom:], data)
	copy(nb[msgHeadroom+len(data):], body)
	bodyPool.Put(m.buf)
	m.buf = nb
	m.off = msgHeadroom
	return nil
}

// AppendHeader appends data to the header region.
func (m *Msg) AppendHeader(data []byte) error {
	m.header = append(m.header, data...)
	return nil
}
