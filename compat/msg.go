// File: compat/msg.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Legacy dynamic message buffers. The old API handed out raw pointers with
// the owning handle stashed in memory just before the payload; here the
// handle stays internally associated with the payload view inside an owned
// Envelope, so no pointer arithmetic or hidden memory is involved while the
// ownership rules stay identical: one owner, consumed on free or on a
// successful adopting send, never touched again afterwards.

package compat

import (
	"github.com/momentics/hioload-sp/native"
)

// Envelope is a legacy-style dynamically owned message buffer.
type Envelope struct {
	msg *native.Msg
}

// Alloc allocates an envelope whose visible payload length is exactly size.
// Zero and negative sizes fail EINVAL, as do sizes that cannot be backed by
// a native message.
func Alloc(size int) (*Envelope, error) {
	if size < 1 {
		return nil, EINVAL
	}
	m, err := native.AllocMsg(size)
	if err != nil {
		return nil, toErrno(err)
	}
	return &Envelope{msg: m}, nil
}

// Bytes returns the visible payload. A consumed envelope yields nil.
func (e *Envelope) Bytes() []byte {
	if e.msg == nil {
		return nil
	}
	return e.msg.Body()
}

// Len returns the visible payload length.
func (e *Envelope) Len() int {
	if e.msg == nil {
		return 0
	}
	return e.msg.Len()
}

// Free releases the underlying message. The envelope is consumed and every
// later operation on it fails EINVAL.
func (e *Envelope) Free() error {
	if e.msg == nil {
		return EINVAL
	}
	e.msg.Free()
	e.msg = nil
	return nil
}

// Resize changes the visible payload length to size, preserving the common
// prefix. On native resize failure the envelope is left untouched and the
// caller keeps ownership, free to retry or release.
func (e *Envelope) Resize(size int) error {
	if e.msg == nil || size < 0 {
		return EINVAL
	}
	if err := e.msg.Resize(size); err != nil {
		return toErrno(err)
	}
	return nil
}

// take exposes the message for an adopting send without consuming the
// envelope; the caller poisons it with consume only once the message has
// actually changed hands, so on failure ownership stays with the caller.
func (e *Envelope) take() (*native.Msg, error) {
	if e.msg == nil {
		return nil, EINVAL
	}
	m := e.msg
	return m, nil
}

// consume poisons the envelope after its message changed hands.
func (e *Envelope) consume() {
	e.msg = nil
}

// wrapMsg transfers ownership of a received native message into a fresh
// envelope.
func wrapMsg(m *native.Msg) *Envelope {
	return &Envelope{msg: m}
}
