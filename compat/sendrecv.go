// File: compat/sendrecv.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Scatter/gather transfer engine. Every call is a self-contained transaction
// against one socket; the descriptor is a tagged form of the old iovec
// layout, replacing the legacy sentinel-length convention with explicit
// fields. An envelope buffer may appear only as the sole iovec.

package compat

import (
	"math"

	"github.com/momentics/hioload-sp/native"
)

// Iovec describes one transfer buffer. Exactly one of the fixed and dynamic
// forms applies: Data carries a fixed region; Dynamic requests (receive) or
// Env carries (send) a dynamic envelope.
type Iovec struct {
	Data    []byte
	Dynamic bool
	Env     *Envelope
}

// Control describes ancillary data. On send, Data carries raw protocol
// header bytes, or Env a dynamically owned envelope holding them. On
// receive, Data is filled with an encoded ancillary record, or with Dynamic
// set a fresh envelope is allocated and returned through Env.
type Control struct {
	Data    []byte
	Dynamic bool
	Env     *Envelope
}

// Msghdr is the scatter/gather descriptor.
type Msghdr struct {
	Iov     []Iovec
	Control *Control
}

func (iov *Iovec) wantsEnvelope() bool {
	return iov.Dynamic || iov.Env != nil
}

// Sendmsg gathers the descriptor into one message and transmits it. With a
// sole envelope iovec the transfer is zero-copy: the envelope's message is
// adopted, consumed on success, and returned to the caller on failure. A
// control envelope is released only after a successful send so failed sends
// can be retried.
func (sh *Shim) Sendmsg(s int, mh *Msghdr, flags int) (int, error) {
	nflags, err := xlatFlags(flags)
	if err != nil {
		return -1, err
	}
	if mh == nil {
		return -1, EINVAL
	}

	var m *native.Msg
	adopted := false
	if len(mh.Iov) == 1 && mh.Iov[0].wantsEnvelope() {
		if mh.Iov[0].Env == nil || mh.Iov[0].Data != nil {
			return -1, EINVAL
		}
		m, err = mh.Iov[0].Env.take()
		if err != nil {
			return -1, err
		}
		adopted = true
	} else {
		sz := 0
		for i := range mh.Iov {
			if mh.Iov[i].wantsEnvelope() {
				return -1, EINVAL
			}
			n := len(mh.Iov[i].Data)
			if sz > math.MaxInt-n {
				return -1, EINVAL
			}
			sz += n
		}
		nm, aerr := native.AllocMsg(sz)
		if aerr != nil {
			return -1, toErrno(aerr)
		}
		body := nm.Body()
		for i := range mh.Iov {
			body = body[copy(body, mh.Iov[i].Data):]
		}
		m = nm
	}

	var cenv *Envelope
	if mh.Control != nil {
		cdata := mh.Control.Data
		if mh.Control.Env != nil {
			cm, cerr := mh.Control.Env.take()
			if cerr != nil {
				if !adopted {
					m.Free()
				}
				return -1, cerr
			}
			cdata = cm.Body()
			cenv = mh.Control.Env
		}
		if herr := m.AppendHeader(cdata); herr != nil {
			if !adopted {
				m.Free()
			}
			return -1, toErrno(herr)
		}
	}

	sz := m.Len()
	if serr := sh.core.SendMsg(native.Socket(s), m, nflags); serr != nil {
		if !adopted {
			m.Free()
		}
		return -1, toErrno(serr)
	}
	if adopted {
		mh.Iov[0].Env.consume()
	}
	if cenv != nil {
		cenv.Free()
	}
	return sz, nil
}

// Recvmsg receives one message and scatters it into the descriptor. With a
// sole dynamic iovec the received message is handed over as an envelope in
// Iov[0].Env; otherwise the body is copied across the fixed buffers in
// order and any excess is dropped silently, while the returned length is
// always the original message length so callers can detect truncation.
func (sh *Shim) Recvmsg(s int, mh *Msghdr, flags int) (int, error) {
	nflags, err := xlatFlags(flags)
	if err != nil {
		return -1, err
	}
	if mh == nil {
		return -1, EINVAL
	}

	m, rerr := sh.core.RecvMsg(native.Socket(s), nflags)
	if rerr != nil {
		return -1, toErrno(rerr)
	}

	keep := false
	if len(mh.Iov) == 1 && mh.Iov[0].Dynamic {
		if mh.Iov[0].Data != nil {
			m.Free()
			return -1, EINVAL
		}
		mh.Iov[0].Env = wrapMsg(m)
		keep = true
	} else {
		rem := m.Body()
		for i := range mh.Iov {
			if mh.Iov[i].wantsEnvelope() {
				// A dynamic buffer must be the sole buffer.
				m.Free()
				return -1, EINVAL
			}
			rem = rem[copy(mh.Iov[i].Data, rem):]
		}
	}
	length := m.Len()

	if mh.Control != nil {
		if cerr := sh.fillControl(mh.Control, m); cerr != nil {
			if keep {
				mh.Iov[0].Env.consume()
			}
			m.Free()
			return -1, cerr
		}
	}

	if !keep {
		m.Free()
	}
	return length, nil
}

// fillControl copies the message's protocol header out as an ancillary
// record. A fixed buffer gets as much as fits, with the record zero-filled
// when the buffer cannot even hold the basic header; a dynamic request gets
// a fresh envelope sized to the record.
func (sh *Shim) fillControl(ctrl *Control, m *native.Msg) error {
	space := CmsgSpace(m.HeaderLen())
	if ctrl.Dynamic {
		cm, err := native.AllocMsg(space)
		if err != nil {
			return toErrno(err)
		}
		putCmsg(cm.Body(), ProtoSP, SPHdr, m.Header())
		ctrl.Env = wrapMsg(cm)
		return nil
	}
	clear(ctrl.Data[:min(len(ctrl.Data), cmsgHdrSize)])
	if space <= len(ctrl.Data) {
		putCmsg(ctrl.Data, ProtoSP, SPHdr, m.Header())
	}
	return nil
}
