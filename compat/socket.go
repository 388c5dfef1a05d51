// File: compat/socket.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Legacy socket surface: integer-domain sockets and endpoints translated
// onto native handles. The shim holds no socket state of its own.

package compat

import "github.com/momentics/hioload-sp/native"

// Shim exposes the legacy API over one native core.
type Shim struct {
	core *native.Core
}

// New creates a shim bound to core.
func New(core *native.Core) *Shim {
	return &Shim{core: core}
}

// xlatFlags maps legacy transfer flags onto native ones. Anything besides
// 0 or DontWait fails EINVAL.
func xlatFlags(flags int) (int, error) {
	switch flags {
	case 0:
		return 0, nil
	case DontWait:
		return native.FlagNonblock, nil
	default:
		return 0, EINVAL
	}
}

// Socket opens a socket in the given domain. AFSPRaw sets the native raw
// option right after opening; if that fails the socket is closed again so
// no handle leaks.
func (sh *Shim) Socket(domain, protocol int) (int, error) {
	if domain != AFSP && domain != AFSPRaw {
		return -1, EAFNOSUPPORT
	}
	switch protocol {
	case ProtoPair, ProtoPub, ProtoSub, ProtoReq, ProtoRep,
		ProtoPush, ProtoPull, ProtoSurveyor, ProtoRespondent:
	default:
		return -1, EINVAL
	}
	s, err := sh.core.Open(uint16(protocol))
	if err != nil {
		return -1, toErrno(err)
	}
	if domain == AFSPRaw {
		raw := []byte{1, 0, 0, 0}
		if err := sh.core.SetOption(s, native.OptRaw, raw); err != nil {
			sh.core.Close(s)
			return -1, toErrno(err)
		}
	}
	return int(s), nil
}

// Close closes a socket.
func (sh *Shim) Close(s int) error {
	if err := sh.core.Close(native.Socket(s)); err != nil {
		return toErrno(err)
	}
	return nil
}

// Bind starts listening on addr and returns the endpoint.
func (sh *Shim) Bind(s int, addr string) (int, error) {
	ep, err := sh.core.Listen(native.Socket(s), addr, native.FlagSynch)
	if err != nil {
		return -1, toErrno(err)
	}
	return int(ep), nil
}

// Connect dials addr and returns the endpoint.
func (sh *Shim) Connect(s int, addr string) (int, error) {
	ep, err := sh.core.Dial(native.Socket(s), addr, 0)
	if err != nil {
		return -1, toErrno(err)
	}
	return int(ep), nil
}

// Shutdown closes one endpoint of a socket. Endpoint handles are
// generation-tagged, so a stale handle fails EBADF instead of tearing down
// whatever reused the slot.
func (sh *Shim) Shutdown(s, ep int) error {
	if err := sh.core.EndpointClose(native.Endpoint(ep)); err != nil {
		return toErrno(err)
	}
	return nil
}

// Send transmits a plain buffer and returns the number of bytes queued.
func (sh *Shim) Send(s int, buf []byte, flags int) (int, error) {
	nflags, err := xlatFlags(flags)
	if err != nil {
		return -1, err
	}
	if err := sh.core.Send(native.Socket(s), buf, nflags); err != nil {
		return -1, toErrno(err)
	}
	return len(buf), nil
}

// SendEnvelope transmits a dynamic envelope zero-copy. On success the
// envelope is consumed; on failure the caller keeps ownership.
func (sh *Shim) SendEnvelope(s int, env *Envelope, flags int) (int, error) {
	nflags, err := xlatFlags(flags)
	if err != nil {
		return -1, err
	}
	m, err := env.take()
	if err != nil {
		return -1, err
	}
	n := m.Len()
	if err := sh.core.SendMsg(native.Socket(s), m, nflags); err != nil {
		return -1, toErrno(err)
	}
	env.consume()
	return n, nil
}

// Recv receives into a fixed buffer, truncating silently. The return value
// is the original message length, so callers detect truncation by comparing
// it against len(buf).
func (sh *Shim) Recv(s int, buf []byte, flags int) (int, error) {
	nflags, err := xlatFlags(flags)
	if err != nil {
		return -1, err
	}
	n, err := sh.core.Recv(native.Socket(s), buf, nflags)
	if err != nil {
		return -1, toErrno(err)
	}
	return n, nil
}

// RecvEnvelope receives one message as a dynamic envelope, transferring
// ownership to the caller.
func (sh *Shim) RecvEnvelope(s int, flags int) (*Envelope, error) {
	nflags, err := xlatFlags(flags)
	if err != nil {
		return nil, err
	}
	m, err := sh.core.RecvMsg(native.Socket(s), nflags)
	if err != nil {
		return nil, toErrno(err)
	}
	return wrapMsg(m), nil
}
