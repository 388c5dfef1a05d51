// File: compat/errno.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Bidirectional mapping between the native error space and the legacy
// POSIX-style error numbering. Both directions scan the same table.

package compat

import (
	"fmt"

	"github.com/momentics/hioload-sp/native"
)

// Errno is a legacy POSIX-style error number. The values form a stable ABI
// independent of the host platform; the block above hausnumero covers codes
// with no conventional number.
type Errno int

const hausnumero = 156384712

const (
	ENOENT       Errno = 2
	EINTR        Errno = 4
	EIO          Errno = 5
	EBADF        Errno = 9
	EAGAIN       Errno = 11
	ENOMEM       Errno = 12
	EACCES       Errno = 13
	EBUSY        Errno = 16
	EINVAL       Errno = 22
	EPROTO       Errno = 71
	EMSGSIZE     Errno = 90
	ENOPROTOOPT  Errno = 92
	ENOTSUP      Errno = 95
	EAFNOSUPPORT Errno = 97
	EADDRINUSE   Errno = 98
	EADDRNOTAVAIL Errno = 99
	ECONNABORTED Errno = 103
	ECONNRESET   Errno = 104
	ETIMEDOUT    Errno = 110
	ECONNREFUSED Errno = 111
	EHOSTUNREACH Errno = 113
	EFSM         Errno = hausnumero + 54
)

var errnos = []struct {
	nerr native.Error
	perr Errno
}{
	{native.EIntr, EINTR},
	{native.ENomem, ENOMEM},
	{native.EInval, EINVAL},
	{native.EBusy, EBUSY},
	{native.ETimedout, ETIMEDOUT},
	{native.EConnRefused, ECONNREFUSED},
	{native.EClosed, EBADF},
	{native.EAgain, EAGAIN},
	{native.ENotSup, ENOTSUP},
	{native.EAddrInUse, EADDRINUSE},
	{native.EState, EFSM},
	{native.ENoEnt, ENOENT},
	{native.EProto, EPROTO},
	{native.EUnreachable, EHOSTUNREACH},
	{native.EAddrInval, EADDRNOTAVAIL},
	{native.EPerm, EACCES},
	{native.EMsgSize, EMSGSIZE},
	{native.EConnAborted, ECONNABORTED},
	{native.EConnReset, ECONNRESET},
}

// toErrno maps a native error onto the legacy space. The mapping never
// fails: codes outside the table degrade to a generic I/O error.
func toErrno(err error) Errno {
	if ne, ok := err.(native.Error); ok {
		for _, e := range errnos {
			if e.nerr == ne {
				return e.perr
			}
		}
	}
	return EIO
}

// nativeFor is the reverse direction over the same table.
func nativeFor(e Errno) (native.Error, bool) {
	for _, ent := range errnos {
		if ent.perr == e {
			return ent.nerr, true
		}
	}
	return 0, false
}

// Strerror returns human-readable text for a legacy error number. Known
// codes reuse the native layer's strings; the generic I/O code has a fixed
// string; anything else is synthesized. The result is never empty.
func Strerror(e Errno) string {
	if ne, ok := nativeFor(e); ok {
		return ne.Error()
	}
	if e == EIO {
		return "Unknown I/O error"
	}
	return fmt.Sprintf("Unknown error %d", int(e))
}

// Error implements the error interface.
func (e Errno) Error() string {
	return Strerror(e)
}
