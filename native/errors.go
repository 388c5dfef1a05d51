// File: native/errors.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Error code space of the native layer. Codes are stable small integers;
// the compat shim maps them onto the legacy POSIX-style error space.

package native

import "fmt"

// Error is a native layer error code.
type Error int

const (
	EIntr Error = iota + 1
	ENomem
	EInval
	EBusy
	ETimedout
	EConnRefused
	EClosed
	EAgain
	ENotSup
	EAddrInUse
	EState
	ENoEnt
	EProto
	EUnreachable
	EAddrInval
	EPerm
	EMsgSize
	EConnAborted
	EConnReset
)

var errorStrings = map[Error]string{
	EIntr:        "Interrupted",
	ENomem:       "Out of memory",
	EInval:       "Invalid argument",
	EBusy:        "Resource busy",
	ETimedout:    "Timed out",
	EConnRefused: "Connection refused",
	EClosed:      "Object closed",
	EAgain:       "Try again",
	ENotSup:      "Not supported",
	EAddrInUse:   "Address in use",
	EState:       "Incorrect state",
	ENoEnt:       "Entry not found",
	EProto:       "Protocol error",
	EUnreachable: "Destination unreachable",
	EAddrInval:   "Address invalid",
	EPerm:        "Permission denied",
	EMsgSize:     "Message too large",
	EConnAborted: "Connection aborted",
	EConnReset:   "Connection reset",
}

// Error implements the error interface.
func (e Error) Error() string {
	if s, ok := errorStrings[e]; ok {
		return s
	}
	return fmt.Sprintf("Unknown error #%d", int(e))
}
