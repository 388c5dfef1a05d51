// File: compat/options.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Legacy (level, option) translation. Options carrying millisecond values in
// the old API are widened to 64-bit microseconds before they reach the
// native layer.

package compat

import (
	"encoding/binary"

	"github.com/momentics/hioload-sp/native"
)

// Socket domains.
const (
	AFSP    = 1
	AFSPRaw = 2
)

// Transfer flags.
const DontWait = 1

// Option levels. Protocol numbers double as option levels for
// protocol-specific options.
const (
	SolSocket = 0

	ProtoPair       = 16
	ProtoPub        = 32
	ProtoSub        = 33
	ProtoReq        = 48
	ProtoRep        = 49
	ProtoPush       = 80
	ProtoPull       = 81
	ProtoSurveyor   = 98
	ProtoRespondent = 99
)

// Socket-level options.
const (
	OptLinger          = 1
	OptSndBuf          = 2
	OptRcvBuf          = 3
	OptSndTimeo        = 4
	OptRcvTimeo        = 5
	OptReconnectIvl    = 6
	OptReconnectIvlMax = 7
	OptSndPrio         = 8
	OptRcvPrio         = 9
	OptSndFD           = 10
	OptRcvFD           = 11
	OptDomain          = 12
	OptProtocol        = 13
	OptIPv4Only        = 14
	OptSocketName      = 15
	OptRcvMaxSize      = 16
	OptMaxTTL          = 17
)

// Protocol-specific options.
const (
	OptSubSubscribe     = 1
	OptSubUnsubscribe   = 2
	OptReqResendIvl     = 1
	OptSurveyorDeadline = 1
)

// translate maps a legacy (level, option) pair to the native option plus a
// millisecond-conversion flag. Recognized-but-untranslatable options fail
// ENOPROTOOPT like unknown ones.
func translate(level, option int) (nopt native.Option, mscvt bool, err error) {
	switch level {
	case SolSocket:
		switch option {
		case OptLinger:
			return native.OptLinger, false, nil
		case OptSndBuf:
			return native.OptSndBuf, false, nil
		case OptRcvBuf:
			return native.OptRcvBuf, false, nil
		case OptReconnectIvl:
			return native.OptReconnTime, true, nil
		case OptReconnectIvlMax:
			return native.OptReconnMaxTime, true, nil
		case OptSndFD:
			return native.OptSndFD, false, nil
		case OptRcvFD:
			return native.OptRcvFD, false, nil
		case OptRcvMaxSize:
			return native.OptRcvMaxSize, false, nil
		case OptMaxTTL:
			return native.OptMaxTTL, false, nil
		case OptRcvTimeo:
			return native.OptRcvTimeo, true, nil
		case OptSndTimeo:
			return native.OptSndTimeo, true, nil
		default:
			return 0, false, ENOPROTOOPT
		}
	case ProtoReq:
		if option == OptReqResendIvl {
			return native.OptResendTime, true, nil
		}
		return 0, false, ENOPROTOOPT
	case ProtoSub:
		switch option {
		case OptSubSubscribe:
			return native.OptSubscribe, false, nil
		case OptSubUnsubscribe:
			return native.OptUnsubscribe, false, nil
		default:
			return 0, false, ENOPROTOOPT
		}
	case ProtoSurveyor:
		if option == OptSurveyorDeadline {
			return native.OptSurveyTime, true, nil
		}
		return 0, false, ENOPROTOOPT
	default:
		return 0, false, ENOPROTOOPT
	}
}

// SetSockopt sets a legacy socket option. Millisecond options must carry
// exactly a 32-bit integer; the value is scaled by 1000 and widened to
// 64-bit microseconds before the native call.
func (sh *Shim) SetSockopt(s, level, option int, val []byte) error {
	nopt, mscvt, err := translate(level, option)
	if err != nil {
		return err
	}
	if mscvt {
		if len(val) != 4 {
			return EINVAL
		}
		ms := int32(binary.LittleEndian.Uint32(val))
		usec := int64(ms) * 1000
		wide := make([]byte, 8)
		binary.LittleEndian.PutUint64(wide, uint64(usec))
		val = wide
	}
	if err := sh.core.SetOption(native.Socket(s), nopt, val); err != nil {
		return toErrno(err)
	}
	return nil
}
