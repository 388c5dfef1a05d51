// File: native/options.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Per-socket option storage. Option values cross the API boundary as raw
// little-endian byte slices: 4 bytes for int32 options, 8 bytes for 64-bit
// microsecond durations, free-form bytes for subscription filters.

package native

import (
	"bytes"
	"encoding/binary"
)

// Option identifies a native socket option.
type Option int

const (
	OptRaw Option = iota + 1
	OptLinger
	OptSndBuf
	OptRcvBuf
	OptReconnTime
	OptReconnMaxTime
	OptSndFD
	OptRcvFD
	OptRcvMaxSize
	OptMaxTTL
	OptRcvTimeo
	OptSndTimeo
	OptResendTime
	OptSubscribe
	OptUnsubscribe
	OptSurveyTime
)

// options holds the per-socket tunables. Durations are microseconds;
// a negative duration means no limit.
type options struct {
	raw           bool
	linger        int32
	sndBuf        int32
	rcvBuf        int32
	reconnTime    int64
	reconnMaxTime int64
	rcvMaxSize    int64
	maxTTL        int32
	rcvTimeo      int64
	sndTimeo      int64
	resendTime    int64
	surveyTime    int64
	subs          [][]byte
}

func defaultOptions() options {
	return options{
		linger:        1000,
		rcvMaxSize:    1024 * 1024,
		maxTTL:        8,
		reconnTime:    100_000,
		reconnMaxTime: 0,
		rcvTimeo:      -1,
		sndTimeo:      -1,
		resendTime:    60_000_000,
		surveyTime:    1_000_000,
	}
}

func decodeInt32(val []byte) (int32, error) {
	if len(val) != 4 {
		return 0, EInval
	}
	return int32(binary.LittleEndian.Uint32(val)), nil
}

func decodeInt64(val []byte) (int64, error) {
	if len(val) != 8 {
		return 0, EInval
	}
	return int64(binary.LittleEndian.Uint64(val)), nil
}

// set applies one option value. Unknown options fail ENotSup; poll-fd
// options are recognized but unsupported without the async polling subsystem.
func (o *options) set(opt Option, val []byte) error {
	switch opt {
	case OptRaw:
		v, err := decodeInt32(val)
		if err != nil {
			return err
		}
		o.raw = v != 0
	case OptLinger:
		return setInt32(&o.linger, val)
	case OptSndBuf:
		return setInt32(&o.sndBuf, val)
	case OptRcvBuf:
		return setInt32(&o.rcvBuf, val)
	case OptMaxTTL:
		return setInt32(&o.maxTTL, val)
	case OptReconnTime:
		return setInt64(&o.reconnTime, val)
	case OptReconnMaxTime:
		return setInt64(&o.reconnMaxTime, val)
	case OptRcvMaxSize:
		return setInt64(&o.rcvMaxSize, val)
	case OptRcvTimeo:
		return setInt64(&o.rcvTimeo, val)
	case OptSndTimeo:
		return setInt64(&o.sndTimeo, val)
	case OptResendTime:
		return setInt64(&o.resendTime, val)
	case OptSurveyTime:
		return setInt64(&o.surveyTime, val)
	case OptSubscribe:
		sub := make([]byte, len(val))
		copy(sub, val)
		o.subs = append(o.subs, sub)
	case OptUnsubscribe:
		for i, sub := range o.subs {
			if bytes.Equal(sub, val) {
				o.subs = append(o.subs[:i], o.subs[i+1:]...)
				return nil
			}
		}
		return ENoEnt
	case OptSndFD, OptRcvFD:
		return ENotSup
	default:
		return ENotSup
	}
	return nil
}

func setInt32(dst *int32, val []byte) error {
	v, err := decodeInt32(val)
	if err != nil {
		return err
	}
	*dst = v
	return nil
}

func setInt64(dst *int64, val []byte) error {
	v, err := decodeInt64(val)
	if err != nil {
		return err
	}
	*dst = v
	return nil
}

// matches reports whether any subscription filter is a prefix of body.
// A socket with no subscriptions matches nothing.
func (o *options) matches(body []byte) bool {
	for _, sub := range o.subs {
		if bytes.HasPrefix(body, sub) {
			return true
		}
	}
	return false
}

// int64Value is the read side used by Core.OptionInt64.
func (o *options) int64Value(opt Option) (int64, error) {
	switch opt {
	case OptLinger:
		return int64(o.linger), nil
	case OptSndBuf:
		return int64(o.sndBuf), nil
	case OptRcvBuf:
		return int64(o.rcvBuf), nil
	case OptMaxTTL:
		return int64(o.maxTTL), nil
	case OptReconnTime:
		return o.reconnTime, nil
	case OptReconnMaxTime:
		return o.reconnMaxTime, nil
	case OptRcvMaxSize:
		return o.rcvMaxSize, nil
	case OptRcvTimeo:
		return o.rcvTimeo, nil
	case OptSndTimeo:
		return o.sndTimeo, nil
	case OptResendTime:
		return o.resendTime, nil
	case OptSurveyTime:
		return o.surveyTime, nil
	default:
		return 0, ENotSup
	}
}
