// File: core/platform/clock_stub.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

//go:build !linux

package platform

import "time"

var clockEpoch = time.Now()

func clockNow() int64 {
	// time.Since uses the runtime monotonic reading on every platform.
	return time.Since(clockEpoch).Microseconds()
}
