// File: core/platform/clock_linux.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

//go:build linux

package platform

import "golang.org/x/sys/unix"

func clockNow() int64 {
	var ts unix.Timespec
	if err := unix.ClockGettime(unix.CLOCK_MONOTONIC, &ts); err != nil {
		// CLOCK_MONOTONIC is mandatory on every supported kernel.
		panic("platform: clock_gettime failed: " + err.Error())
	}
	return ts.Sec*1_000_000 + ts.Nsec/1_000
}
