// File: core/platform/clock.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package platform

// Now returns the current monotonic-ish time in microseconds. The epoch is
// arbitrary; only differences between readings are meaningful. Values never
// decrease within a process.
func Now() int64 {
	return clockNow()
}
