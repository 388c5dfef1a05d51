// Package platform
// Author: momentics <momentics@gmail.com>
//
// Minimal cross-platform concurrency primitives for hioload-sp: exclusive
// mutex, condition variable with absolute-deadline waits, joinable thread,
// process-wide one-time initializer, and a microsecond monotonic clock.
// The native socket core builds its blocking send/receive paths on these
// primitives; nothing here depends on the rest of the library.
package platform
