// Package compat
// Author: momentics <momentics@gmail.com>
//
// Legacy raw-socket-style messaging API re-exposed on top of the hioload-sp
// native handle-based layer. Applications should avoid this surface if at
// all possible and use the native API instead; it exists so code written
// against the old integer-socket API keeps working.
//
// The translation preserves the legacy semantics without copying hot-path
// payloads: dynamically owned messages travel as Envelope values that keep
// the native message handle internally associated with the visible payload,
// scatter/gather transfers adopt a sole envelope buffer zero-copy, and
// ancillary data rides the native header region. Errors surface as Errno
// values in the legacy POSIX-style numbering.
package compat
