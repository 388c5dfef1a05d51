// Package native
// Author: momentics <momentics@gmail.com>
//
// Handle-based socket and message core for hioload-sp.
// Sockets and endpoints are addressed through generation-tagged integer
// handles; messages are owned objects with separate body and header regions
// backed by pooled storage. Transfer runs over an in-process transport that
// pairs listeners and dialers by inproc address. Blocking send/receive paths
// are built on the core/platform primitives, including absolute-deadline
// condition waits for socket timeouts.
//
// The legacy compatibility shim in package compat translates onto this layer.
package native
