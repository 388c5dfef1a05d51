// File: native/inproc.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// In-process transport registry. Listeners claim an inproc name; dialers
// resolve the name and get a pipe joined to the listening socket.

package native

import (
	"strings"
	"sync"
)

const inprocScheme = "inproc://"

// parseAddr validates an endpoint address and extracts the inproc name.
// Malformed addresses fail EAddrInval; well-formed non-inproc schemes fail
// ENotSup (no other transports in this slice).
func parseAddr(addr string) (string, error) {
	i := strings.Index(addr, "://")
	if i <= 0 || i+3 >= len(addr) {
		return "", EAddrInval
	}
	if !strings.HasPrefix(addr, inprocScheme) {
		return "", ENotSup
	}
	return addr[len(inprocScheme):], nil
}

type inprocRegistry struct {
	mu        sync.Mutex
	listeners map[string]*endpoint
}

func newInprocRegistry() *inprocRegistry {
	return &inprocRegistry{listeners: make(map[string]*endpoint)}
}

// register claims name for a listening endpoint.
func (r *inprocRegistry) register(name string, ep *endpoint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, busy := r.listeners[name]; busy {
		return EAddrInUse
	}
	r.listeners[name] = ep
	return nil
}

// resolve returns the listening endpoint for name, if any.
func (r *inprocRegistry) resolve(name string) (*endpoint, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ep, ok := r.listeners[name]
	return ep, ok
}

// unregister releases name if ep still owns it.
func (r *inprocRegistry) unregister(name string, ep *endpoint) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if cur, ok := r.listeners[name]; ok && cur == ep {
		delete(r.listeners, name)
	}
}
