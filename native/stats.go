// File: native/stats.go
// Author: momentics <momentics@gmail.com>
//
// Runtime counters for the native core.
// Exposes counters in a thread-safe map with dynamic registration.

package native

import (
	"sync"
	"time"
)

// statsRegistry holds mutable counters for core activity.
type statsRegistry struct {
	mu       sync.RWMutex
	counters map[string]int64
	updated  time.Time
}

func newStatsRegistry() *statsRegistry {
	return &statsRegistry{
		counters: make(map[string]int64),
	}
}

// add increments a counter key.
func (sr *statsRegistry) add(key string, delta int64) {
	sr.mu.Lock()
	sr.counters[key] += delta
	sr.updated = time.Now()
	sr.mu.Unlock()
}

// snapshot returns the latest counters.
func (sr *statsRegistry) snapshot() map[string]int64 {
	sr.mu.RLock()
	defer sr.mu.RUnlock()
	out := make(map[string]int64, len(sr.counters))
	for k, v := range sr.counters {
		out[k] = v
	}
	return out
}
