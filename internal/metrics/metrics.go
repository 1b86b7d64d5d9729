// Package metrics keeps named event counters for the stats endpoint.
package metrics

import "sync"

const (
	Joins     = "joins"
	Leaves    = "leaves"
	Evictions = "evictions"
	Relayed   = "relayed"

	DeliveryFailed = "delivery_failed"
	Kicked         = "kicked_slow_member"

	DropMalformed     = "dropped_malformed"
	DropInvalid       = "dropped_invalid_payload"
	DropUnknownType   = "dropped_unknown_type"
	DropNotJoined     = "dropped_not_joined"
	DropAlreadyJoined = "dropped_already_joined"
	DropNoTarget      = "dropped_no_target"
	DropRateLimited   = "dropped_rate_limited"
)

// Metrics is a concurrency-safe counter registry. A nil *Metrics is valid
// and counts nothing.
type Metrics struct {
	mu sync.Mutex
	m  map[string]uint64
}

func New() *Metrics {
	return &Metrics{
		m: make(map[string]uint64),
	}
}

func (m *Metrics) Inc(name string) {
	if m == nil {
		return
	}
	m.mu.Lock()
	m.m[name]++
	m.mu.Unlock()
}

func (m *Metrics) Get(name string) uint64 {
	if m == nil {
		return 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.m[name]
}

// Snapshot copies all counters.
func (m *Metrics) Snapshot() map[string]uint64 {
	out := make(map[string]uint64)
	if m == nil {
		return out
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, v := range m.m {
		out[k] = v
	}
	return out
}
