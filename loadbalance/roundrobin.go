package loadbalance

import (
	"sync/atomic"

	"duplexrpc/registry"
)

// RoundRobin cycles through endpoints in order, using an atomic counter so
// concurrent dials stay lock-free.
type RoundRobin struct {
	counter atomic.Int64
}

func (b *RoundRobin) Pick(endpoints []registry.Endpoint) (*registry.Endpoint, error) {
	if len(endpoints) == 0 {
		return nil, ErrNoEndpoints
	}
	i := (b.counter.Add(1) - 1) % int64(len(endpoints))
	return &endpoints[i], nil
}

func (b *RoundRobin) Name() string { return "round_robin" }
