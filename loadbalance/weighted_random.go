package loadbalance

import (
	"math/rand"

	"duplexrpc/registry"
)

// WeightedRandom picks endpoints with probability proportional to their
// weight. Endpoints with non-positive weight count as weight 1.
type WeightedRandom struct{}

func (b *WeightedRandom) Pick(endpoints []registry.Endpoint) (*registry.Endpoint, error) {
	if len(endpoints) == 0 {
		return nil, ErrNoEndpoints
	}

	total := 0
	for i := range endpoints {
		total += effectiveWeight(&endpoints[i])
	}

	n := rand.Intn(total)
	for i := range endpoints {
		n -= effectiveWeight(&endpoints[i])
		if n < 0 {
			return &endpoints[i], nil
		}
	}
	return &endpoints[len(endpoints)-1], nil
}

func effectiveWeight(ep *registry.Endpoint) int {
	if ep.Weight <= 0 {
		return 1
	}
	return ep.Weight
}

func (b *WeightedRandom) Name() string { return "weighted_random" }
