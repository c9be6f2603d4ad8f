// Package loadbalance picks one endpoint out of a discovered list. A client
// dials a single connection, so a balancer runs once per dial rather than per
// call.
package loadbalance

import (
	"errors"

	"duplexrpc/registry"
)

// ErrNoEndpoints is returned when the discovered list is empty.
var ErrNoEndpoints = errors.New("no endpoints available")

// Balancer chooses an endpoint. Implementations must be goroutine-safe.
type Balancer interface {
	Pick(endpoints []registry.Endpoint) (*registry.Endpoint, error)

	// Name identifies the strategy, for logging.
	Name() string
}
