// Package registry resolves peer endpoints for dialing. A peer service
// publishes the addresses it listens on; clients discover them and pick one
// to connect to.
package registry

// Endpoint is one published address of a peer service.
type Endpoint struct {
	Addr    string
	Weight  int
	Version string
}

// Registry is the discovery capability. Implementations must be safe for
// concurrent use.
type Registry interface {
	// Register publishes an endpoint under the service name. ttl is the
	// registration lifetime in seconds where the backend supports expiry.
	Register(service string, ep Endpoint, ttl int64) error

	// Deregister withdraws the endpoint with the given address.
	Deregister(service string, addr string) error

	// Discover returns the currently published endpoints for the service.
	Discover(service string) ([]Endpoint, error)

	// Watch emits the full endpoint list whenever it changes.
	Watch(service string) <-chan []Endpoint
}
