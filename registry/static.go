package registry

import "sync"

// StaticRegistry keeps endpoints in memory. It serves fixed topologies and
// tests; ttl is accepted and ignored.
type StaticRegistry struct {
	mu        sync.Mutex
	endpoints map[string][]Endpoint
	watchers  map[string][]chan []Endpoint
}

func NewStatic() *StaticRegistry {
	return &StaticRegistry{
		endpoints: make(map[string][]Endpoint),
		watchers:  make(map[string][]chan []Endpoint),
	}
}

func (r *StaticRegistry) Register(service string, ep Endpoint, _ int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	eps := r.endpoints[service]
	replaced := false
	for i := range eps {
		if eps[i].Addr == ep.Addr {
			eps[i] = ep
			replaced = true
			break
		}
	}
	if !replaced {
		eps = append(eps, ep)
	}
	r.endpoints[service] = eps
	r.notifyLocked(service)
	return nil
}

func (r *StaticRegistry) Deregister(service string, addr string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	eps := r.endpoints[service]
	for i := range eps {
		if eps[i].Addr == addr {
			r.endpoints[service] = append(eps[:i], eps[i+1:]...)
			break
		}
	}
	r.notifyLocked(service)
	return nil
}

func (r *StaticRegistry) Discover(service string) ([]Endpoint, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	eps := make([]Endpoint, len(r.endpoints[service]))
	copy(eps, r.endpoints[service])
	return eps, nil
}

func (r *StaticRegistry) Watch(service string) <-chan []Endpoint {
	r.mu.Lock()
	defer r.mu.Unlock()

	ch := make(chan []Endpoint, 1)
	r.watchers[service] = append(r.watchers[service], ch)
	return ch
}

// notifyLocked pushes the current list to every watcher, dropping the update
// for watchers that have not drained the previous one.
func (r *StaticRegistry) notifyLocked(service string) {
	for _, ch := range r.watchers[service] {
		eps := make([]Endpoint, len(r.endpoints[service]))
		copy(eps, r.endpoints[service])
		select {
		case ch <- eps:
		default:
		}
	}
}
