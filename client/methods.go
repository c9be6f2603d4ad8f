package client

import "sync"

// MethodHandler handles an inbound invocation. Arguments arrive in wire
// order, decoded by the codec; type checking is the handler's concern.
type MethodHandler func(args []any)

// methodTable maps method names to locally registered handlers. Handlers live
// for the lifetime of the connection; re-registering a name replaces the
// previous handler.
type methodTable struct {
	mu       sync.RWMutex
	handlers map[string]MethodHandler
}

func newMethodTable() *methodTable {
	return &methodTable{handlers: make(map[string]MethodHandler)}
}

func (t *methodTable) register(name string, h MethodHandler) {
	t.mu.Lock()
	t.handlers[name] = h
	t.mu.Unlock()
}

func (t *methodTable) lookup(name string) (MethodHandler, bool) {
	t.mu.RLock()
	h, ok := t.handlers[name]
	t.mu.RUnlock()
	return h, ok
}
