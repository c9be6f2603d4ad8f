package client

import (
	"sync"

	"duplexrpc/message"
)

// replyHandler consumes the reply messages routed to one pending call. It is
// invoked once per StreamItem and once for the terminal Completion (real or
// synthetic), and must not block indefinitely.
type replyHandler func(*message.Message)

// pendingCalls maps invocation identifiers to the reply handler of the call
// that allocated them. One mutex guards the map and the closed flag: the only
// realistic race is a call registering while the close path drains.
type pendingCalls struct {
	mu       sync.Mutex
	handlers map[string]replyHandler
	closed   bool
}

func newPendingCalls() *pendingCalls {
	return &pendingCalls{handlers: make(map[string]replyHandler)}
}

// register stores the handler for id. It fails once the connection has
// closed; the caller must fail the call immediately.
func (p *pendingCalls) register(id string, h replyHandler) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrClosed
	}
	p.handlers[id] = h
	return nil
}

// resolve hands m to the handler registered for id. A missing id is ignored:
// late or duplicate replies are not errors. The handler runs outside the
// lock.
func (p *pendingCalls) resolve(id string, m *message.Message) {
	p.mu.Lock()
	h := p.handlers[id]
	p.mu.Unlock()
	if h != nil {
		h(m)
	}
}

// remove deletes the entry for id. Idempotent.
func (p *pendingCalls) remove(id string) {
	p.mu.Lock()
	delete(p.handlers, id)
	p.mu.Unlock()
}

// drainAll marks the registry closed, fails every stored handler with the
// synthetic terminal message, and clears the map. Runs once, on connection
// closure; registrations racing with it land on the closed flag instead.
func (p *pendingCalls) drainAll(synthetic *message.Message) {
	p.mu.Lock()
	p.closed = true
	drained := p.handlers
	p.handlers = make(map[string]replyHandler)
	p.mu.Unlock()

	for _, h := range drained {
		h(synthetic)
	}
}
