package transport

import (
	"context"
	"sync"
)

// Pipe returns two connected in-memory transports: payloads sent on one side
// arrive at the other. A pipe needs no network and is the transport used by
// tests and in-process wiring.
func Pipe() (*PipeTransport, *PipeTransport) {
	a := newPipeEnd()
	b := newPipeEnd()
	a.peer, b.peer = b, a
	return a, b
}

// PipeTransport is one end of an in-memory duplex pipe.
type PipeTransport struct {
	peer *PipeTransport

	inbox chan []byte
	done  chan struct{}

	mu       sync.Mutex
	closeErr error
	closed   bool

	onReceived func([]byte)
	onClosed   func(error)
}

func newPipeEnd() *PipeTransport {
	return &PipeTransport{
		inbox: make(chan []byte, 64),
		done:  make(chan struct{}),
	}
}

func (t *PipeTransport) OnReceived(fn func(payload []byte)) { t.onReceived = fn }
func (t *PipeTransport) OnClosed(fn func(err error)) { t.onClosed = fn }

func (t *PipeTransport) Start(ctx context.Context) error {
	select {
	case <-t.done:
		return ErrClosed
	default:
	}
	go t.deliverLoop()
	return nil
}

// deliverLoop drains queued payloads before honoring closure, so payloads
// sent ahead of a close are never dropped.
func (t *PipeTransport) deliverLoop() {
	for {
		select {
		case p := <-t.inbox:
			if t.onReceived != nil {
				t.onReceived(p)
			}
		default:
			select {
			case p := <-t.inbox:
				if t.onReceived != nil {
					t.onReceived(p)
				}
			case <-t.done:
				if t.onClosed != nil {
					t.mu.Lock()
					err := t.closeErr
					t.mu.Unlock()
					t.onClosed(err)
				}
				return
			}
		}
	}
}

func (t *PipeTransport) Send(payload []byte) error {
	// Copy so the sender may reuse its buffer.
	p := make([]byte, len(payload))
	copy(p, payload)

	select {
	case <-t.done:
		return ErrClosed
	case <-t.peer.done:
		return ErrClosed
	case t.peer.inbox <- p:
		return nil
	}
}

// Stop closes both ends of the pipe gracefully.
func (t *PipeTransport) Stop() error {
	t.closeWith(nil)
	t.peer.closeWith(nil)
	return nil
}

// Break tears down both ends with an error, simulating a transport failure.
func (t *PipeTransport) Break(err error) {
	t.closeWith(err)
	t.peer.closeWith(err)
}

func (t *PipeTransport) closeWith(err error) {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return
	}
	t.closed = true
	t.closeErr = err
	t.mu.Unlock()
	close(t.done)
}
