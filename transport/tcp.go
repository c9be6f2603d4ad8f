package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
)

// TCPTransport is a Transport over a single TCP connection, with
// length-prefixed framing. One goroutine reads frames and feeds OnReceived;
// writers share the connection and are serialized by a mutex.
type TCPTransport struct {
	addr string

	mu      sync.Mutex
	conn    net.Conn
	started bool
	stopped bool

	writeMu sync.Mutex

	onReceived func([]byte)
	onClosed   func(error)
	closeOnce  sync.Once
}

// NewTCP returns a transport that will dial addr on Start.
func NewTCP(addr string) *TCPTransport {
	return &TCPTransport{addr: addr}
}

// NewTCPConn wraps an already-established connection; Start skips dialing.
func NewTCPConn(conn net.Conn) *TCPTransport {
	return &TCPTransport{conn: conn}
}

func (t *TCPTransport) OnReceived(fn func(payload []byte)) { t.onReceived = fn }
func (t *TCPTransport) OnClosed(fn func(err error)) { t.onClosed = fn }

func (t *TCPTransport) Start(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.started {
		return errors.New("tcp transport already started")
	}
	if t.stopped {
		return ErrClosed
	}

	if t.conn == nil {
		var d net.Dialer
		conn, err := d.DialContext(ctx, "tcp", t.addr)
		if err != nil {
			return fmt.Errorf("dial %s: %w", t.addr, err)
		}
		t.conn = conn
	}
	t.started = true

	go t.readLoop(t.conn)
	return nil
}

// readLoop reads frames until the connection fails or is closed, then fires
// the closure hook. A clean EOF or a close we initiated counts as graceful.
func (t *TCPTransport) readLoop(conn net.Conn) {
	for {
		payload, err := readFrame(conn)
		if err != nil {
			t.notifyClosed(t.closeReason(err))
			return
		}
		if t.onReceived != nil {
			t.onReceived(payload)
		}
	}
}

func (t *TCPTransport) closeReason(err error) error {
	t.mu.Lock()
	stopped := t.stopped
	t.mu.Unlock()
	if stopped || errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) {
		return nil
	}
	return err
}

func (t *TCPTransport) notifyClosed(err error) {
	t.closeOnce.Do(func() {
		if t.onClosed != nil {
			t.onClosed(err)
		}
	})
}

func (t *TCPTransport) Send(payload []byte) error {
	t.mu.Lock()
	conn, started, stopped := t.conn, t.started, t.stopped
	t.mu.Unlock()

	if stopped {
		return ErrClosed
	}
	if !started {
		return errors.New("tcp transport not started")
	}

	t.writeMu.Lock()
	defer t.writeMu.Unlock()
	if err := writeFrame(conn, payload); err != nil {
		return fmt.Errorf("tcp send: %w", err)
	}
	return nil
}

func (t *TCPTransport) Stop() error {
	t.mu.Lock()
	if t.stopped {
		t.mu.Unlock()
		return nil
	}
	t.stopped = true
	conn, started := t.conn, t.started
	t.mu.Unlock()

	var err error
	if conn != nil {
		err = conn.Close()
	}
	if !started {
		// No read loop to observe the close.
		t.notifyClosed(nil)
	}
	return err
}
