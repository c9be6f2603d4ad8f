package transport

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// WebSocketTransport is a Transport over a websocket connection. Websocket
// messages already have boundaries, so each payload maps to one binary
// message with no extra framing.
type WebSocketTransport struct {
	url    string
	header http.Header

	mu      sync.Mutex
	conn    *websocket.Conn
	started bool
	stopped bool

	writeMu sync.Mutex

	onReceived func([]byte)
	onClosed   func(error)
	closeOnce  sync.Once
}

// NewWebSocket returns a transport that will dial the websocket URL on Start.
// header may be nil.
func NewWebSocket(url string, header http.Header) *WebSocketTransport {
	return &WebSocketTransport{url: url, header: header}
}

func (t *WebSocketTransport) OnReceived(fn func(payload []byte)) { t.onReceived = fn }
func (t *WebSocketTransport) OnClosed(fn func(err error)) { t.onClosed = fn }

func (t *WebSocketTransport) Start(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.started {
		return errors.New("websocket transport already started")
	}
	if t.stopped {
		return ErrClosed
	}

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, t.url, t.header)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		return fmt.Errorf("dial %s: %w", t.url, err)
	}

	t.conn = conn
	t.started = true
	go t.readLoop(conn)
	return nil
}

func (t *WebSocketTransport) readLoop(conn *websocket.Conn) {
	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			t.notifyClosed(t.closeReason(err))
			return
		}
		if t.onReceived != nil {
			t.onReceived(payload)
		}
	}
}

func (t *WebSocketTransport) closeReason(err error) error {
	t.mu.Lock()
	stopped := t.stopped
	t.mu.Unlock()
	if stopped || websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
		return nil
	}
	return err
}

func (t *WebSocketTransport) notifyClosed(err error) {
	t.closeOnce.Do(func() {
		if t.onClosed != nil {
			t.onClosed(err)
		}
	})
}

func (t *WebSocketTransport) Send(payload []byte) error {
	t.mu.Lock()
	conn, started, stopped := t.conn, t.started, t.stopped
	t.mu.Unlock()

	if stopped {
		return ErrClosed
	}
	if !started {
		return errors.New("websocket transport not started")
	}

	t.writeMu.Lock()
	defer t.writeMu.Unlock()
	if err := conn.WriteMessage(websocket.BinaryMessage, payload); err != nil {
		return fmt.Errorf("websocket send: %w", err)
	}
	return nil
}

func (t *WebSocketTransport) Stop() error {
	t.mu.Lock()
	if t.stopped {
		t.mu.Unlock()
		return nil
	}
	t.stopped = true
	conn, started := t.conn, t.started
	t.mu.Unlock()

	if conn == nil {
		if !started {
			t.notifyClosed(nil)
		}
		return nil
	}

	// Best-effort close handshake before tearing down the socket.
	t.writeMu.Lock()
	deadline := time.Now().Add(time.Second)
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
	t.writeMu.Unlock()

	return conn.Close()
}
