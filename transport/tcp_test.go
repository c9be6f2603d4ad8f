package transport

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// echoServer accepts one connection and echoes every frame back.
func echoServer(t *testing.T) (addr string, closeConn func()) {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	connCh := make(chan net.Conn, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		connCh <- conn
		for {
			payload, err := readFrame(conn)
			if err != nil {
				return
			}
			if err := writeFrame(conn, payload); err != nil {
				return
			}
		}
	}()

	return ln.Addr().String(), func() {
		conn := <-connCh
		conn.Close()
	}
}

func TestTCPTransportEcho(t *testing.T) {
	addr, _ := echoServer(t)

	tr := NewTCP(addr)
	received := make(chan []byte, 1)
	tr.OnReceived(func(p []byte) { received <- p })
	tr.OnClosed(func(error) {})

	require.NoError(t, tr.Start(context.Background()))
	defer tr.Stop()

	require.NoError(t, tr.Send([]byte("ping")))

	select {
	case p := <-received:
		assert.Equal(t, []byte("ping"), p)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for echo")
	}
}

func TestTCPTransportPeerCloseIsGraceful(t *testing.T) {
	addr, closeConn := echoServer(t)

	tr := NewTCP(addr)
	closed := make(chan error, 1)
	tr.OnReceived(func([]byte) {})
	tr.OnClosed(func(err error) { closed <- err })

	require.NoError(t, tr.Start(context.Background()))
	closeConn()

	select {
	case err := <-closed:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for close notification")
	}
}

func TestTCPTransportStop(t *testing.T) {
	addr, _ := echoServer(t)

	tr := NewTCP(addr)
	closed := make(chan error, 1)
	tr.OnReceived(func([]byte) {})
	tr.OnClosed(func(err error) { closed <- err })

	require.NoError(t, tr.Start(context.Background()))
	require.NoError(t, tr.Stop())

	select {
	case err := <-closed:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for close notification")
	}

	assert.ErrorIs(t, tr.Send([]byte("late")), ErrClosed)
}

func TestTCPTransportSendBeforeStart(t *testing.T) {
	tr := NewTCP("127.0.0.1:1")
	require.Error(t, tr.Send([]byte("early")))
}

func TestTCPTransportDialFailure(t *testing.T) {
	// Port 1 is essentially never listening.
	tr := NewTCP("127.0.0.1:1")
	tr.OnReceived(func([]byte) {})
	tr.OnClosed(func(error) {})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.Error(t, tr.Start(ctx))
}
