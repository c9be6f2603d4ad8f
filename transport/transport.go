// Package transport provides the duplex byte-payload connections a protocol
// connection runs over.
//
// A Transport moves opaque payloads in both directions and reports closure.
// The connection core installs its two inbound hooks (OnReceived, OnClosed)
// before calling Start; after Start the transport owns a read loop and calls
// the hooks from it, one payload at a time.
package transport

import (
	"context"
	"errors"
)

// ErrClosed is returned by Send once a transport is closed, and wrapped by
// implementations when an operation races with closure.
var ErrClosed = errors.New("transport closed")

// Transport is a duplex payload stream between two peers.
//
// Implementations deliver payloads intact and in order, call OnReceived
// sequentially from a single goroutine, and call OnClosed exactly once — with
// nil for a deliberate or clean peer close, non-nil for a failure.
type Transport interface {
	// Start establishes the connection and begins reading. Hooks must be
	// installed before Start.
	Start(ctx context.Context) error

	// Stop closes the connection. The OnClosed hook still fires, with a nil
	// error. Safe to call more than once.
	Stop() error

	// Send writes one payload. Concurrent calls are serialized.
	Send(payload []byte) error

	// OnReceived installs the inbound payload hook.
	OnReceived(fn func(payload []byte))

	// OnClosed installs the closure hook.
	OnClosed(fn func(err error))
}
