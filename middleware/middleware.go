// Package middleware wraps the outbound send path of a connection. Every
// serialized invocation payload passes through the installed interceptor
// chain on its way to the transport.
package middleware

import "context"

// SendFunc sends one serialized payload to the peer.
type SendFunc func(ctx context.Context, payload []byte) error

// Interceptor wraps a SendFunc with extra behavior.
type Interceptor func(next SendFunc) SendFunc

// Chain composes interceptors into one. The first interceptor is outermost:
// Chain(a, b)(send) runs a, then b, then send.
func Chain(interceptors ...Interceptor) Interceptor {
	return func(next SendFunc) SendFunc {
		for i := len(interceptors) - 1; i >= 0; i-- {
			next = interceptors[i](next)
		}
		return next
	}
}
