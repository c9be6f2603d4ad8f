package client

import (
	"context"
	"fmt"

	"duplexrpc/codec"
	"duplexrpc/loadbalance"
	"duplexrpc/registry"
	"duplexrpc/transport"
)

// Dial connects to addr over TCP with the JSON codec and starts the
// connection.
func Dial(ctx context.Context, addr string, opts ...Option) (*Conn, error) {
	conn := New(transport.NewTCP(addr), codec.NewJSON(), opts...)
	if err := conn.Start(ctx); err != nil {
		return nil, err
	}
	return conn, nil
}

// DialService discovers the service's endpoints in the registry, lets the
// balancer pick one, and dials it.
func DialService(ctx context.Context, reg registry.Registry, bal loadbalance.Balancer, service string, opts ...Option) (*Conn, error) {
	eps, err := reg.Discover(service)
	if err != nil {
		return nil, fmt.Errorf("discover %s: %w", service, err)
	}
	ep, err := bal.Pick(eps)
	if err != nil {
		return nil, fmt.Errorf("pick endpoint for %s: %w", service, err)
	}
	return Dial(ctx, ep.Addr, opts...)
}
