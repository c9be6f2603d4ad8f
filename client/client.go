// Package client implements the client half of a duplex invocation protocol.
//
// A Conn sends named invocations to the remote peer over a
// transport.Transport, correlates the replies (single results, errors, or
// streamed items) back to the call that produced them, and dispatches inbound
// invocations from the peer to handlers registered with On. The wire format
// is owned by the codec; the transport is an opaque duplex payload stream.
package client

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"duplexrpc/codec"
	"duplexrpc/message"
	"duplexrpc/middleware"
	"duplexrpc/transport"
)

// Conn is one connection to a remote peer. Calls may be issued from any
// goroutine; replies are dispatched from the transport's read goroutine.
type Conn struct {
	id string

	tr  transport.Transport
	cdc codec.Codec
	lg  *zap.Logger

	send middleware.SendFunc

	pending *pendingCalls
	methods *methodTable
	nextID  atomic.Uint64

	mu       sync.Mutex
	closedFn func(error)
}

// Option configures a Conn.
type Option func(*Conn)

// WithLogger installs the diagnostic sink. Unknown methods, unrecognized
// message kinds and protocol gaps are reported here; the default is a no-op
// logger.
func WithLogger(lg *zap.Logger) Option {
	return func(c *Conn) { c.lg = lg }
}

// WithInterceptors wraps every outbound send with the given interceptors,
// outermost first.
func WithInterceptors(ics ...middleware.Interceptor) Option {
	return func(c *Conn) { c.send = middleware.Chain(ics...)(c.send) }
}

// New builds a connection over tr speaking cdc. The transport must not be
// started yet: New installs the inbound hooks, Start starts the transport.
func New(tr transport.Transport, cdc codec.Codec, opts ...Option) *Conn {
	c := &Conn{
		id:      uuid.NewString(),
		tr:      tr,
		cdc:     cdc,
		lg:      zap.NewNop(),
		pending: newPendingCalls(),
		methods: newMethodTable(),
	}
	c.send = func(ctx context.Context, payload []byte) error {
		return tr.Send(payload)
	}
	for _, opt := range opts {
		opt(c)
	}
	c.lg = c.lg.With(zap.String("conn", c.id), zap.String("codec", cdc.Name()))

	tr.OnReceived(c.onData)
	tr.OnClosed(c.onTransportClosed)
	return c
}

// Start starts the underlying transport.
func (c *Conn) Start(ctx context.Context) error {
	if err := c.tr.Start(ctx); err != nil {
		return fmt.Errorf("start transport: %w", err)
	}
	c.lg.Info("connection started")
	return nil
}

// Stop asks the transport to close. Pending calls are failed by the closure
// notification, not by Stop itself.
func (c *Conn) Stop() {
	if err := c.tr.Stop(); err != nil {
		c.lg.Warn("transport stop", zap.Error(err))
	}
}

// On registers a handler for inbound invocations of the named method. The
// last registration for a name wins.
func (c *Conn) On(method string, h MethodHandler) {
	c.methods.register(method, h)
}

// OnClosed registers the single closure subscriber, replacing any previous
// one. It receives the transport's close error, or nil for a graceful close.
func (c *Conn) OnClosed(fn func(err error)) {
	c.mu.Lock()
	c.closedFn = fn
	c.mu.Unlock()
}

func (c *Conn) allocID() string {
	return strconv.FormatUint(c.nextID.Add(1), 10)
}

// sendMessage serializes m and pushes it through the interceptor chain to the
// transport.
func (c *Conn) sendMessage(ctx context.Context, m *message.Message) error {
	payload, err := c.cdc.WriteMessage(m)
	if err != nil {
		return fmt.Errorf("encode %s: %w", m.Target, err)
	}
	if err := c.send(ctx, payload); err != nil {
		return fmt.Errorf("send %s: %w", m.Target, err)
	}
	return nil
}

// Invoke calls the named method on the peer and waits for its terminal reply.
// A void success returns (nil, nil); a peer-reported failure returns a
// *RemoteError. If ctx expires first the local wait is abandoned and the
// call's registry entry discarded; nothing is sent to the peer.
func (c *Conn) Invoke(ctx context.Context, method string, args ...any) (any, error) {
	type outcome struct {
		val any
		err error
	}

	id := c.allocID()
	ch := make(chan outcome, 1)
	deliver := func(out outcome) {
		select {
		case ch <- out:
		default:
			// A terminal outcome is already queued; late replies lose.
		}
	}

	h := func(m *message.Message) {
		switch m.Kind {
		case message.KindCompletion:
			switch {
			case m.Error != "" && m.ID == "":
				deliver(outcome{err: &ClosedError{Message: m.Error}})
			case m.Error != "":
				deliver(outcome{err: &RemoteError{Message: m.Error}})
			case m.HasResult:
				deliver(outcome{val: m.Result})
			default:
				deliver(outcome{})
			}
		case message.KindStreamItem:
			deliver(outcome{err: &ProtocolError{
				Message: fmt.Sprintf("server streamed into a non-streaming invocation of %q", method),
			}})
		}
	}

	if err := c.pending.register(id, h); err != nil {
		return nil, err
	}

	if err := c.sendMessage(ctx, message.NewInvocation(id, method, args, false)); err != nil {
		c.pending.remove(id)
		return nil, err
	}

	select {
	case out := <-ch:
		var pe *ProtocolError
		if errors.As(out.err, &pe) {
			// A stream item is not terminal on the wire, so the entry is
			// still registered; the call is over locally.
			c.pending.remove(id)
		}
		return out.val, out.err
	case <-ctx.Done():
		c.pending.remove(id)
		return nil, ctx.Err()
	}
}

// StreamItem is one element of a streamed call's push sequence: a value, or
// the terminal error.
type StreamItem struct {
	Value any
	Err   error
}

// Stream calls the named streaming method on the peer. Items arrive on the
// returned channel in wire order; the channel closes after the stream ends,
// either cleanly or after exactly one item with Err set. The consumer must
// drain the channel.
func (c *Conn) Stream(ctx context.Context, method string, args ...any) (<-chan StreamItem, error) {
	id := c.allocID()
	items := make(chan StreamItem, 16)
	var once sync.Once
	terminate := func(err error) {
		once.Do(func() {
			if err != nil {
				items <- StreamItem{Err: err}
			}
			close(items)
		})
	}

	h := func(m *message.Message) {
		switch m.Kind {
		case message.KindStreamItem:
			items <- StreamItem{Value: m.Item}
		case message.KindCompletion:
			switch {
			case m.Error != "" && m.ID == "":
				terminate(&ClosedError{Message: m.Error})
			case m.Error != "":
				terminate(&RemoteError{Message: m.Error})
			case m.HasResult:
				terminate(&ProtocolError{
					Message: fmt.Sprintf("server returned a single result for a streaming invocation of %q", method),
				})
			default:
				terminate(nil)
			}
		}
	}

	if err := c.pending.register(id, h); err != nil {
		return nil, err
	}

	if err := c.sendMessage(ctx, message.NewInvocation(id, method, args, false)); err != nil {
		c.pending.remove(id)
		return nil, err
	}

	return items, nil
}

// Notify sends a fire-and-forget invocation: no identifier is allocated and
// no reply is expected or tracked.
func (c *Conn) Notify(ctx context.Context, method string, args ...any) error {
	return c.sendMessage(ctx, message.NewInvocation("", method, args, true))
}

// onData is the dispatch path: parse the payload, then route each message in
// wire order. An individual message's problem never aborts the batch.
func (c *Conn) onData(payload []byte) {
	msgs, err := c.cdc.ParseMessages(payload)
	if err != nil {
		c.lg.Warn("dropping undecodable payload", zap.Error(err), zap.Int("bytes", len(payload)))
		return
	}

	for i := range msgs {
		m := &msgs[i]
		switch m.Kind {
		case message.KindInvocation:
			c.dispatchInvocation(m)
		case message.KindStreamItem:
			c.pending.resolve(m.ID, m)
		case message.KindCompletion:
			// Terminal for the call whether or not anyone is still waiting.
			c.pending.resolve(m.ID, m)
			c.pending.remove(m.ID)
		default:
			c.lg.Warn("unrecognized message kind", zap.Uint8("kind", m.RawKind))
		}
	}
}

func (c *Conn) dispatchInvocation(m *message.Message) {
	h, ok := c.methods.lookup(m.Target)
	if !ok {
		c.lg.Warn("no handler for inbound method", zap.String("method", m.Target))
		return
	}
	if m.ExpectsReply() {
		// Known gap: the peer will wait for a completion that is never sent.
		c.lg.Warn("inbound invocation expects a completion, which is not implemented",
			zap.String("method", m.Target), zap.String("invocationId", m.ID))
	}
	h(m.Arguments)
}

// onTransportClosed fails every pending call with a synthetic completion and
// notifies the closure subscriber. Runs once, from the transport.
func (c *Conn) onTransportClosed(err error) {
	reason := "connection closed"
	if err != nil {
		reason = err.Error()
	}
	c.lg.Info("connection closed", zap.Error(err))

	// Broadcast: the empty identifier marks the completion as synthetic.
	c.pending.drainAll(message.NewErrorCompletion("", reason))

	c.mu.Lock()
	fn := c.closedFn
	c.mu.Unlock()
	if fn != nil {
		fn(err)
	}
}
