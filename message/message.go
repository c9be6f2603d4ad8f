// Package message defines the protocol messages exchanged between the two
// ends of a duplex connection.
//
// A Message is a tagged union. The Kind field says which variant it is and
// which of the remaining fields are meaningful:
//
//   - Invocation: Target, Arguments, ID (empty when no reply is expected),
//     NonBlocking.
//   - StreamItem: ID, Item — one pushed value for a streaming call.
//   - Completion: ID, and at most one of Error / Result. Neither set means a
//     void success.
package message

// Kind tags the message variant.
type Kind byte

const (
	// KindUnrecognized marks a message whose wire tag this version does not
	// know. The dispatcher reports and skips it.
	KindUnrecognized Kind = 0

	KindInvocation Kind = 1
	KindStreamItem Kind = 2
	KindCompletion Kind = 3
)

// Message is the envelope for a single protocol message.
//
// Argument, item and result values are untyped: the codec decides their wire
// representation, and handlers receive whatever the codec decoded.
type Message struct {
	Kind Kind

	// ID is the invocation identifier the message belongs to. Invocations
	// with an empty ID expect no reply.
	ID string

	// Target is the method name an Invocation addresses.
	Target    string
	Arguments []any

	// NonBlocking marks a fire-and-forget invocation.
	NonBlocking bool

	// Item is the pushed value of a StreamItem.
	Item any

	// Result is the success value of a Completion. HasResult distinguishes
	// a present-but-null result from an absent one.
	Result    any
	HasResult bool

	// Error is the failure text of a Completion. Error and Result are
	// mutually exclusive.
	Error string

	// RawKind preserves the wire tag of a KindUnrecognized message.
	RawKind byte
}

// NewInvocation builds an Invocation message. Pass an empty id for an
// invocation that expects no reply.
func NewInvocation(id, target string, args []any, nonBlocking bool) *Message {
	return &Message{
		Kind:        KindInvocation,
		ID:          id,
		Target:      target,
		Arguments:   args,
		NonBlocking: nonBlocking,
	}
}

// NewStreamItem builds a StreamItem carrying one pushed value.
func NewStreamItem(id string, item any) *Message {
	return &Message{Kind: KindStreamItem, ID: id, Item: item}
}

// NewCompletion builds a void-success Completion.
func NewCompletion(id string) *Message {
	return &Message{Kind: KindCompletion, ID: id}
}

// NewResultCompletion builds a Completion carrying a single result value.
func NewResultCompletion(id string, result any) *Message {
	return &Message{Kind: KindCompletion, ID: id, Result: result, HasResult: true}
}

// NewErrorCompletion builds a failed Completion carrying an error text.
func NewErrorCompletion(id, errText string) *Message {
	return &Message{Kind: KindCompletion, ID: id, Error: errText}
}

// ExpectsReply reports whether an inbound Invocation obliges the receiver to
// answer with a Completion.
func (m *Message) ExpectsReply() bool {
	return m.Kind == KindInvocation && m.ID != "" && !m.NonBlocking
}
