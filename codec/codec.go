// Package codec translates between transport payloads and protocol messages.
//
// The connection core never looks at payload bytes: it hands every inbound
// payload to ParseMessages and serializes every outbound message through
// WriteMessage. One payload may carry any number of messages.
package codec

import "duplexrpc/message"

// Codec is the wire-format capability a connection is built with.
type Codec interface {
	// Name identifies the format, for logging.
	Name() string

	// ParseMessages decodes one transport payload into the messages it
	// carries, in wire order. Messages with an unknown tag are returned as
	// message.KindUnrecognized rather than failing the batch; an error means
	// the payload itself is malformed and nothing could be decoded.
	ParseMessages(payload []byte) ([]message.Message, error)

	// WriteMessage encodes a single message into one transport payload.
	WriteMessage(m *message.Message) ([]byte, error)
}
