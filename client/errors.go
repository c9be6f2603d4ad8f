package client

import "errors"

// ErrClosed is returned when a call is initiated on a closed connection.
// ClosedError matches it through errors.Is.
var ErrClosed = errors.New("connection closed")

// RemoteError is a failure reported by the peer: the error text of a
// Completion message, verbatim.
type RemoteError struct {
	Message string
}

func (e *RemoteError) Error() string { return e.Message }

// ProtocolError is a local failure caused by peer behavior inconsistent with
// the call shape, such as streaming into a non-streaming call. It is distinct
// from RemoteError: the peer reported nothing, it misbehaved.
type ProtocolError struct {
	Message string
}

func (e *ProtocolError) Error() string { return e.Message }

// ClosedError fails every call still pending when the connection closes. The
// message is derived from the transport's close error when there is one.
type ClosedError struct {
	Message string
}

func (e *ClosedError) Error() string { return e.Message }

func (e *ClosedError) Is(target error) bool { return target == ErrClosed }
