package client

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"duplexrpc/message"
)

func TestPendingResolveUnknownIDIgnored(t *testing.T) {
	p := newPendingCalls()

	// Must not panic or call anything.
	p.resolve("404", message.NewCompletion("404"))
}

func TestPendingRemoveIdempotent(t *testing.T) {
	p := newPendingCalls()
	require.NoError(t, p.register("1", func(*message.Message) {}))

	p.remove("1")
	p.remove("1")
}

func TestPendingResolveRoutesByID(t *testing.T) {
	p := newPendingCalls()

	var got []string
	require.NoError(t, p.register("1", func(m *message.Message) { got = append(got, "1:"+m.Error) }))
	require.NoError(t, p.register("2", func(m *message.Message) { got = append(got, "2:"+m.Error) }))

	p.resolve("2", message.NewErrorCompletion("2", "x"))
	assert.Equal(t, []string{"2:x"}, got)
}

func TestPendingDrainAllFailsEveryoneAndCloses(t *testing.T) {
	p := newPendingCalls()

	var failures []string
	for _, id := range []string{"1", "2", "3"} {
		require.NoError(t, p.register(id, func(m *message.Message) {
			failures = append(failures, m.Error)
		}))
	}

	p.drainAll(message.NewErrorCompletion("", "wire cut"))
	assert.Equal(t, []string{"wire cut", "wire cut", "wire cut"}, failures)

	// Drained handlers are gone; resolving again is a no-op.
	p.resolve("1", message.NewCompletion("1"))
	assert.Len(t, failures, 3)

	// Registration on a closed registry fails.
	assert.ErrorIs(t, p.register("4", func(*message.Message) {}), ErrClosed)
}
