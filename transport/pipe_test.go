package transport

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPipeBothDirections(t *testing.T) {
	a, b := Pipe()

	fromB := make(chan []byte, 1)
	fromA := make(chan []byte, 1)
	a.OnReceived(func(p []byte) { fromB <- p })
	a.OnClosed(func(error) {})
	b.OnReceived(func(p []byte) { fromA <- p })
	b.OnClosed(func(error) {})

	require.NoError(t, a.Start(context.Background()))
	require.NoError(t, b.Start(context.Background()))

	require.NoError(t, a.Send([]byte("a to b")))
	require.NoError(t, b.Send([]byte("b to a")))

	assert.Equal(t, []byte("a to b"), <-fromA)
	assert.Equal(t, []byte("b to a"), <-fromB)
}

func TestPipeDeliversQueuedBeforeClose(t *testing.T) {
	a, b := Pipe()

	got := make(chan []byte, 8)
	closed := make(chan error, 1)
	b.OnReceived(func(p []byte) { got <- p })
	b.OnClosed(func(err error) { closed <- err })
	a.OnReceived(func([]byte) {})
	a.OnClosed(func(error) {})
	require.NoError(t, a.Start(context.Background()))

	// Queue payloads before b's delivery loop even exists, then close.
	require.NoError(t, a.Send([]byte("one")))
	require.NoError(t, a.Send([]byte("two")))
	require.NoError(t, b.Start(context.Background()))
	require.NoError(t, a.Stop())

	assert.Equal(t, []byte("one"), <-got)
	assert.Equal(t, []byte("two"), <-got)

	select {
	case err := <-closed:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for close notification")
	}
}

func TestPipeBreakPropagatesError(t *testing.T) {
	a, b := Pipe()

	closedA := make(chan error, 1)
	closedB := make(chan error, 1)
	a.OnReceived(func([]byte) {})
	b.OnReceived(func([]byte) {})
	a.OnClosed(func(err error) { closedA <- err })
	b.OnClosed(func(err error) { closedB <- err })

	require.NoError(t, a.Start(context.Background()))
	require.NoError(t, b.Start(context.Background()))

	boom := errors.New("wire cut")
	a.Break(boom)

	assert.Equal(t, boom, <-closedA)
	assert.Equal(t, boom, <-closedB)

	assert.ErrorIs(t, a.Send([]byte("late")), ErrClosed)
	assert.ErrorIs(t, b.Send([]byte("late")), ErrClosed)
}
