package transport

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrameRoundTrip(t *testing.T) {
	var buf bytes.Buffer

	payloads := [][]byte{
		[]byte("hello"),
		{},
		bytes.Repeat([]byte{0xab}, 4096),
	}
	for _, p := range payloads {
		require.NoError(t, writeFrame(&buf, p))
	}

	for _, want := range payloads {
		got, err := readFrame(&buf)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestFrameBadMagic(t *testing.T) {
	_, err := readFrame(bytes.NewReader([]byte{'x', 'y', 'z', 0x01, 0, 0, 0, 0}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "magic")
}

func TestFrameBadVersion(t *testing.T) {
	_, err := readFrame(bytes.NewReader([]byte{'d', 'r', 'p', 0x7f, 0, 0, 0, 0}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "version")
}

func TestFrameShortPayload(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeFrame(&buf, []byte("hello")))

	truncated := buf.Bytes()[:buf.Len()-2]
	_, err := readFrame(bytes.NewReader(truncated))
	require.Error(t, err)
}

func TestFrameOversizedLength(t *testing.T) {
	header := []byte{'d', 'r', 'p', 0x01, 0xff, 0xff, 0xff, 0xff}
	_, err := readFrame(bytes.NewReader(header))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "limit")
}
