package transport

import (
	"encoding/binary"
	"fmt"
	"io"
)

// TCP is a byte stream, so payload boundaries must be framed explicitly. Each
// frame is an 8-byte header followed by the payload:
//
//	0      3  4        8
//	┌──────┬──┬────────┬──────────────────┐
//	│magic │v │ length │  payload bytes   │
//	│ drp  │01│ uint32 │  length bytes    │
//	└──────┴──┴────────┴──────────────────┘
//
// The magic bytes reject non-protocol peers early instead of misparsing their
// bytes as a length.
const (
	frameMagic0  byte = 'd'
	frameMagic1  byte = 'r'
	frameMagic2  byte = 'p'
	frameVersion byte = 0x01

	frameHeaderSize = 8

	// maxFramePayload bounds a single frame so a corrupt or hostile length
	// field cannot trigger an arbitrary allocation.
	maxFramePayload = 16 << 20
)

// writeFrame writes one framed payload to w. Callers serialize writes; an
// interleaved header and payload from two writers corrupts the stream.
func writeFrame(w io.Writer, payload []byte) error {
	if len(payload) > maxFramePayload {
		return fmt.Errorf("frame payload %d bytes exceeds limit %d", len(payload), maxFramePayload)
	}

	header := make([]byte, frameHeaderSize)
	header[0], header[1], header[2] = frameMagic0, frameMagic1, frameMagic2
	header[3] = frameVersion
	binary.BigEndian.PutUint32(header[4:8], uint32(len(payload)))

	if _, err := w.Write(header); err != nil {
		return err
	}
	if _, err := w.Write(payload); err != nil {
		return err
	}
	return nil
}

// readFrame reads exactly one framed payload from r, validating the header.
func readFrame(r io.Reader) ([]byte, error) {
	header := make([]byte, frameHeaderSize)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, err
	}

	if header[0] != frameMagic0 || header[1] != frameMagic1 || header[2] != frameMagic2 {
		return nil, fmt.Errorf("bad frame magic: %x", header[0:3])
	}
	if header[3] != frameVersion {
		return nil, fmt.Errorf("unsupported frame version: %d", header[3])
	}

	length := binary.BigEndian.Uint32(header[4:8])
	if length > maxFramePayload {
		return nil, fmt.Errorf("frame payload %d bytes exceeds limit %d", length, maxFramePayload)
	}

	payload := make([]byte, length)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, err
	}
	return payload, nil
}
