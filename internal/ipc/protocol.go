package ipc

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
)

const (
	// HeaderSize is the length prefix width in bytes.
	HeaderSize = 2
	// MaxPayloadSize is the largest payload a 2-byte prefix can describe.
	MaxPayloadSize = math.MaxUint16
)

var ErrPayloadTooLarge = errors.New("payload exceeds frame limit")

// Encode prefixes payload with its big-endian uint16 length.
func Encode(payload []byte) ([]byte, error) {
	if len(payload) > MaxPayloadSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrPayloadTooLarge, len(payload))
	}

	out := make([]byte, HeaderSize+len(payload))
	binary.BigEndian.PutUint16(out, uint16(len(payload)))
	copy(out[HeaderSize:], payload)
	return out, nil
}

// DecodeNext removes one complete frame from the front of buf.
//
// ok is false, and rest is buf unchanged, when the prefix or the payload it
// declares has not fully arrived yet. A zero-length frame is returned with
// ok=true and an empty (non-nil) frame.
func DecodeNext(buf []byte) (frame []byte, rest []byte, ok bool) {
	n, ok := PeekLength(buf)
	if !ok {
		return nil, buf, false
	}
	if len(buf)-HeaderSize < n {
		return nil, buf, false
	}

	frame = buf[HeaderSize : HeaderSize+n : HeaderSize+n]
	return frame, buf[HeaderSize+n:], true
}

// PeekLength reports the payload length declared at the front of buf.
func PeekLength(buf []byte) (int, bool) {
	if len(buf) < HeaderSize {
		return 0, false
	}
	return int(binary.BigEndian.Uint16(buf)), true
}

// WriteFrame encodes payload and writes the whole frame to w.
func WriteFrame(w io.Writer, payload []byte) error {
	frame, err := Encode(payload)
	if err != nil {
		return err
	}

	for len(frame) > 0 {
		n, err := w.Write(frame)
		if err != nil {
			return fmt.Errorf("write frame: %w", err)
		}
		frame = frame[n:]
	}
	return nil
}

// Printable reports whether every byte is printable ASCII (0x20-0x7E).
func Printable(b []byte) bool {
	for _, c := range b {
		if c < 0x20 || c > 0x7e {
			return false
		}
	}
	return true
}
