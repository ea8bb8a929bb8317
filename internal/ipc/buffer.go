package ipc

import (
	"errors"
	"fmt"
)

var ErrOversizedFrame = errors.New("frame length exceeds limit")

// Buffer accumulates stream bytes and yields complete frames in arrival order.
type Buffer struct {
	data  []byte
	limit int
}

// NewBuffer returns a buffer rejecting declared frame lengths above limit.
// A limit <= 0 or above MaxPayloadSize means MaxPayloadSize.
func NewBuffer(limit int) *Buffer {
	if limit <= 0 || limit > MaxPayloadSize {
		limit = MaxPayloadSize
	}
	return &Buffer{limit: limit}
}

// Feed appends data and passes every complete non-empty frame to emit.
//
// Decoding stops at the first error from emit or at an oversized length
// claim; the error is returned and the remaining bytes are dropped, since the
// stream can no longer be trusted.
func (b *Buffer) Feed(data []byte, emit func([]byte) error) error {
	b.data = append(b.data, data...)

	for {
		if n, ok := PeekLength(b.data); ok && n > b.limit {
			b.data = nil
			return fmt.Errorf("%w: declared %d, limit %d", ErrOversizedFrame, n, b.limit)
		}

		frame, rest, ok := DecodeNext(b.data)
		if !ok {
			break
		}
		b.data = rest
		if len(frame) == 0 {
			continue
		}

		if err := emit(frame); err != nil {
			b.data = nil
			return err
		}
	}

	if len(b.data) == 0 {
		b.data = nil
	}
	return nil
}

// Pending returns the number of buffered bytes not yet framed.
func (b *Buffer) Pending() int {
	return len(b.data)
}
