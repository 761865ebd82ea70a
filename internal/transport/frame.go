// Package transport frames a byte stream into the 2-byte big-endian words
// the interpreter consumes, decoupled from any particular socket or
// connection type.
package transport

import (
	"encoding/binary"
	"errors"
	"io"
	"sync/atomic"
)

// FrameReader accumulates a byte stream into 2-byte big-endian frames,
// never dispatching a partial frame. Cancellation is cooperative: the
// reader polls a shared *atomic.Bool at its loop head, before each read;
// a read already in progress blocks until data, EOF, or an error arrives.
type FrameReader struct {
	r      io.Reader
	cancel *atomic.Bool
}

// NewFrameReader wraps r. cancel may be nil, in which case the reader
// never stops early and relies solely on r returning io.EOF or an error.
func NewFrameReader(r io.Reader, cancel *atomic.Bool) *FrameReader {
	return &FrameReader{r: r, cancel: cancel}
}

// Frames reads frames until cancellation, EOF, or a read error, decoding
// each as a big-endian uint16 and sending it on out in arrival order: the
// interpreter must see instructions in the order they arrive. Returns nil
// on a clean stop (cancellation or EOF).
func (f *FrameReader) Frames(out chan<- uint16) error {
	var buf [2]byte
	for {
		if f.cancelled() {
			return nil
		}
		if _, err := io.ReadFull(f.r, buf[:]); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		out <- binary.BigEndian.Uint16(buf[:])
	}
}

func (f *FrameReader) cancelled() bool {
	return f.cancel != nil && f.cancel.Load()
}
