// Package frame implements the length-prefixed message framing that
// carries one encoded request or response per message (spec §4.F):
// LEN(4 bytes, big-endian, unsigned) || PAYLOAD(LEN bytes). A zero-length
// payload is forbidden; a short read or write is always a transport
// error and the session that owns the stream must close.
package frame

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/klingon-exchange/ledgerd/internal/ledger"
)

// MaxFrameSize bounds the payload a single frame may declare, guarding
// against a hostile or corrupt length prefix forcing an unbounded
// allocation.
const MaxFrameSize = 1024 * 1024 // 1MiB

// ReadFrame reads one length-prefixed message from r: 4 bytes of
// big-endian length, then exactly that many payload bytes. Any short read
// is reported as a *ledger.Error of kind TransportError.
func ReadFrame(r io.Reader) ([]byte, error) {
	var length uint32
	if err := binary.Read(r, binary.BigEndian, &length); err != nil {
		return nil, transportError("reading frame length: %v", err)
	}
	if length == 0 {
		return nil, transportError("zero-length frame is forbidden")
	}
	if length > MaxFrameSize {
		return nil, transportError("frame length %d exceeds max %d", length, MaxFrameSize)
	}

	payload := make([]byte, length)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, transportError("reading frame payload: %v", err)
	}
	return payload, nil
}

// WriteFrame writes payload as one length-prefixed message: 4 bytes of
// big-endian length, then the payload, flushing if w supports it. payload
// must be non-empty.
func WriteFrame(w io.Writer, payload []byte) error {
	if len(payload) == 0 {
		return transportError("cannot write a zero-length frame")
	}
	if len(payload) > MaxFrameSize {
		return transportError("frame length %d exceeds max %d", len(payload), MaxFrameSize)
	}

	length := uint32(len(payload))
	if err := binary.Write(w, binary.BigEndian, length); err != nil {
		return transportError("writing frame length: %v", err)
	}
	if _, err := w.Write(payload); err != nil {
		return transportError("writing frame payload: %v", err)
	}
	if f, ok := w.(interface{ Flush() error }); ok {
		if err := f.Flush(); err != nil {
			return transportError("flushing frame: %v", err)
		}
	}
	return nil
}

func transportError(format string, args ...interface{}) error {
	return ledger.NewError(ledger.TransportError, fmt.Sprintf(format, args...))
}
