// Package wire implements the tag-length-value payload encoding used on
// the ledger's wire protocol: requests, responses, and their component
// values. Every value is TypeId(1 byte) || Len(1 byte) || Content(Len
// bytes); decoding is total over well-formed input and a decode error is
// always a *ledger.Error of kind BadRequest.
package wire

import (
	"fmt"

	"github.com/klingon-exchange/ledgerd/internal/ledger"
)

// Type ids, fixed by the wire format (spec §4.B). 17/18 are this
// implementation's own outer discriminators for the transport-only Quit/
// Bye control messages (see SPEC_FULL.md "Quit as a distinct control
// message"); they live outside the Op.* (1-5) and Protocol.{Request,
// Response} (15-16) tag space so they never collide with a decoded
// Operation or an existing Request/Response.
const (
	TypeAccountID     byte = 42
	TypeMoney         byte = 52
	TypeNonZeroMoney  byte = 62
	TypeResultOk      byte = 72
	TypeResultErr     byte = 82
	TypeAccount       byte = 92
	TypeVec           byte = 102
	TypeOpCreate      byte = 1
	TypeOpDeposit     byte = 2
	TypeOpWithdraw    byte = 3
	TypeOpMove        byte = 4
	TypeOpGetBalance  byte = 5
	TypeProtoRequest  byte = 15
	TypeProtoResponse byte = 16
	TypeProtoQuit     byte = 17
	TypeProtoBye      byte = 18
)

// MaxLen is the largest content length a single TLV value can declare;
// Len is one byte.
const MaxLen = 255

func badRequest(format string, args ...interface{}) error {
	return ledger.NewError(ledger.BadRequest, fmt.Sprintf(format, args...))
}

// writeTLV encodes one TypeId/Content pair. The caller guarantees
// len(content) <= MaxLen.
func writeTLV(typeID byte, content []byte) []byte {
	buf := make([]byte, 2+len(content))
	buf[0] = typeID
	buf[1] = byte(len(content))
	copy(buf[2:], content)
	return buf
}

// readTLV splits the next TLV value off the front of b, returning its
// type id, its content, and the remaining bytes. It fails with BadRequest
// if b is too short to contain a full value.
func readTLV(b []byte) (typeID byte, content []byte, rest []byte, err error) {
	if len(b) < 2 {
		return 0, nil, nil, badRequest("buffer too short for a TLV header: %d bytes", len(b))
	}
	typeID = b[0]
	contentLen := int(b[1])
	if len(b) < 2+contentLen {
		return 0, nil, nil, badRequest("declared length %d exceeds remaining buffer (%d bytes)", contentLen, len(b)-2)
	}
	content = b[2 : 2+contentLen]
	rest = b[2+contentLen:]
	return typeID, content, rest, nil
}

// expectType reads the next TLV value and checks its type id matches
// want.
func expectType(b []byte, want byte) (content []byte, rest []byte, err error) {
	typeID, content, rest, err := readTLV(b)
	if err != nil {
		return nil, nil, err
	}
	if typeID != want {
		return nil, nil, badRequest("unexpected TypeId %d, want %d", typeID, want)
	}
	return content, rest, nil
}
