package wire

import (
	"github.com/klingon-exchange/ledgerd/internal/ledger"
)

// RequestKind discriminates the wire-level Operation variants (spec §4.B,
// §6). This is broader than ledger.OpKind: Move and GetBalance are
// request-level concepts that the ledger facade expands or answers
// directly, not entries the operation log stores verbatim.
type RequestKind int

const (
	ReqCreate RequestKind = iota + 1
	ReqDeposit
	ReqWithdraw
	ReqMove
	ReqGetBalance
	// ReqQuit is transport-only (§6): it never appears inside a
	// Protocol.Request TLV value, only as the distinct outer
	// TypeProtoQuit control message.
	ReqQuit
)

// Request is the decoded form of one client message: either a
// Protocol.Request carrying an Operation, or the Quit control message.
type Request struct {
	Kind RequestKind

	// AccountID is the subject of Create/Deposit/Withdraw/GetBalance, and
	// the transfer source for Move.
	AccountID ledger.AccountId
	// To is the transfer destination; only meaningful for Move.
	To ledger.AccountId
	// Amount is the transfer/deposit/withdraw amount; unused for Create
	// and GetBalance.
	Amount ledger.NonZeroMoney
}

// Encode renders r as a full outer TLV message: TypeProtoQuit for a Quit
// request, or TypeProtoRequest wrapping the encoded Operation otherwise.
func (r Request) Encode() ([]byte, error) {
	if r.Kind == ReqQuit {
		return writeTLV(TypeProtoQuit, nil), nil
	}
	op, err := r.encodeOperation()
	if err != nil {
		return nil, err
	}
	if len(op) > MaxLen {
		return nil, badRequest("encoded Operation is %d bytes, exceeds max %d", len(op), MaxLen)
	}
	return writeTLV(TypeProtoRequest, op), nil
}

func (r Request) encodeOperation() ([]byte, error) {
	switch r.Kind {
	case ReqCreate:
		id, err := EncodeAccountID(r.AccountID)
		if err != nil {
			return nil, err
		}
		return writeTLV(TypeOpCreate, id), nil

	case ReqDeposit:
		id, err := EncodeAccountID(r.AccountID)
		if err != nil {
			return nil, err
		}
		amt := EncodeNonZeroMoney(r.Amount)
		return writeTLV(TypeOpDeposit, append(id, amt...)), nil

	case ReqWithdraw:
		id, err := EncodeAccountID(r.AccountID)
		if err != nil {
			return nil, err
		}
		amt := EncodeNonZeroMoney(r.Amount)
		return writeTLV(TypeOpWithdraw, append(id, amt...)), nil

	case ReqMove:
		from, err := EncodeAccountID(r.AccountID)
		if err != nil {
			return nil, err
		}
		to, err := EncodeAccountID(r.To)
		if err != nil {
			return nil, err
		}
		amt := EncodeNonZeroMoney(r.Amount)
		content := append(append(from, to...), amt...)
		return writeTLV(TypeOpMove, content), nil

	case ReqGetBalance:
		id, err := EncodeAccountID(r.AccountID)
		if err != nil {
			return nil, err
		}
		return writeTLV(TypeOpGetBalance, id), nil

	default:
		return nil, badRequest("unknown RequestKind %d", r.Kind)
	}
}

// DecodeRequest decodes one outer message into a Request. b must be
// exactly one message's payload (as delivered by the frame codec); any
// trailing bytes are a decode error.
func DecodeRequest(b []byte) (Request, error) {
	outerType, content, rest, err := readTLV(b)
	if err != nil {
		return Request{}, err
	}
	if len(rest) != 0 {
		return Request{}, badRequest("message has %d trailing bytes", len(rest))
	}

	if outerType == TypeProtoQuit {
		if len(content) != 0 {
			return Request{}, badRequest("Quit message carries %d unexpected bytes", len(content))
		}
		return Request{Kind: ReqQuit}, nil
	}
	if outerType != TypeProtoRequest {
		return Request{}, badRequest("unexpected outer TypeId %d, want %d or %d", outerType, TypeProtoRequest, TypeProtoQuit)
	}

	opType, opContent, opRest, err := readTLV(content)
	if err != nil {
		return Request{}, err
	}
	if len(opRest) != 0 {
		return Request{}, badRequest("Operation payload has %d trailing bytes", len(opRest))
	}

	switch opType {
	case TypeOpCreate:
		id, remainder, err := DecodeAccountID(opContent)
		if err != nil {
			return Request{}, err
		}
		if len(remainder) != 0 {
			return Request{}, badRequest("Create payload has %d trailing bytes", len(remainder))
		}
		return Request{Kind: ReqCreate, AccountID: id}, nil

	case TypeOpDeposit:
		id, remainder, err := DecodeAccountID(opContent)
		if err != nil {
			return Request{}, err
		}
		amt, remainder, err := DecodeNonZeroMoney(remainder)
		if err != nil {
			return Request{}, err
		}
		if len(remainder) != 0 {
			return Request{}, badRequest("Deposit payload has %d trailing bytes", len(remainder))
		}
		return Request{Kind: ReqDeposit, AccountID: id, Amount: amt}, nil

	case TypeOpWithdraw:
		id, remainder, err := DecodeAccountID(opContent)
		if err != nil {
			return Request{}, err
		}
		amt, remainder, err := DecodeNonZeroMoney(remainder)
		if err != nil {
			return Request{}, err
		}
		if len(remainder) != 0 {
			return Request{}, badRequest("Withdraw payload has %d trailing bytes", len(remainder))
		}
		return Request{Kind: ReqWithdraw, AccountID: id, Amount: amt}, nil

	case TypeOpMove:
		from, remainder, err := DecodeAccountID(opContent)
		if err != nil {
			return Request{}, err
		}
		to, remainder, err := DecodeAccountID(remainder)
		if err != nil {
			return Request{}, err
		}
		amt, remainder, err := DecodeNonZeroMoney(remainder)
		if err != nil {
			return Request{}, err
		}
		if len(remainder) != 0 {
			return Request{}, badRequest("Move payload has %d trailing bytes", len(remainder))
		}
		return Request{Kind: ReqMove, AccountID: from, To: to, Amount: amt}, nil

	case TypeOpGetBalance:
		id, remainder, err := DecodeAccountID(opContent)
		if err != nil {
			return Request{}, err
		}
		if len(remainder) != 0 {
			return Request{}, badRequest("GetBalance payload has %d trailing bytes", len(remainder))
		}
		return Request{Kind: ReqGetBalance, AccountID: id}, nil

	default:
		return Request{}, badRequest("unknown Operation TypeId %d", opType)
	}
}
