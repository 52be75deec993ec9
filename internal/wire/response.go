package wire

import (
	"strconv"
	"strings"

	"github.com/klingon-exchange/ledgerd/internal/ledger"
)

// ResponseKind discriminates the richer response sum §6 calls out as
// preferred for new implementations, while still round-tripping through
// the TLV-mandated Result<Vec<Account>, String> (see SPEC_FULL.md "Response
// shape").
type ResponseKind int

const (
	// RespAccountState answers Create/Deposit/Withdraw/GetBalance with
	// the post-operation account.
	RespAccountState ResponseKind = iota + 1
	// RespFundsMovement answers Move with both legs' post-operation
	// accounts, in (from, to) order.
	RespFundsMovement
	// RespError answers a failed business operation.
	RespError
	// RespBye is the terminal reply to a Quit request.
	RespBye
)

// Response is the decoded form of one server reply.
type Response struct {
	Kind ResponseKind

	Account Account // RespAccountState

	From Account // RespFundsMovement
	To   Account // RespFundsMovement

	ErrKind ledger.ErrorKind // RespError
	ErrMsg  string           // RespError
}

// Account is an alias of ledger.Account, so values pass between the wire
// and ledger packages without conversion.
type Account = ledger.Account

// AccountState builds a successful single-account response.
func AccountState(acct ledger.Account) Response {
	return Response{Kind: RespAccountState, Account: acct}
}

// FundsMovement builds a successful two-account Move response.
func FundsMovement(from, to ledger.Account) Response {
	return Response{Kind: RespFundsMovement, From: from, To: to}
}

// ErrorResponse builds a business-error response from a *ledger.Error.
func ErrorResponse(err *ledger.Error) Response {
	return Response{Kind: RespError, ErrKind: err.Kind, ErrMsg: err.Msg}
}

// Bye builds the terminal reply to a Quit request.
func Bye() Response {
	return Response{Kind: RespBye}
}

// Encode renders r as a full outer TLV message.
func (r Response) Encode() ([]byte, error) {
	if r.Kind == RespBye {
		return writeTLV(TypeProtoBye, nil), nil
	}

	var result []byte
	var err error
	switch r.Kind {
	case RespAccountState:
		result, err = EncodeResultOk([]ledger.Account{r.Account})
	case RespFundsMovement:
		result, err = EncodeResultOk([]ledger.Account{r.From, r.To})
	case RespError:
		result, err = EncodeResultErr(encodeErrorMessage(r.ErrKind, r.ErrMsg))
	default:
		return nil, badRequest("unknown ResponseKind %d", r.Kind)
	}
	if err != nil {
		return nil, err
	}
	if len(result) > MaxLen {
		return nil, badRequest("encoded Result is %d bytes, exceeds max %d", len(result), MaxLen)
	}
	return writeTLV(TypeProtoResponse, result), nil
}

// DecodeResponse decodes one outer message into a Response. b must be
// exactly one message's payload; any trailing bytes are a decode error.
func DecodeResponse(b []byte) (Response, error) {
	outerType, content, rest, err := readTLV(b)
	if err != nil {
		return Response{}, err
	}
	if len(rest) != 0 {
		return Response{}, badRequest("message has %d trailing bytes", len(rest))
	}

	if outerType == TypeProtoBye {
		if len(content) != 0 {
			return Response{}, badRequest("Bye message carries %d unexpected bytes", len(content))
		}
		return Bye(), nil
	}
	if outerType != TypeProtoResponse {
		return Response{}, badRequest("unexpected outer TypeId %d, want %d or %d", outerType, TypeProtoResponse, TypeProtoBye)
	}

	result, remainder, err := DecodeResult(content)
	if err != nil {
		return Response{}, err
	}
	if len(remainder) != 0 {
		return Response{}, badRequest("Response payload has %d trailing bytes", len(remainder))
	}

	if result.IsErr {
		kind, msg, err := decodeErrorMessage(result.ErrMsg)
		if err != nil {
			return Response{}, err
		}
		return Response{Kind: RespError, ErrKind: kind, ErrMsg: msg}, nil
	}

	switch len(result.Accounts) {
	case 1:
		return AccountState(result.Accounts[0]), nil
	case 2:
		return FundsMovement(result.Accounts[0], result.Accounts[1]), nil
	default:
		return Response{}, badRequest("Result-Ok carries %d accounts, want 1 or 2", len(result.Accounts))
	}
}

// encodeErrorMessage/decodeErrorMessage give the wire-mandated plain
// String error payload (§4.B) enough structure to round-trip ErrKind: the
// kind is encoded as a leading decimal tag.
func encodeErrorMessage(kind ledger.ErrorKind, msg string) string {
	return strconv.Itoa(int(kind)) + ":" + msg
}

func decodeErrorMessage(s string) (ledger.ErrorKind, string, error) {
	tag, msg, found := strings.Cut(s, ":")
	if !found {
		return 0, "", badRequest("malformed error message %q", s)
	}
	n, err := strconv.Atoi(tag)
	if err != nil {
		return 0, "", badRequest("malformed error kind tag %q", tag)
	}
	return ledger.ErrorKind(n), msg, nil
}
