package wire

import (
	"encoding/binary"
	"unicode/utf8"

	"github.com/klingon-exchange/ledgerd/internal/ledger"
)

// EncodeAccountID encodes id as a raw UTF-8 AccountId TLV value.
func EncodeAccountID(id ledger.AccountId) ([]byte, error) {
	b := []byte(id)
	if len(b) > ledger.MaxAccountIDLen {
		return nil, badRequest("AccountId %q is %d bytes, exceeds max %d", id, len(b), ledger.MaxAccountIDLen)
	}
	return writeTLV(TypeAccountID, b), nil
}

// DecodeAccountID decodes an AccountId TLV value off the front of b.
func DecodeAccountID(b []byte) (ledger.AccountId, []byte, error) {
	content, rest, err := expectType(b, TypeAccountID)
	if err != nil {
		return "", nil, err
	}
	if !utf8.Valid(content) {
		return "", nil, badRequest("AccountId payload is not valid UTF-8")
	}
	if len(content) > ledger.MaxAccountIDLen {
		return "", nil, badRequest("AccountId payload is %d bytes, exceeds max %d", len(content), ledger.MaxAccountIDLen)
	}
	return ledger.AccountId(content), rest, nil
}

// EncodeMoney encodes m as a 4-byte big-endian Money TLV value.
func EncodeMoney(m ledger.Money) []byte {
	content := make([]byte, 4)
	binary.BigEndian.PutUint32(content, uint32(m))
	return writeTLV(TypeMoney, content)
}

// DecodeMoney decodes a Money TLV value off the front of b.
func DecodeMoney(b []byte) (ledger.Money, []byte, error) {
	content, rest, err := expectType(b, TypeMoney)
	if err != nil {
		return 0, nil, err
	}
	if len(content) != 4 {
		return 0, nil, badRequest("Money payload is %d bytes, want 4", len(content))
	}
	return ledger.Money(binary.BigEndian.Uint32(content)), rest, nil
}

// EncodeNonZeroMoney encodes m as a 4-byte big-endian NonZeroMoney TLV
// value.
func EncodeNonZeroMoney(m ledger.NonZeroMoney) []byte {
	content := make([]byte, 4)
	binary.BigEndian.PutUint32(content, m.Value())
	return writeTLV(TypeNonZeroMoney, content)
}

// DecodeNonZeroMoney decodes a NonZeroMoney TLV value off the front of b,
// failing with BadRequest if the decoded value is zero.
func DecodeNonZeroMoney(b []byte) (ledger.NonZeroMoney, []byte, error) {
	content, rest, err := expectType(b, TypeNonZeroMoney)
	if err != nil {
		return ledger.NonZeroMoney{}, nil, err
	}
	if len(content) != 4 {
		return ledger.NonZeroMoney{}, nil, badRequest("NonZeroMoney payload is %d bytes, want 4", len(content))
	}
	v := binary.BigEndian.Uint32(content)
	n, err := ledger.NewNonZeroMoney(v)
	if err != nil {
		return ledger.NonZeroMoney{}, nil, err
	}
	return n, rest, nil
}

// EncodeAccount encodes acct as Account = AccountId ++ Money, nested.
func EncodeAccount(acct ledger.Account) ([]byte, error) {
	idBytes, err := EncodeAccountID(acct.AccountID)
	if err != nil {
		return nil, err
	}
	moneyBytes := EncodeMoney(acct.Balance)
	content := append(idBytes, moneyBytes...)
	if len(content) > MaxLen {
		return nil, badRequest("encoded Account content is %d bytes, exceeds max %d", len(content), MaxLen)
	}
	return writeTLV(TypeAccount, content), nil
}

// DecodeAccount decodes an Account TLV value off the front of b.
func DecodeAccount(b []byte) (ledger.Account, []byte, error) {
	content, rest, err := expectType(b, TypeAccount)
	if err != nil {
		return ledger.Account{}, nil, err
	}
	id, remainder, err := DecodeAccountID(content)
	if err != nil {
		return ledger.Account{}, nil, err
	}
	balance, remainder, err := DecodeMoney(remainder)
	if err != nil {
		return ledger.Account{}, nil, err
	}
	if len(remainder) != 0 {
		return ledger.Account{}, nil, badRequest("Account payload has %d trailing bytes", len(remainder))
	}
	return ledger.Account{AccountID: id, Balance: balance}, rest, nil
}

// EncodeAccountVec encodes accounts as a Vec<Account>.
func EncodeAccountVec(accounts []ledger.Account) ([]byte, error) {
	var content []byte
	for _, acct := range accounts {
		encoded, err := EncodeAccount(acct)
		if err != nil {
			return nil, err
		}
		content = append(content, encoded...)
	}
	if len(content) > MaxLen {
		return nil, badRequest("encoded Vec<Account> content is %d bytes, exceeds max %d", len(content), MaxLen)
	}
	return writeTLV(TypeVec, content), nil
}

// DecodeAccountVec decodes a Vec<Account> TLV value off the front of b.
// The element count is inferred by consuming encoded Accounts until the
// declared content is exhausted.
func DecodeAccountVec(b []byte) ([]ledger.Account, []byte, error) {
	content, rest, err := expectType(b, TypeVec)
	if err != nil {
		return nil, nil, err
	}
	var accounts []ledger.Account
	for len(content) > 0 {
		var acct ledger.Account
		acct, content, err = DecodeAccount(content)
		if err != nil {
			return nil, nil, err
		}
		accounts = append(accounts, acct)
	}
	return accounts, rest, nil
}

// EncodeResultOk encodes a successful Result<Vec<Account>, String> from
// accounts.
func EncodeResultOk(accounts []ledger.Account) ([]byte, error) {
	vec, err := EncodeAccountVec(accounts)
	if err != nil {
		return nil, err
	}
	if len(vec) > MaxLen {
		return nil, badRequest("encoded Result-Ok content is %d bytes, exceeds max %d", len(vec), MaxLen)
	}
	return writeTLV(TypeResultOk, vec), nil
}

// EncodeResultErr encodes a failed Result<Vec<Account>, String> carrying
// message as the raw UTF-8 error payload (the wire format has no
// dedicated String TypeId; the Result-Err content is the message bytes
// directly rather than a further nested TLV).
func EncodeResultErr(message string) ([]byte, error) {
	content := []byte(message)
	if len(content) > MaxLen {
		return nil, badRequest("error message is %d bytes, exceeds max %d", len(content), MaxLen)
	}
	return writeTLV(TypeResultErr, content), nil
}

// ResultAccounts is the decoded form of a Result<Vec<Account>, String>:
// IsErr is false for Ok, with the value in Accounts, and true for Err, with
// the message in ErrMsg.
type ResultAccounts struct {
	Accounts []ledger.Account
	IsErr    bool
	ErrMsg   string
}

// DecodeResult decodes a Result<Vec<Account>, String> TLV value off the
// front of b; the discriminator is the outer TypeId (Result-Ok or
// Result-Err).
func DecodeResult(b []byte) (ResultAccounts, []byte, error) {
	typeID, content, rest, err := readTLV(b)
	if err != nil {
		return ResultAccounts{}, nil, err
	}
	switch typeID {
	case TypeResultOk:
		accounts, remainder, err := DecodeAccountVec(content)
		if err != nil {
			return ResultAccounts{}, nil, err
		}
		if len(remainder) != 0 {
			return ResultAccounts{}, nil, badRequest("Result-Ok payload has %d trailing bytes", len(remainder))
		}
		return ResultAccounts{Accounts: accounts}, rest, nil
	case TypeResultErr:
		if !utf8.Valid(content) {
			return ResultAccounts{}, nil, badRequest("Result-Err payload is not valid UTF-8")
		}
		return ResultAccounts{IsErr: true, ErrMsg: string(content)}, rest, nil
	default:
		return ResultAccounts{}, nil, badRequest("unexpected TypeId %d for Result, want %d or %d", typeID, TypeResultOk, TypeResultErr)
	}
}
