package wire

import (
	"testing"

	"github.com/klingon-exchange/ledgerd/internal/ledger"
)

func amt(t *testing.T, v uint32) ledger.NonZeroMoney {
	t.Helper()
	n, err := ledger.NewNonZeroMoney(v)
	if err != nil {
		t.Fatalf("NewNonZeroMoney(%d): %v", v, err)
	}
	return n
}

func TestRequestRoundTrip(t *testing.T) {
	reqs := []Request{
		{Kind: ReqCreate, AccountID: "a"},
		{Kind: ReqDeposit, AccountID: "a", Amount: amt(t, 42)},
		{Kind: ReqWithdraw, AccountID: "a", Amount: amt(t, 12)},
		{Kind: ReqMove, AccountID: "a", To: "b", Amount: amt(t, 30)},
		{Kind: ReqGetBalance, AccountID: "a"},
		{Kind: ReqQuit},
	}

	for _, want := range reqs {
		encoded, err := want.Encode()
		if err != nil {
			t.Fatalf("Encode(%+v): %v", want, err)
		}
		got, err := DecodeRequest(encoded)
		if err != nil {
			t.Fatalf("DecodeRequest(Encode(%+v)): %v", want, err)
		}
		if got != want {
			t.Fatalf("round trip mismatch: got %+v, want %+v", got, want)
		}
	}
}

func TestResponseRoundTrip(t *testing.T) {
	resps := []Response{
		AccountState(ledger.Account{AccountID: "a", Balance: 30}),
		FundsMovement(
			ledger.Account{AccountID: "a", Balance: 20},
			ledger.Account{AccountID: "b", Balance: 30},
		),
		ErrorResponse(ledger.NewError(ledger.InsufficientFunds, "account \"a\" has 10, cannot withdraw 11")),
		Bye(),
	}

	for _, want := range resps {
		encoded, err := want.Encode()
		if err != nil {
			t.Fatalf("Encode(%+v): %v", want, err)
		}
		got, err := DecodeResponse(encoded)
		if err != nil {
			t.Fatalf("DecodeResponse(Encode(%+v)): %v", want, err)
		}
		if got != want {
			t.Fatalf("round trip mismatch: got %+v, want %+v", got, want)
		}
	}
}

func TestAccountRoundTrip(t *testing.T) {
	want := ledger.Account{AccountID: "hello", Balance: 1234}
	encoded, err := EncodeAccount(want)
	if err != nil {
		t.Fatalf("EncodeAccount: %v", err)
	}
	got, rest, err := DecodeAccount(encoded)
	if err != nil {
		t.Fatalf("DecodeAccount: %v", err)
	}
	if len(rest) != 0 {
		t.Fatalf("unexpected trailing bytes: %v", rest)
	}
	if got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestNonZeroMoneyDecodeZeroFails(t *testing.T) {
	zero := writeTLV(TypeNonZeroMoney, []byte{0, 0, 0, 0})
	if _, _, err := DecodeNonZeroMoney(zero); !ledger.Is(err, ledger.BadRequest) {
		t.Fatalf("expected BadRequest decoding a zero NonZeroMoney, got %v", err)
	}
}

func TestAccountIDOver16BytesFailsAtEncode(t *testing.T) {
	_, err := EncodeAccountID("this-account-id-is-too-long")
	if !ledger.Is(err, ledger.BadRequest) {
		t.Fatalf("expected BadRequest encoding an over-length AccountId, got %v", err)
	}
}

func TestDecodeLengthMismatchFailsWithoutPanic(t *testing.T) {
	// Declares a content length of 10 but only supplies 2 bytes.
	malformed := []byte{TypeAccountID, 10, 'a', 'b'}
	if _, _, err := DecodeAccountID(malformed); !ledger.Is(err, ledger.BadRequest) {
		t.Fatalf("expected BadRequest on length mismatch, got %v", err)
	}
}

func TestDecodeUnknownTypeIDFails(t *testing.T) {
	unknown := writeTLV(200, []byte{1, 2, 3})
	if _, err := DecodeRequest(unknown); !ledger.Is(err, ledger.BadRequest) {
		t.Fatalf("expected BadRequest on unknown outer TypeId, got %v", err)
	}
}

func TestDecodeRequestRejectsTrailingBytes(t *testing.T) {
	req := Request{Kind: ReqGetBalance, AccountID: "a"}
	encoded, err := req.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	encoded = append(encoded, 0xFF)
	if _, err := DecodeRequest(encoded); !ledger.Is(err, ledger.BadRequest) {
		t.Fatalf("expected BadRequest on trailing bytes, got %v", err)
	}
}

func TestDecodeAccountIDInvalidUTF8Fails(t *testing.T) {
	malformed := writeTLV(TypeAccountID, []byte{0xFF, 0xFE})
	if _, _, err := DecodeAccountID(malformed); !ledger.Is(err, ledger.BadRequest) {
		t.Fatalf("expected BadRequest on invalid UTF-8, got %v", err)
	}
}
