package ledger

import "testing"

func TestErrorKindString(t *testing.T) {
	tests := []struct {
		kind ErrorKind
		want string
	}{
		{DuplicateAccount, "DuplicateAccount"},
		{UnknownAccount, "UnknownAccount"},
		{InsufficientFunds, "InsufficientFunds"},
		{Prohibited, "Prohibited"},
		{BadRequest, "BadRequest"},
		{TransportError, "TransportError"},
		{InternalError, "InternalError"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("%d.String() = %q, want %q", tt.kind, got, tt.want)
		}
	}
}

func TestIsDistinguishesKinds(t *testing.T) {
	err := errUnknownAccount("a")
	if !Is(err, UnknownAccount) {
		t.Fatal("expected Is(err, UnknownAccount) to be true")
	}
	if Is(err, DuplicateAccount) {
		t.Fatal("expected Is(err, DuplicateAccount) to be false")
	}
	if Is(nil, UnknownAccount) {
		t.Fatal("expected Is(nil, ...) to be false")
	}
}
