package ledger

import "testing"

func TestNewNonZeroMoney(t *testing.T) {
	if _, err := NewNonZeroMoney(0); err == nil {
		t.Fatal("expected error constructing NonZeroMoney from 0")
	}
	if !Is(mustErr(t, NewNonZeroMoney(0)), BadRequest) {
		t.Fatal("expected BadRequest kind")
	}

	n, err := NewNonZeroMoney(5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n.Value() != 5 {
		t.Fatalf("Value() = %d, want 5", n.Value())
	}
}

func mustErr(t *testing.T, _ NonZeroMoney, err error) error {
	t.Helper()
	if err == nil {
		t.Fatal("expected an error")
	}
	return err
}

func TestOpIDNextAndCompare(t *testing.T) {
	a := firstOpID
	b := a.Next()

	if a.Compare(b) != -1 {
		t.Fatalf("expected a < b")
	}
	if b.Compare(a) != 1 {
		t.Fatalf("expected b > a")
	}
	if a.Compare(a) != 0 {
		t.Fatalf("expected a == a")
	}
}

func TestOpIDNextOverflowsLoIntoHi(t *testing.T) {
	id := OpID{Hi: 0, Lo: ^uint64(0)}
	next := id.Next()
	if next.Hi != 1 || next.Lo != 0 {
		t.Fatalf("Next() = %+v, want {Hi:1 Lo:0}", next)
	}
}
