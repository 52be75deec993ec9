package ledger

import "testing"

func mustAmount(t *testing.T, v uint32) NonZeroMoney {
	t.Helper()
	n, err := NewNonZeroMoney(v)
	if err != nil {
		t.Fatalf("NewNonZeroMoney(%d): %v", v, err)
	}
	return n
}

func TestOperationLogAppendAssignsMonotonicIDs(t *testing.T) {
	l := NewOperationLog()

	id1 := l.Append(NewCreate("a"))
	id2 := l.Append(NewDeposit("a", mustAmount(t, 10)))

	if id1.Compare(id2) != -1 {
		t.Fatalf("expected id1 < id2, got %v, %v", id1, id2)
	}
	if l.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", l.Len())
	}
}

func TestOperationLogGetOpsUnknownAccount(t *testing.T) {
	l := NewOperationLog()
	if _, _, err := l.GetOps("nope"); !Is(err, UnknownAccount) {
		t.Fatalf("expected UnknownAccount, got %v", err)
	}
}

func TestOperationLogGetOpsPreservesAppendOrder(t *testing.T) {
	l := NewOperationLog()
	l.Append(NewCreate("a"))
	l.Append(NewDeposit("a", mustAmount(t, 10)))
	l.Append(NewWithdraw("a", mustAmount(t, 3)))

	ids, ops, err := l.GetOps("a")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ids) != 3 || len(ops) != 3 {
		t.Fatalf("got %d ids / %d ops, want 3/3", len(ids), len(ops))
	}
	if ops[0].Kind != OpCreate || ops[1].Kind != OpDeposit || ops[2].Kind != OpWithdraw {
		t.Fatalf("unexpected op order: %+v", ops)
	}
}

func TestOperationLogGetHistoryOrderAcrossAccounts(t *testing.T) {
	l := NewOperationLog()
	l.Append(NewCreate("a"))
	l.Append(NewCreate("b"))
	l.Append(NewDeposit("a", mustAmount(t, 1)))

	ids, ops := l.GetHistory()
	if len(ops) != 3 {
		t.Fatalf("GetHistory() returned %d ops, want 3", len(ops))
	}
	for i := 0; i+1 < len(ids); i++ {
		if ids[i].Compare(ids[i+1]) != -1 {
			t.Fatalf("history not strictly increasing at %d: %v >= %v", i, ids[i], ids[i+1])
		}
	}
}

func TestOperationLogNeverRewritesHistory(t *testing.T) {
	l := NewOperationLog()
	l.Append(NewCreate("a"))
	_, ops := l.GetHistory()
	ops[0] = NewCreate("tampered")

	_, fresh := l.GetHistory()
	if fresh[0].AccountID != "a" {
		t.Fatalf("mutating a returned slice affected the log: %+v", fresh[0])
	}
}
