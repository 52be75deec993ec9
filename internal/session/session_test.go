package session

import (
	"net"
	"testing"

	"github.com/klingon-exchange/ledgerd/internal/frame"
	"github.com/klingon-exchange/ledgerd/internal/ledger"
	"github.com/klingon-exchange/ledgerd/internal/wire"
)

func newTestSession(t *testing.T) (client net.Conn, l *ledger.Ledger, done chan struct{}) {
	t.Helper()
	serverConn, clientConn := net.Pipe()
	l = ledger.New()
	sess := New(serverConn, l)
	done = make(chan struct{})
	go func() {
		sess.Run()
		close(done)
	}()
	return clientConn, l, done
}

func sendRequest(t *testing.T, conn net.Conn, req wire.Request) {
	t.Helper()
	payload, err := req.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if err := frame.WriteFrame(conn, payload); err != nil {
		t.Fatalf("WriteFrame: %v", err)
	}
}

func readResponse(t *testing.T, conn net.Conn) wire.Response {
	t.Helper()
	payload, err := frame.ReadFrame(conn)
	if err != nil {
		t.Fatalf("ReadFrame: %v", err)
	}
	resp, err := wire.DecodeResponse(payload)
	if err != nil {
		t.Fatalf("DecodeResponse: %v", err)
	}
	return resp
}

func TestSessionCreateDepositWithdraw(t *testing.T) {
	conn, _, done := newTestSession(t)
	defer conn.Close()

	amt := func(v uint32) ledger.NonZeroMoney {
		n, err := ledger.NewNonZeroMoney(v)
		if err != nil {
			t.Fatalf("NewNonZeroMoney: %v", err)
		}
		return n
	}

	sendRequest(t, conn, wire.Request{Kind: wire.ReqCreate, AccountID: "a"})
	resp := readResponse(t, conn)
	if resp.Kind != wire.RespAccountState || resp.Account.Balance != 0 {
		t.Fatalf("Create response = %+v", resp)
	}

	sendRequest(t, conn, wire.Request{Kind: wire.ReqDeposit, AccountID: "a", Amount: amt(42)})
	resp = readResponse(t, conn)
	if resp.Kind != wire.RespAccountState || resp.Account.Balance != 42 {
		t.Fatalf("Deposit response = %+v", resp)
	}

	sendRequest(t, conn, wire.Request{Kind: wire.ReqWithdraw, AccountID: "a", Amount: amt(12)})
	resp = readResponse(t, conn)
	if resp.Kind != wire.RespAccountState || resp.Account.Balance != 30 {
		t.Fatalf("Withdraw response = %+v", resp)
	}

	sendRequest(t, conn, wire.Request{Kind: wire.ReqQuit})
	resp = readResponse(t, conn)
	if resp.Kind != wire.RespBye {
		t.Fatalf("expected Bye, got %+v", resp)
	}
	<-done
}

func TestSessionBusinessErrorDoesNotCloseConnection(t *testing.T) {
	conn, _, done := newTestSession(t)
	defer conn.Close()

	sendRequest(t, conn, wire.Request{Kind: wire.ReqGetBalance, AccountID: "ghost"})
	resp := readResponse(t, conn)
	if resp.Kind != wire.RespError || resp.ErrKind != ledger.UnknownAccount {
		t.Fatalf("expected UnknownAccount error response, got %+v", resp)
	}

	// the session must still be alive: a second request works normally.
	sendRequest(t, conn, wire.Request{Kind: wire.ReqCreate, AccountID: "a"})
	resp = readResponse(t, conn)
	if resp.Kind != wire.RespAccountState {
		t.Fatalf("expected session to still be serving requests, got %+v", resp)
	}

	sendRequest(t, conn, wire.Request{Kind: wire.ReqQuit})
	readResponse(t, conn)
	<-done
}

func TestSessionMoveMoney(t *testing.T) {
	conn, l, done := newTestSession(t)
	defer conn.Close()

	mustCreate := func(id ledger.AccountId) {
		if _, err := l.CreateAccount(id); err != nil {
			t.Fatalf("CreateAccount: %v", err)
		}
	}
	mustCreate("a")
	mustCreate("b")
	amt, _ := ledger.NewNonZeroMoney(50)
	if _, err := l.Deposit("a", amt); err != nil {
		t.Fatalf("Deposit: %v", err)
	}

	moveAmt, _ := ledger.NewNonZeroMoney(30)
	sendRequest(t, conn, wire.Request{Kind: wire.ReqMove, AccountID: "a", To: "b", Amount: moveAmt})
	resp := readResponse(t, conn)
	if resp.Kind != wire.RespFundsMovement || resp.From.Balance != 20 || resp.To.Balance != 30 {
		t.Fatalf("Move response = %+v", resp)
	}

	sendRequest(t, conn, wire.Request{Kind: wire.ReqQuit})
	readResponse(t, conn)
	<-done
}

func TestSessionDecodeErrorClosesConnection(t *testing.T) {
	conn, _, done := newTestSession(t)
	defer conn.Close()

	if err := frame.WriteFrame(conn, []byte{200, 3, 1, 2, 3}); err != nil {
		t.Fatalf("WriteFrame: %v", err)
	}
	<-done
}
