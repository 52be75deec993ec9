// Package session implements the per-connection request/response loop
// (spec §4.G): read a request, invoke the ledger facade, write a
// response, repeat until the client quits or the connection fails.
package session

import (
	"bufio"
	"net"

	"github.com/google/uuid"

	"github.com/klingon-exchange/ledgerd/internal/frame"
	"github.com/klingon-exchange/ledgerd/internal/ledger"
	"github.com/klingon-exchange/ledgerd/internal/wire"
	"github.com/klingon-exchange/ledgerd/pkg/logging"
)

// State is one of the four states a session's request/response loop can
// be in.
type State int

const (
	Reading State = iota
	Processing
	Writing
	Closed
)

func (s State) String() string {
	switch s {
	case Reading:
		return "Reading"
	case Processing:
		return "Processing"
	case Writing:
		return "Writing"
	case Closed:
		return "Closed"
	default:
		return "Unknown"
	}
}

// Session drives one connection's request/response loop against a shared
// Ledger. A session never holds the ledger's lock across an I/O
// operation: it acquires it only for the duration of one facade call (§5).
type Session struct {
	id     uuid.UUID
	conn   net.Conn
	r      *bufio.Reader
	w      *bufio.Writer
	ledger *ledger.Ledger
	log    *logging.Logger
	state  State
}

// New wraps conn as a Session against l.
func New(conn net.Conn, l *ledger.Ledger) *Session {
	id := uuid.New()
	return &Session{
		id:     id,
		conn:   conn,
		r:      bufio.NewReader(conn),
		w:      bufio.NewWriter(conn),
		ledger: l,
		log:    logging.GetDefault().Component("session").With("session", id.String()),
		state:  Reading,
	}
}

// ID returns the session's correlation id.
func (s *Session) ID() uuid.UUID { return s.id }

// State reports the session's current position in the request/response
// state machine.
func (s *Session) State() State { return s.state }

// Run drives the session until the connection closes, the client quits,
// or a transport/decode error occurs. It always closes the underlying
// connection before returning.
func (s *Session) Run() {
	defer s.conn.Close()
	s.log.Debug("session started", "remote", s.conn.RemoteAddr())

	for {
		s.state = Reading
		payload, err := frame.ReadFrame(s.r)
		if err != nil {
			s.log.Debug("read error, closing session", "error", err)
			s.state = Closed
			return
		}

		req, err := wire.DecodeRequest(payload)
		if err != nil {
			s.log.Warn("decode error, closing session", "error", err)
			s.state = Closed
			return
		}

		s.state = Processing
		if req.Kind == wire.ReqQuit {
			s.log.Debug("client quit")
			s.writeResponse(wire.Bye())
			s.state = Closed
			return
		}

		resp := s.dispatch(req)

		s.state = Writing
		if !s.writeResponse(resp) {
			s.state = Closed
			return
		}
	}
}

// dispatch invokes the ledger facade for req and builds the corresponding
// response. The ledger's write (or read) lock is held only for the
// duration of the single facade call inside each case.
func (s *Session) dispatch(req wire.Request) wire.Response {
	switch req.Kind {
	case wire.ReqCreate:
		acct, err := s.ledger.CreateAccount(req.AccountID)
		return s.accountOrError(acct, err)

	case wire.ReqDeposit:
		acct, err := s.ledger.Deposit(req.AccountID, req.Amount)
		return s.accountOrError(acct, err)

	case wire.ReqWithdraw:
		acct, err := s.ledger.Withdraw(req.AccountID, req.Amount)
		return s.accountOrError(acct, err)

	case wire.ReqGetBalance:
		acct, err := s.ledger.GetBalance(req.AccountID)
		return s.accountOrError(acct, err)

	case wire.ReqMove:
		from, to, err := s.ledger.MoveMoney(req.AccountID, req.To, req.Amount)
		if err != nil {
			return s.errorResponse(err)
		}
		return wire.FundsMovement(from, to)

	default:
		return s.errorResponse(ledger.NewError(ledger.BadRequest, "unsupported request kind"))
	}
}

func (s *Session) accountOrError(acct ledger.Account, err error) wire.Response {
	if err != nil {
		return s.errorResponse(err)
	}
	return wire.AccountState(acct)
}

func (s *Session) errorResponse(err error) wire.Response {
	ledgerErr, ok := err.(*ledger.Error)
	if !ok {
		ledgerErr = ledger.NewError(ledger.InternalError, err.Error())
	}
	s.log.Debug("business error", "kind", ledgerErr.Kind, "msg", ledgerErr.Msg)
	return wire.ErrorResponse(ledgerErr)
}

// writeResponse encodes and frames resp, returning false (and logging) if
// either step fails.
func (s *Session) writeResponse(resp wire.Response) bool {
	payload, err := resp.Encode()
	if err != nil {
		s.log.Error("failed to encode response", "error", err)
		return false
	}
	if err := frame.WriteFrame(s.w, payload); err != nil {
		s.log.Warn("write error, closing session", "error", err)
		return false
	}
	return true
}
