// Package server implements the Acceptor (spec §4.H): it binds a TCP
// endpoint, accepts connections, and spawns an independent session for
// each one, all sharing a single Ledger behind its own reader-writer
// lock.
package server

import (
	"errors"
	"net"
	"sync"

	"github.com/klingon-exchange/ledgerd/internal/ledger"
	"github.com/klingon-exchange/ledgerd/internal/session"
	"github.com/klingon-exchange/ledgerd/pkg/logging"
)

// Acceptor binds a listener and spawns one Session per accepted
// connection. Accept errors are logged and do not terminate the accept
// loop; only closing the listener (Close) stops it.
type Acceptor struct {
	ledger   *ledger.Ledger
	log      *logging.Logger
	listener net.Listener

	wg sync.WaitGroup
}

// New returns an Acceptor that will dispatch accepted connections against
// l.
func New(l *ledger.Ledger) *Acceptor {
	return &Acceptor{
		ledger: l,
		log:    logging.GetDefault().Component("acceptor"),
	}
}

// Listen binds addr (host:port) and starts the accept loop in the
// foreground; it returns when the listener is closed.
func (a *Acceptor) Listen(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	a.listener = ln
	a.log.Info("listening", "addr", addr)
	return a.acceptLoop()
}

func (a *Acceptor) acceptLoop() error {
	for {
		conn, err := a.listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				a.log.Info("listener closed")
				return nil
			}
			a.log.Warn("accept error", "error", err)
			continue
		}

		sess := session.New(conn, a.ledger)
		a.log.Info("session accepted", "session", sess.ID(), "remote", conn.RemoteAddr())

		a.wg.Add(1)
		go func() {
			defer a.wg.Done()
			sess.Run()
			a.log.Debug("session ended", "session", sess.ID())
		}()
	}
}

// Close stops the accept loop by closing the listener. Outstanding
// sessions are allowed to drain naturally (§4.H); Close does not wait for
// them. Use Wait if draining must be observed.
func (a *Acceptor) Close() error {
	if a.listener == nil {
		return nil
	}
	return a.listener.Close()
}

// Wait blocks until every spawned session has returned.
func (a *Acceptor) Wait() {
	a.wg.Wait()
}

// Addr returns the bound listener address, or nil before Listen succeeds.
func (a *Acceptor) Addr() net.Addr {
	if a.listener == nil {
		return nil
	}
	return a.listener.Addr()
}
