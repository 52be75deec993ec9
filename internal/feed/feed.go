// Package feed broadcasts every operation the ledger commits to
// subscribed WebSocket observers. It is a passive, read-only
// observability surface: it cannot issue requests against the ledger, and
// nothing in the ledger or session layers depends on it being present.
package feed

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/klingon-exchange/ledgerd/internal/ledger"
	"github.com/klingon-exchange/ledgerd/pkg/logging"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Event is one committed operation, shaped for observers rather than for
// the wire protocol's TLV codec.
type Event struct {
	OpID      string          `json:"op_id"`
	Kind      string          `json:"kind"`
	AccountID ledger.AccountId `json:"account_id"`
	Amount    uint32          `json:"amount,omitempty"`
	Timestamp int64           `json:"timestamp"`
}

func kindName(k ledger.OpKind) string {
	switch k {
	case ledger.OpCreate:
		return "create"
	case ledger.OpDeposit:
		return "deposit"
	case ledger.OpWithdraw:
		return "withdraw"
	default:
		return "unknown"
	}
}

// EventFromOp builds the observer-facing Event for a just-committed
// operation.
func EventFromOp(id ledger.OpID, op ledger.Op, now int64) Event {
	ev := Event{
		OpID:      id.String(),
		Kind:      kindName(op.Kind),
		AccountID: op.AccountID,
		Timestamp: now,
	}
	if op.Kind == ledger.OpDeposit || op.Kind == ledger.OpWithdraw {
		ev.Amount = op.Amount.Value()
	}
	return ev
}

// client is one connected WebSocket observer.
type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub fans committed-operation events out to every connected observer. Its
// zero value is not usable; construct one with NewHub and start its event
// loop with Run.
type Hub struct {
	clients    map[*client]bool
	broadcast  chan Event
	register   chan *client
	unregister chan *client
	mu         sync.RWMutex
	log        *logging.Logger
}

// NewHub returns a Hub with no connected clients.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*client]bool),
		broadcast:  make(chan Event, 256),
		register:   make(chan *client),
		unregister: make(chan *client),
		log:        logging.GetDefault().Component("feed"),
	}
}

// Run drives the hub's event loop. It blocks until ctx-like cancellation
// is not needed: the hub lives for the process lifetime, the same as the
// acceptor it sits beside. Callers run it in its own goroutine.
func (h *Hub) Run() {
	for {
		select {
		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = true
			n := len(h.clients)
			h.mu.Unlock()
			h.log.Debug("observer connected", "clients", n)

		case c := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}
			n := len(h.clients)
			h.mu.Unlock()
			h.log.Debug("observer disconnected", "clients", n)

		case ev := <-h.broadcast:
			data, err := json.Marshal(ev)
			if err != nil {
				h.log.Error("failed to marshal feed event", "error", err)
				continue
			}
			h.mu.RLock()
			for c := range h.clients {
				select {
				case c.send <- data:
				default:
					h.log.Warn("observer send buffer full, dropping client")
					go func(c *client) { h.unregister <- c }(c)
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Broadcast queues ev for delivery to every connected observer. It never
// blocks: if the internal queue is full, the event is dropped and logged.
func (h *Hub) Broadcast(ev Event) {
	select {
	case h.broadcast <- ev:
	default:
		h.log.Warn("broadcast queue full, dropping event", "opID", ev.OpID)
	}
}

// ClientCount reports the number of connected observers.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// ServeHTTP upgrades r to a WebSocket and registers the resulting
// connection as an observer of every subsequently broadcast event.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Error("websocket upgrade failed", "error", err)
		return
	}

	c := &client{conn: conn, send: make(chan []byte, 64)}
	h.register <- c

	go c.writePump()
	go c.readPump(h)
}

func (c *client) readPump(h *Hub) {
	defer func() {
		h.unregister <- c
		c.conn.Close()
	}()
	c.conn.SetReadLimit(512)
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(30 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
