// Package ledger implements the event-sourced account ledger: an
// append-only operation log, a derived balance projection, and the facade
// that composes the two under a single reader-writer lock.
package ledger

import (
	"fmt"

	"github.com/klingon-exchange/ledgerd/pkg/helpers"
)

// MaxAccountIDLen is the longest AccountId the wire codec will accept.
const MaxAccountIDLen = 16

// AccountId identifies an account. It is a short printable string, never
// longer than MaxAccountIDLen bytes once UTF-8 encoded.
type AccountId string

// Money is a non-negative account balance.
type Money uint32

// NonZeroMoney is a Money value known to be strictly positive. The zero
// value is not a valid NonZeroMoney; use NewNonZeroMoney to construct one.
type NonZeroMoney struct {
	v uint32
}

// NewNonZeroMoney validates m and returns a NonZeroMoney, or a BadRequest
// Error if m is zero.
func NewNonZeroMoney(m uint32) (NonZeroMoney, error) {
	if m == 0 {
		return NonZeroMoney{}, NewError(BadRequest, "amount must be non-zero")
	}
	return NonZeroMoney{v: m}, nil
}

// Value returns the underlying amount.
func (n NonZeroMoney) Value() uint32 { return n.v }

// Money widens n to a plain Money value.
func (n NonZeroMoney) Money() Money { return Money(n.v) }

// OpID is the log's strictly monotonic, 128-bit, non-zero entry identifier.
// Ordering follows big-endian byte comparison of (Hi, Lo).
type OpID struct {
	Hi uint64
	Lo uint64
}

// firstOpID is the smallest non-zero OpID; the log assigns this to its
// first entry and increments from there.
var firstOpID = OpID{Hi: 0, Lo: 1}

// Next returns the OpID immediately following id, wrapping Lo into Hi on
// overflow. Overflow of Hi as well is reported by the caller (the log)
// as a fatal condition; Next itself cannot fail.
func (id OpID) Next() OpID {
	if id.Lo == ^uint64(0) {
		return OpID{Hi: id.Hi + 1, Lo: 0}
	}
	return OpID{Hi: id.Hi, Lo: id.Lo + 1}
}

// Compare returns -1, 0, or 1 as id is less than, equal to, or greater than
// other, using the same byte-order semantics as the wire encoding.
func (id OpID) Compare(other OpID) int {
	return helpers.CompareBytes(id.bytes(), other.bytes())
}

func (id OpID) bytes() []byte {
	b := make([]byte, 16)
	for i := 0; i < 8; i++ {
		b[i] = byte(id.Hi >> uint(56-8*i))
		b[8+i] = byte(id.Lo >> uint(56-8*i))
	}
	return b
}

// String renders the OpID as a hex string, for log lines.
func (id OpID) String() string {
	return helpers.BytesToHex(id.bytes())
}

// OpKind discriminates the closed set of log-level operations.
type OpKind int

const (
	OpCreate OpKind = iota + 1
	OpDeposit
	OpWithdraw
)

// Op is a single operation as it is stored in the log: a tagged union over
// OpKind, carrying only the fields that kind uses.
type Op struct {
	Kind      OpKind
	AccountID AccountId
	Amount    NonZeroMoney // unused for OpCreate
}

// NewCreate builds a Create operation.
func NewCreate(id AccountId) Op { return Op{Kind: OpCreate, AccountID: id} }

// NewDeposit builds a Deposit operation.
func NewDeposit(id AccountId, amount NonZeroMoney) Op {
	return Op{Kind: OpDeposit, AccountID: id, Amount: amount}
}

// NewWithdraw builds a Withdraw operation.
func NewWithdraw(id AccountId, amount NonZeroMoney) Op {
	return Op{Kind: OpWithdraw, AccountID: id, Amount: amount}
}

func (o Op) String() string {
	switch o.Kind {
	case OpCreate:
		return fmt.Sprintf("Create(%s)", o.AccountID)
	case OpDeposit:
		return fmt.Sprintf("Deposit(%s, %d)", o.AccountID, o.Amount.Value())
	case OpWithdraw:
		return fmt.Sprintf("Withdraw(%s, %d)", o.AccountID, o.Amount.Value())
	default:
		return "Op(unknown)"
	}
}

// Account is a named holding of money. It is a plain, comparable value.
type Account struct {
	AccountID AccountId
	Balance   Money
}
