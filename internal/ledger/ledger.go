package ledger

import (
	"sync"

	"github.com/klingon-exchange/ledgerd/pkg/logging"
)

var log = logging.GetDefault().Component("ledger")

// Ledger is the facade composing an OperationLog and a StateProjection
// under a single reader-writer lock. It is the only shared mutable
// resource in the service (§5): readers (GetBalance, GetAccountOps,
// GetHistory) may run concurrently with each other; writers
// (CreateAccount, Deposit, Withdraw, MoveMoney, Replay) exclude everyone
// else. The lock is held only for the duration of one facade call.
type Ledger struct {
	mu       sync.RWMutex
	log      *OperationLog
	state    *StateProjection
	onCommit CommitHook
}

// CommitHook is notified of every operation the ledger successfully
// appends and projects, after the append/projection but still under the
// write lock. It exists so observers (the operation feed) can react to
// commits without the ledger package depending on them; a hook must not
// block or re-enter the ledger.
type CommitHook func(OpID, Op)

// New returns an empty ledger.
func New() *Ledger {
	return &Ledger{
		log:   NewOperationLog(),
		state: NewStateProjection(),
	}
}

// SetCommitHook installs hook to be called after every successful commit.
// Only one hook may be installed at a time; passing nil removes it.
func (l *Ledger) SetCommitHook(hook CommitHook) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.onCommit = hook
}

// CreateAccount registers a new account at zero balance.
func (l *Ledger) CreateAccount(id AccountId) (Account, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.appendAndProject(NewCreate(id))
}

// Deposit increases id's balance by amount.
func (l *Ledger) Deposit(id AccountId, amount NonZeroMoney) (Account, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.appendAndProject(NewDeposit(id, amount))
}

// Withdraw decreases id's balance by amount, if sufficient.
func (l *Ledger) Withdraw(id AccountId, amount NonZeroMoney) (Account, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.appendAndProject(NewWithdraw(id, amount))
}

// GetBalance returns the current account view for id.
func (l *Ledger) GetBalance(id AccountId) (Account, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state.GetBalance(id)
}

// MoveMoney withdraws amount from `from` and deposits it into `to`,
// committing both legs atomically (I5): either both the withdraw and the
// deposit are appended and projected, or neither is.
//
// Atomicity is achieved by pre-validating both legs against a hypothetical
// post-withdraw state before appending anything (see DESIGN.md "Move
// two-phase commit" and SPEC_FULL.md), rather than appending first and
// rolling back on failure.
func (l *Ledger) MoveMoney(from, to AccountId, amount NonZeroMoney) (fromAfter, toAfter Account, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if from == to {
		return Account{}, Account{}, errProhibited("cannot move money to the same account")
	}

	withdraw := NewWithdraw(from, amount)
	deposit := NewDeposit(to, amount)

	hypothetical := l.state.clone()
	if _, err := hypothetical.Apply(withdraw); err != nil {
		return Account{}, Account{}, err
	}
	if _, err := hypothetical.Apply(deposit); err != nil {
		return Account{}, Account{}, err
	}

	ids := l.log.AppendAll([]Op{withdraw, deposit})
	accounts, err := l.state.ApplyAll([]Op{withdraw, deposit})
	if err != nil {
		// Both legs were validated against the hypothetical state above;
		// a failure here means the log and the live projection have
		// diverged, which is a bug, not a business error.
		log.Fatal("projection failed for a pre-validated move", "opIDs", ids, "err", err)
		return Account{}, Account{}, NewError(InternalError, "projection failed for a pre-validated move")
	}
	if l.onCommit != nil {
		l.onCommit(ids[0], withdraw)
		l.onCommit(ids[1], deposit)
	}
	return accounts[0], accounts[1], nil
}

// GetAccountOps returns every operation logged against id, in append
// order.
func (l *Ledger) GetAccountOps(id AccountId) ([]OpID, []Op, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.log.GetOps(id)
}

// GetHistory returns the full operation log, in OpID order.
func (l *Ledger) GetHistory() ([]OpID, []Op) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.log.GetHistory()
}

// CaptureHistory returns the full operation log as a slice of
// HistoryEntry, suitable for passing to Replay.
func (l *Ledger) CaptureHistory() []HistoryEntry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	ids, ops := l.log.GetHistory()
	hist := make([]HistoryEntry, len(ids))
	for i := range ids {
		hist[i] = HistoryEntry{ID: ids[i], Op: ops[i]}
	}
	return hist
}

// appendAndProject implements the log-before-state rule (§4.E): op is
// appended to the log first, then projected onto state. Callers must hold
// the write lock. If projection fails after a successful append, the
// operation is a logic error (the append should have been preceded by
// validation) and is treated as fatal.
func (l *Ledger) appendAndProject(op Op) (Account, error) {
	if _, err := l.state.peek(op); err != nil {
		return Account{}, err
	}
	id := l.log.Append(op)
	acct, err := l.state.Apply(op)
	if err != nil {
		log.Fatal("projection failed for a pre-validated operation", "opID", id, "op", op, "err", err)
		return Account{}, NewError(InternalError, "projection failed for a pre-validated operation")
	}
	if l.onCommit != nil {
		l.onCommit(id, op)
	}
	return acct, nil
}
