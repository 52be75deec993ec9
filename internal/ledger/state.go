package ledger

import "math"

// StateProjection is the derived current-balance view obtained by folding
// the operation log. It holds no history of its own; it is strictly a
// function of the operations applied to it.
type StateProjection struct {
	accounts map[AccountId]Account
}

// NewStateProjection returns an empty projection.
func NewStateProjection() *StateProjection {
	return &StateProjection{accounts: make(map[AccountId]Account)}
}

// Apply projects a single operation onto the state and returns the
// resulting account. Apply enforces only the business rules: it does not
// consult the log.
func (s *StateProjection) Apply(op Op) (Account, error) {
	acct, err := s.peek(op)
	if err != nil {
		return Account{}, err
	}
	s.accounts[op.AccountID] = acct
	return acct, nil
}

// ApplyAll applies ops in order, stopping at the first failure.
func (s *StateProjection) ApplyAll(ops []Op) ([]Account, error) {
	accounts := make([]Account, 0, len(ops))
	for _, op := range ops {
		acct, err := s.Apply(op)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, acct)
	}
	return accounts, nil
}

// clone returns a deep copy of s, used to validate a hypothetical sequence
// of operations (a Move's two legs) without mutating the live projection.
func (s *StateProjection) clone() *StateProjection {
	cp := make(map[AccountId]Account, len(s.accounts))
	for k, v := range s.accounts {
		cp[k] = v
	}
	return &StateProjection{accounts: cp}
}

// GetBalance returns the account identified by id, or UnknownAccount.
func (s *StateProjection) GetBalance(id AccountId) (Account, error) {
	acct, ok := s.accounts[id]
	if !ok {
		return Account{}, errUnknownAccount(id)
	}
	return acct, nil
}

// peek reports what Apply would do to op without mutating the projection.
// It is used by the ledger facade to validate a single operation before
// appending it to the log, and by Apply itself.
func (s *StateProjection) peek(op Op) (Account, error) {
	switch op.Kind {
	case OpCreate:
		if _, exists := s.accounts[op.AccountID]; exists {
			return Account{}, errDuplicateAccount(op.AccountID)
		}
		return Account{AccountID: op.AccountID, Balance: 0}, nil
	case OpDeposit:
		acct, ok := s.accounts[op.AccountID]
		if !ok {
			return Account{}, errUnknownAccount(op.AccountID)
		}
		amt := Money(op.Amount.Value())
		if uint64(acct.Balance)+uint64(amt) > math.MaxUint32 {
			return Account{}, errOverflow(op.AccountID)
		}
		acct.Balance += amt
		return acct, nil
	case OpWithdraw:
		acct, ok := s.accounts[op.AccountID]
		if !ok {
			return Account{}, errUnknownAccount(op.AccountID)
		}
		amt := Money(op.Amount.Value())
		if amt > acct.Balance {
			return Account{}, errInsufficientFunds(op.AccountID, acct.Balance, amt)
		}
		acct.Balance -= amt
		return acct, nil
	default:
		return Account{}, NewError(InternalError, "unknown operation kind in projection")
	}
}
