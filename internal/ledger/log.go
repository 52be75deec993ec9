package ledger

// OperationLog is the append-only store of every operation the ledger has
// accepted. The primary index is keyed by OpID and iterates in insertion
// order; the secondary index is keyed by AccountId and holds, for each
// account, its OpIDs in append order.
//
// The log never rewrites history: Append/AppendAll only ever grow it.
type OperationLog struct {
	byID     map[OpID]Op
	order    []OpID
	next     OpID
	byAcctID map[AccountId][]OpID
}

// NewOperationLog returns an empty log.
func NewOperationLog() *OperationLog {
	return &OperationLog{
		byID:     make(map[OpID]Op),
		next:     firstOpID,
		byAcctID: make(map[AccountId][]OpID),
	}
}

// Append assigns the next OpID to op, stores it, and indexes it by
// op.AccountID. It cannot fail for a well-formed Op; OpID space exhaustion
// is astronomically unlikely (2^128 entries) and is treated as fatal here
// if it is ever observed.
func (l *OperationLog) Append(op Op) OpID {
	id := l.next
	if id == (OpID{}) {
		log.Fatal("operation log exhausted the OpID space")
	}
	l.byID[id] = op
	l.order = append(l.order, id)
	l.byAcctID[op.AccountID] = append(l.byAcctID[op.AccountID], id)
	l.next = id.Next()
	return id
}

// appendWithID inserts op under a caller-supplied id instead of assigning
// the next one, and advances next past it. Used by Replay to preserve the
// OpIDs recorded in a captured history rather than reassigning new ones.
func (l *OperationLog) appendWithID(id OpID, op Op) {
	l.byID[id] = op
	l.order = append(l.order, id)
	l.byAcctID[op.AccountID] = append(l.byAcctID[op.AccountID], id)
	if l.next.Compare(id) <= 0 {
		l.next = id.Next()
	}
}

// AppendAll appends ops as a single batch, in order, returning their
// assigned OpIDs. Appending to the in-memory log cannot partially fail, so
// this always succeeds; it exists to make call sites that require
// batch-atomicity (Move) explicit about the batch boundary.
func (l *OperationLog) AppendAll(ops []Op) []OpID {
	ids := make([]OpID, len(ops))
	for i, op := range ops {
		ids[i] = l.Append(op)
	}
	return ids
}

// GetOps returns every (OpID, Op) logged against accountID, in append
// order, or UnknownAccount if the account has no entries at all.
func (l *OperationLog) GetOps(accountID AccountId) ([]OpID, []Op, error) {
	ids, ok := l.byAcctID[accountID]
	if !ok {
		return nil, nil, errUnknownAccount(accountID)
	}
	ops := make([]Op, len(ids))
	idsCopy := make([]OpID, len(ids))
	copy(idsCopy, ids)
	for i, id := range idsCopy {
		ops[i] = l.byID[id]
	}
	return idsCopy, ops, nil
}

// GetHistory returns the full log in OpID (insertion) order.
func (l *OperationLog) GetHistory() ([]OpID, []Op) {
	ids := make([]OpID, len(l.order))
	ops := make([]Op, len(l.order))
	for i, id := range l.order {
		ids[i] = id
		ops[i] = l.byID[id]
	}
	return ids, ops
}

// Len reports the number of entries in the log.
func (l *OperationLog) Len() int { return len(l.order) }
