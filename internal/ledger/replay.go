package ledger

// HistoryEntry is one (OpID, Op) pair as captured by GetHistory, suitable
// for reconstructing a ledger elsewhere.
type HistoryEntry struct {
	ID OpID
	Op Op
}

// Replay constructs a fresh ledger by appending and projecting every entry
// in history, in order. Unlike the mutating facade methods, Replay does
// not re-validate before appending: it observes the log literally. An
// entry whose projection fails (a business-rule violation baked into a
// captured history) is logged and skipped rather than aborting the
// replay — the resulting ledger reflects every entry that was applied,
// which is the property scenario 5 (§8) exercises for a well-formed
// history.
//
// The replayed log preserves the original OpIDs rather than reassigning
// new ones, so a replay of a well-formed history produces a ledger equal
// to the one that produced it.
func Replay(history []HistoryEntry) *Ledger {
	l := New()
	for _, h := range history {
		l.log.appendWithID(h.ID, h.Op)
		if _, err := l.state.Apply(h.Op); err != nil {
			log.Warn("replay: skipping operation that failed projection", "opID", h.ID, "op", h.Op, "err", err)
		}
	}
	return l
}
