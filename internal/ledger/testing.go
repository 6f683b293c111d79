package ledger

// Snapshot is a test helper returning a copy of the in-memory transaction log
// in insertion order. It returns nil for other Ledger implementations.
func Snapshot(l Ledger) []Transaction {
	mem, ok := l.(*inMemoryLedger)
	if !ok {
		return nil
	}
	mem.mu.RLock()
	defer mem.mu.RUnlock()
	out := make([]Transaction, len(mem.transactions))
	copy(out, mem.transactions)
	return out
}
