// Package ledger keeps the in-memory, append-only transaction history.
//
// The ledger lives for the process lifetime and is never evicted or
// deduplicated, so memory grows with every qualifying opportunity. That is
// an accepted tradeoff for this scope; restart the process to reset it.
package ledger

import (
	"sync"

	"github.com/shopspring/decimal"

	"spreadwatch/api"
)

type Ledger struct {
	mu           sync.RWMutex
	transactions []api.Transaction
}

func New() *Ledger {
	return &Ledger{}
}

// Append records a transaction. Insertion order is preserved.
func (l *Ledger) Append(tx api.Transaction) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.transactions = append(l.transactions, tx)
}

// Transactions returns a copy of the full history in insertion order.
func (l *Ledger) Transactions() []api.Transaction {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]api.Transaction, len(l.transactions))
	copy(out, l.transactions)
	return out
}

func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.transactions)
}

// Summarize reduces the full history to cumulative performance numbers.
// With zero transactions both totals are zero.
func (l *Ledger) Summarize() api.Performance {
	l.mu.RLock()
	defer l.mu.RUnlock()

	perf := api.Performance{
		TotalROI:           decimal.Zero,
		TotalUSDOperations: decimal.Zero,
	}
	for _, tx := range l.transactions {
		perf.TotalROI = perf.TotalROI.Add(tx.ROI)
		perf.TotalUSDOperations = perf.TotalUSDOperations.Add(tx.USDOperationValue)
	}
	return perf
}
