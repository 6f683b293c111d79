package ledger

import (
	"context"
	"math"
	"slices"
	"sync"

	"github.com/shopspring/decimal"
)

type inMemoryLedger struct {
	mu           sync.RWMutex
	transactions []Transaction
	balances     map[string]int64
}

// NewInMemory creates a concurrency-safe in-memory points ledger. The log and
// the balance aggregate are only ever mutated together under the write lock.
func NewInMemory() Ledger {
	return &inMemoryLedger{
		balances: make(map[string]int64),
	}
}

func (l *inMemoryLedger) Record(_ context.Context, input RecordInput) (Transaction, error) {
	if err := validateRecord(input); err != nil {
		return Transaction{}, err
	}

	tx := Transaction{
		ID:        NewID(),
		Payer:     input.Payer,
		Points:    input.Points,
		Timestamp: input.Timestamp.UTC(),
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	balance, ok := addPoints(l.balances[tx.Payer], tx.Points)
	if !ok {
		return Transaction{}, ErrPointsOutOfRange
	}

	l.transactions = append(l.transactions, tx)
	l.balances[tx.Payer] = balance
	return tx, nil
}

func (l *inMemoryLedger) Spend(_ context.Context, points int64) ([]Deduction, error) {
	if err := validateSpend(points); err != nil {
		return nil, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	total := decimal.Zero
	for _, balance := range l.balances {
		total = total.Add(decimal.NewFromInt(balance))
	}
	if total.LessThan(decimal.NewFromInt(points)) {
		return nil, ErrInsufficientPoints
	}

	view := l.orderedView()
	netCorrections(view)
	deductions, remaining := drawDown(view, points)
	if remaining > 0 {
		return nil, ErrInsufficientPoints
	}

	l.commit(view, deductions)
	return deductions, nil
}

func (l *inMemoryLedger) Balances(_ context.Context) (map[string]int64, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make(map[string]int64, len(l.balances))
	for payer, balance := range l.balances {
		out[payer] = balance
	}
	return out, nil
}

// addPoints returns balance+points and false when the sum leaves the int64 range.
func addPoints(balance, points int64) (int64, bool) {
	if points > 0 && balance > math.MaxInt64-points {
		return 0, false
	}
	if points < 0 && balance < math.MinInt64-points {
		return 0, false
	}
	return balance + points, true
}

// orderedView copies the log oldest first. Ties keep insertion order.
func (l *inMemoryLedger) orderedView() []Transaction {
	view := slices.Clone(l.transactions)
	slices.SortStableFunc(view, func(a, b Transaction) int {
		return a.Timestamp.Compare(b.Timestamp)
	})
	return view
}

// netCorrections absorbs every negative residual into the same payer's
// positive residuals, oldest credit first. A credit is never taken below zero
// and whatever cannot be absorbed stays negative.
func netCorrections(view []Transaction) {
	credits := make(map[string][]int)
	for i := range view {
		if view[i].Points > 0 {
			credits[view[i].Payer] = append(credits[view[i].Payer], i)
		}
	}

	for i := range view {
		if view[i].Points >= 0 {
			continue
		}
		for _, j := range credits[view[i].Payer] {
			if view[i].Points == 0 {
				break
			}
			if view[j].Points == 0 {
				continue
			}
			take := min(-view[i].Points, view[j].Points)
			view[j].Points -= take
			view[i].Points += take
		}
	}
}

// drawDown consumes positive residuals in view order until points is covered.
// Deductions are grouped per payer in the order payers were first touched.
func drawDown(view []Transaction, points int64) ([]Deduction, int64) {
	remaining := points
	deductions := make([]Deduction, 0)
	index := make(map[string]int)

	for i := range view {
		if remaining == 0 {
			break
		}
		tx := &view[i]
		if tx.Points <= 0 {
			continue
		}

		take := min(tx.Points, remaining)
		tx.Points -= take
		remaining -= take

		k, ok := index[tx.Payer]
		if !ok {
			k = len(deductions)
			index[tx.Payer] = k
			deductions = append(deductions, Deduction{Payer: tx.Payer})
		}
		deductions[k].Points -= take
	}

	return deductions, remaining
}

// commit writes the working residuals of every payer the spend touched back
// into the log, prunes exhausted transactions and folds the deductions into
// the balance aggregate.
func (l *inMemoryLedger) commit(view []Transaction, deductions []Deduction) {
	touched := make(map[string]struct{}, len(deductions))
	for _, d := range deductions {
		touched[d.Payer] = struct{}{}
	}

	residuals := make(map[string]int64)
	for _, tx := range view {
		if _, ok := touched[tx.Payer]; ok {
			residuals[tx.ID] = tx.Points
		}
	}

	kept := make([]Transaction, 0, len(l.transactions))
	for _, tx := range l.transactions {
		if residual, ok := residuals[tx.ID]; ok {
			tx.Points = residual
		}
		if tx.Points == 0 {
			continue
		}
		kept = append(kept, tx)
	}
	l.transactions = kept

	for _, d := range deductions {
		l.balances[d.Payer] += d.Points
	}
}
