package engine

import (
	"sort"
	"sync"

	"tradewind/internal/market"
)

// Aggregator collects solutions from concurrent pair evaluations. Pushes are
// serialized by a mutex; ranking happens only on read.
type Aggregator struct {
	mu        sync.Mutex
	solutions []market.TradeSolution
}

// Push appends a solution to the shared set.
func (a *Aggregator) Push(sol market.TradeSolution) {
	a.mu.Lock()
	a.solutions = append(a.solutions, sol)
	a.mu.Unlock()
}

// Len returns the number of collected solutions.
func (a *Aggregator) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.solutions)
}

// Top returns the k most profitable solutions, profit descending. Ties break
// by source id then destination id so repeated runs over identical inputs
// rank identically. Top does not mutate the underlying set.
func (a *Aggregator) Top(k int) []market.TradeSolution {
	a.mu.Lock()
	ranked := make([]market.TradeSolution, len(a.solutions))
	copy(ranked, a.solutions)
	a.mu.Unlock()

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Profit != ranked[j].Profit {
			return ranked[i].Profit > ranked[j].Profit
		}
		if ranked[i].Source.ID != ranked[j].Source.ID {
			return ranked[i].Source.ID < ranked[j].Source.ID
		}
		return ranked[i].Destination.ID < ranked[j].Destination.ID
	})
	if k < len(ranked) {
		ranked = ranked[:k]
	}
	return ranked
}
