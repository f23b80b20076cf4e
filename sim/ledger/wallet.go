// Package ledger provides in-process and Postgres-backed implementations of
// the vehicle's external collaborators: the currency store and the
// reputation, criminal record, achievement and pursuit sinks.
package ledger

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/loopline/loopline/sim"
)

// Wallet is an in-memory sim.CurrencyStore. Safe for concurrent use.
type Wallet struct {
	mu    sync.Mutex
	items map[sim.ItemKind]int
}

// NewWallet creates a wallet holding a copy of initial.
func NewWallet(initial map[sim.ItemKind]int) *Wallet {
	items := make(map[sim.ItemKind]int, len(initial))
	for k, n := range initial {
		if n < 0 {
			panic(fmt.Sprintf("NewWallet: negative balance %d for %s", n, k))
		}
		items[k] = n
	}
	return &Wallet{items: items}
}

func (w *Wallet) Balance(kind sim.ItemKind) int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.items[kind]
}

// Credit adds n units of kind. Non-positive amounts are ignored.
func (w *Wallet) Credit(kind sim.ItemKind, n int) {
	if n <= 0 {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.items[kind] += n
}

// Debit removes n units of kind, or nothing at all when the balance is short.
func (w *Wallet) Debit(kind sim.ItemKind, n int) bool {
	if n < 0 {
		return false
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.items[kind] < n {
		return false
	}
	w.items[kind] -= n
	return true
}

// Holdings returns a copy of every non-zero balance.
func (w *Wallet) Holdings() map[sim.ItemKind]int {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make(map[sim.ItemKind]int, len(w.items))
	for k, n := range w.items {
		if n != 0 {
			out[k] = n
		}
	}
	return out
}

func (w *Wallet) String() string {
	h := w.Holdings()
	kinds := make([]string, 0, len(h))
	for k := range h {
		kinds = append(kinds, string(k))
	}
	sort.Strings(kinds)
	parts := make([]string, len(kinds))
	for i, k := range kinds {
		parts[i] = fmt.Sprintf("%s=%d", k, h[sim.ItemKind(k)])
	}
	return "{" + strings.Join(parts, " ") + "}"
}
