package ledger

import (
	"sync"

	"github.com/loopline/loopline/sim"
)

// CriminalRecord keeps every offence in the order committed.
type CriminalRecord struct {
	mu      sync.Mutex
	entries []sim.OffenseKind
}

func (c *CriminalRecord) Record(kind sim.OffenseKind) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = append(c.entries, kind)
}

// Count returns the number of offences of kind.
func (c *CriminalRecord) Count(kind sim.OffenseKind) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, e := range c.entries {
		if e == kind {
			n++
		}
	}
	return n
}

// Entries returns a copy of the record.
func (c *CriminalRecord) Entries() []sim.OffenseKind {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]sim.OffenseKind, len(c.entries))
	copy(out, c.entries)
	return out
}
