package ledger

import (
	"fmt"
	"sort"
	"sync"

	"github.com/sirupsen/logrus"
)

// DefaultTierThresholds are the notoriety scores at which tiers 1..4 begin.
var DefaultTierThresholds = []int{10, 25, 45, 70}

// Reputation is a notoriety score bucketed into tiers. Higher is worse.
type Reputation struct {
	mu         sync.Mutex
	score      int
	thresholds []int
}

// NewReputation creates a zero score with the given ascending thresholds.
func NewReputation(thresholds []int) (*Reputation, error) {
	if !sort.IntsAreSorted(thresholds) {
		return nil, fmt.Errorf("tier thresholds must be ascending, got %v", thresholds)
	}
	for i := 1; i < len(thresholds); i++ {
		if thresholds[i] == thresholds[i-1] {
			return nil, fmt.Errorf("duplicate tier threshold %d", thresholds[i])
		}
	}
	t := make([]int, len(thresholds))
	copy(t, thresholds)
	return &Reputation{thresholds: t}, nil
}

// Adjust adds delta to the score. The score never goes below zero.
func (r *Reputation) Adjust(delta int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	before := r.tierLocked()
	r.score = max(r.score+delta, 0)
	if after := r.tierLocked(); after != before {
		logrus.Infof("reputation tier %d -> %d (score %d)", before, after, r.score)
	}
}

// Tier returns how many thresholds the score has reached.
func (r *Reputation) Tier() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.tierLocked()
}

// Score returns the raw notoriety score.
func (r *Reputation) Score() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.score
}

func (r *Reputation) tierLocked() int {
	return sort.Search(len(r.thresholds), func(i int) bool { return r.thresholds[i] > r.score })
}
