package ledger

import "github.com/loopline/loopline/sim"

// Set bundles one controlled actor's collaborators.
type Set struct {
	Wallet       sim.CurrencyStore
	Reputation   *Reputation
	Record       *CriminalRecord
	Achievements *Achievements
	Wanted       *Wanted
}

// NewSet creates in-memory sinks around wallet with the default reputation tiers.
func NewSet(wallet sim.CurrencyStore) *Set {
	rep, err := NewReputation(DefaultTierThresholds)
	if err != nil {
		panic(err)
	}
	return &Set{
		Wallet:       wallet,
		Reputation:   rep,
		Record:       &CriminalRecord{},
		Achievements: NewAchievements(),
		Wanted:       &Wanted{},
	}
}

// Dependencies wires the set into a vehicle's collaborators.
func (s *Set) Dependencies(clock sim.Clock, events sim.EventSink) sim.Dependencies {
	return sim.Dependencies{
		Clock:        clock,
		Wallet:       s.Wallet,
		Reputation:   s.Reputation,
		Record:       s.Record,
		Achievements: s.Achievements,
		Wanted:       s.Wanted,
		Events:       events,
	}
}
