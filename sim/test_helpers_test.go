package sim

import "testing"

// fakeSinks records every side effect the vehicle applies. Tier rises by
// one for every 5 points of reputation.
type fakeSinks struct {
	reputation  int
	offenses    []OffenseKind
	unlocked    map[AchievementKind]int
	counters    map[AchievementKind]int
	escalations []string
}

func newFakeSinks() *fakeSinks {
	return &fakeSinks{unlocked: map[AchievementKind]int{}, counters: map[AchievementKind]int{}}
}

func (s *fakeSinks) Adjust(delta int)            { s.reputation += delta }
func (s *fakeSinks) Tier() int                   { return s.reputation / 5 }
func (s *fakeSinks) Record(kind OffenseKind)     { s.offenses = append(s.offenses, kind) }
func (s *fakeSinks) Unlock(kind AchievementKind) { s.unlocked[kind]++ }
func (s *fakeSinks) Increment(k AchievementKind) { s.counters[k]++ }
func (s *fakeSinks) Escalate(reason string)      { s.escalations = append(s.escalations, reason) }

type harness struct {
	v      *Vehicle
	wallet *countingWallet
	sinks  *fakeSinks
	events *EventRecorder
}

// testRoute is the default loop with every coin made deterministic: no
// inspector and no alighting until a test turns them on.
func testRoute() RouteConfig {
	cfg := DefaultRouteConfig()
	cfg.Enforcement.InspectorChance = 0
	cfg.Riders.AlightChance = 0
	cfg.Riders.DisturbanceChance = 0
	return cfg
}

func newHarness(t *testing.T, cfg RouteConfig, items map[ItemKind]int, seed int64) *harness {
	t.Helper()
	wallet := newCountingWallet(items)
	sinks := newFakeSinks()
	events := &EventRecorder{}
	deps := Dependencies{
		Clock:        FixedClock{Hour: 12, Day: 0, SecsPerMinute: 1},
		Wallet:       wallet,
		Reputation:   sinks,
		Record:       sinks,
		Achievements: sinks,
		Wanted:       sinks,
		Events:       events,
	}
	return &harness{
		v:      NewVehicle(cfg, deps, NewPartitionedRNG(NewSimulationKey(seed))),
		wallet: wallet,
		sinks:  sinks,
		events: events,
	}
}

// at builds the inputs of a tick at hour with the player nowhere near a stop.
func at(hour float64, arrivals ...*Rider) TickContext {
	return TickContext{Hour: hour, Market: MarketNormal, PlayerStop: -1, Arrivals: arrivals}
}
