package cmd

import (
	"github.com/sirupsen/logrus"

	"github.com/loopline/loopline/sim"
	"github.com/loopline/loopline/sim/clock"
	"github.com/loopline/loopline/sim/ledger"
	"github.com/loopline/loopline/sim/workload"
)

// sessionConfig collects everything needed to wire one line.
type sessionConfig struct {
	Route         sim.RouteConfig
	Seed          int64
	StartHour     float64
	SecsPerMinute float64
	Spawner       workload.SpawnerConfig
	Wallet        sim.CurrencyStore
	Events        sim.EventSink // may be nil
	KeepEvents    bool          // record every event in memory for the end-of-run summary
	Player        *playerPlan   // nil runs the line without a player
}

// session drives one line from caller-supplied real time: the clock gates
// the line, the spawner feeds arrivals and the optional player agent acts
// between updates.
type session struct {
	clock    *clock.SimClock
	vehicle  *sim.Vehicle
	gate     *sim.Gate
	spawner  *workload.Spawner
	ledger   *ledger.Set
	recorder *sim.EventRecorder // nil unless KeepEvents
	player   *playerAgent

	market   sim.MarketCondition
	pending  []*sim.Rider
	standing int // stop a manually controlled player waits at, -1 for none
}

func newSession(cfg sessionConfig) (*session, error) {
	clk, err := clock.New(cfg.StartHour, 0, cfg.SecsPerMinute)
	if err != nil {
		return nil, err
	}
	rng := sim.NewPartitionedRNG(sim.NewSimulationKey(cfg.Seed))
	spawnCfg := cfg.Spawner
	spawnCfg.Stops = cfg.Route.StopCount()
	spawner, err := workload.NewSpawner(spawnCfg, rng)
	if err != nil {
		return nil, err
	}

	s := &session{
		clock:    clk,
		spawner:  spawner,
		ledger:   ledger.NewSet(cfg.Wallet),
		market:   sim.MarketNormal,
		standing: -1,
	}
	events := sim.MultiSink{sim.LogSink{}}
	if cfg.KeepEvents {
		s.recorder = &sim.EventRecorder{}
		events = append(events, s.recorder)
	}
	if cfg.Events != nil {
		events = append(events, cfg.Events)
	}
	s.vehicle = sim.NewVehicle(cfg.Route, s.ledger.Dependencies(clk, events), rng)
	s.gate = sim.NewGate(sim.NewLine(s.vehicle, s.inputs))
	if cfg.Player != nil {
		s.player = newPlayerAgent(*cfg.Player, s.vehicle, clk)
	}
	return s, nil
}

// inputs is called by the line once per open update.
func (s *session) inputs() sim.TickContext {
	tick := sim.TickContext{
		Hour:       s.clock.CurrentHour(),
		Day:        s.clock.CurrentDay(),
		Market:     s.market,
		PlayerStop: -1,
		Arrivals:   s.pending,
	}
	s.pending = nil
	switch {
	case s.player != nil:
		tick.PlayerStop = s.player.standingAt()
	case !s.vehicle.IsPlayerAboard():
		tick.PlayerStop = s.standing
	}
	return tick
}

// step advances the session by realSeconds of wall time.
func (s *session) step(realSeconds float64) {
	elapsed := s.clock.Advance(realSeconds)
	if elapsed == 0 {
		return
	}
	s.pending = s.spawner.Advance(elapsed / s.clock.RealSecondsPerSimMinute())
	s.gate.Step(elapsed, s.clock.CurrentHour(), s.clock.CurrentDay())
	// Arrivals at a closed line go home.
	s.pending = nil
	if s.player != nil {
		s.player.act(s.market)
	}
}

// setMarket switches the market condition seen by the next update.
func (s *session) setMarket(m sim.MarketCondition) {
	if m != s.market {
		logrus.Infof("market: %s -> %s", s.market, m)
	}
	s.market = m
}
