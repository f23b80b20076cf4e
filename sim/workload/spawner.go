package workload

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/loopline/loopline/sim"
)

// KindWeight is one entry of the rider-kind mix.
type KindWeight struct {
	Kind   sim.RiderKind `yaml:"kind"`
	Weight float64       `yaml:"weight"`
}

// DefaultMix is mostly commuters with a few rowdy riders.
var DefaultMix = []KindWeight{
	{Kind: sim.RiderCommuter, Weight: 0.6},
	{Kind: sim.RiderTourist, Weight: 0.3},
	{Kind: sim.RiderRowdy, Weight: 0.1},
}

// SpawnerConfig describes rider generation for one line.
type SpawnerConfig struct {
	Stops         int          `yaml:"-"`
	RatePerMinute float64      `yaml:"rate_per_minute"` // riders per stop per simulated minute
	Arrival       ArrivalSpec  `yaml:"arrival"`
	Mix           []KindWeight `yaml:"mix"`
}

func (c SpawnerConfig) Validate() error {
	if c.Stops <= 0 {
		return fmt.Errorf("spawner needs at least one stop, got %d", c.Stops)
	}
	if c.RatePerMinute < 0 || math.IsNaN(c.RatePerMinute) || math.IsInf(c.RatePerMinute, 0) {
		return fmt.Errorf("rate_per_minute must be a finite value >= 0, got %f", c.RatePerMinute)
	}
	if err := c.Arrival.Validate(); err != nil {
		return err
	}
	total := 0.0
	for _, kw := range c.Mix {
		if kw.Weight < 0 {
			return fmt.Errorf("mix weight for %s must be non-negative, got %f", kw.Kind, kw.Weight)
		}
		total += kw.Weight
	}
	if total <= 0 {
		return fmt.Errorf("rider mix needs a positive total weight")
	}
	return nil
}

// Spawner hands new riders to stops. Every stop runs its own arrival
// process; arrivals are generated in simulated-time order across stops so
// the draw sequence does not depend on how the caller slices time.
//
// Not safe for concurrent use.
type Spawner struct {
	cfg      SpawnerConfig
	rng      *rand.Rand
	sampler  ArrivalSampler
	now      float64   // simulated minutes since construction
	next     []float64 // absolute time of each stop's next arrival
	mixTotal float64
	spawned  int
}

// NewSpawner builds a spawner drawing from the spawner subsystem of rng.
func NewSpawner(cfg SpawnerConfig, rng *sim.PartitionedRNG) (*Spawner, error) {
	if rng == nil {
		return nil, fmt.Errorf("spawner needs an rng")
	}
	if len(cfg.Mix) == 0 {
		cfg.Mix = DefaultMix
	}
	if cfg.Arrival.Process == "" {
		cfg.Arrival.Process = "poisson"
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s := &Spawner{
		cfg:  cfg,
		rng:  rng.ForSubsystem(sim.SubsystemSpawner),
		next: make([]float64, cfg.Stops),
	}
	for _, kw := range cfg.Mix {
		s.mixTotal += kw.Weight
	}
	if cfg.RatePerMinute == 0 {
		for i := range s.next {
			s.next[i] = math.Inf(1)
		}
		return s, nil
	}
	s.sampler = NewArrivalSampler(cfg.Arrival, cfg.RatePerMinute)
	for i := range s.next {
		s.next[i] = s.sampler.SampleGap(s.rng)
	}
	return s, nil
}

// Advance moves the spawner forward by simMinutes and returns the riders
// that arrived in that span, in arrival order. Each rider's Stop names the
// queue it wants to join.
func (s *Spawner) Advance(simMinutes float64) []*sim.Rider {
	if simMinutes < 0 || math.IsNaN(simMinutes) {
		panic(fmt.Sprintf("Spawner.Advance: invalid span %f", simMinutes))
	}
	end := s.now + simMinutes
	var out []*sim.Rider
	for {
		stop := s.earliest()
		if stop < 0 || s.next[stop] > end {
			break
		}
		out = append(out, s.newRider(stop))
		s.next[stop] += s.sampler.SampleGap(s.rng)
	}
	s.now = end
	if len(out) > 0 {
		logrus.Debugf("spawner: %d arrivals by minute %.2f", len(out), s.now)
	}
	return out
}

// earliest returns the stop with the soonest arrival, lowest index on ties,
// or -1 when no stop will ever see an arrival.
func (s *Spawner) earliest() int {
	best := -1
	for i, t := range s.next {
		if math.IsInf(t, 1) {
			continue
		}
		if best < 0 || t < s.next[best] {
			best = i
		}
	}
	return best
}

func (s *Spawner) newRider(stop int) *sim.Rider {
	kind := s.pickKind()
	// Reading the id from the seeded stream keeps ids reproducible.
	id, err := uuid.NewRandomFromReader(s.rng)
	if err != nil {
		panic(fmt.Sprintf("spawner: rider id: %v", err))
	}
	s.spawned++
	return sim.NewRider(id.String(), kind, stop)
}

func (s *Spawner) pickKind() sim.RiderKind {
	x := s.rng.Float64() * s.mixTotal
	for _, kw := range s.cfg.Mix {
		if x < kw.Weight {
			return kw.Kind
		}
		x -= kw.Weight
	}
	return s.cfg.Mix[len(s.cfg.Mix)-1].Kind
}

// Spawned returns how many riders the spawner has created.
func (s *Spawner) Spawned() int { return s.spawned }
