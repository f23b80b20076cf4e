package sim

import (
	"hash/fnv"
	"math/rand"
)

// === SimulationKey ===

// SimulationKey uniquely identifies a reproducible simulation run.
// Two vehicles with the same SimulationKey, identical configuration and
// identical inputs MUST make identical probabilistic decisions.
type SimulationKey int64

// NewSimulationKey creates a SimulationKey from a seed value.
func NewSimulationKey(seed int64) SimulationKey {
	return SimulationKey(seed)
}

// === Subsystem Constants ===

const (
	// SubsystemInspector decides inspector presence at each spawn.
	SubsystemInspector = "inspector"

	// SubsystemAlighting flips the per-rider alighting coin at departure.
	SubsystemAlighting = "alighting"

	// SubsystemDisturbance decides post-alighting disturbances on night service.
	SubsystemDisturbance = "disturbance"

	// SubsystemSpawner drives rider generation. Uses the master seed directly.
	SubsystemSpawner = "spawner"
)

// === PartitionedRNG ===

// PartitionedRNG provides deterministic, isolated RNG instances per subsystem.
//
// Derivation formula:
//   - For SubsystemSpawner: uses masterSeed directly
//   - For all other subsystems: masterSeed XOR fnv1a64(subsystemName)
//
// Isolation matters for tick-rate independence: the number of spawner draws
// depends on how a caller slices time, while inspector and alighting draws
// depend only on simulated events.
//
// Thread-safety: NOT thread-safe. Must be called from single goroutine.
type PartitionedRNG struct {
	key        SimulationKey
	subsystems map[string]*rand.Rand
}

// NewPartitionedRNG creates a PartitionedRNG from a SimulationKey.
func NewPartitionedRNG(key SimulationKey) *PartitionedRNG {
	return &PartitionedRNG{
		key:        key,
		subsystems: make(map[string]*rand.Rand),
	}
}

// ForSubsystem returns a deterministically-seeded RNG for the named subsystem.
// The same subsystem name always returns the same *rand.Rand instance (cached).
// Never returns nil.
func (p *PartitionedRNG) ForSubsystem(name string) *rand.Rand {
	if rng, ok := p.subsystems[name]; ok {
		return rng
	}

	var derivedSeed int64
	if name == SubsystemSpawner {
		derivedSeed = int64(p.key)
	} else {
		derivedSeed = int64(p.key) ^ fnv1a64(name)
	}

	rng := rand.New(rand.NewSource(derivedSeed))
	p.subsystems[name] = rng
	return rng
}

// Chance draws from the named subsystem and reports whether the draw falls
// below p. p <= 0 never succeeds and p >= 1 always succeeds; a draw is
// consumed either way so the stream position depends only on call count.
func (p *PartitionedRNG) Chance(subsystem string, prob float64) bool {
	return p.ForSubsystem(subsystem).Float64() < prob
}

// Key returns the SimulationKey used to create this PartitionedRNG.
func (p *PartitionedRNG) Key() SimulationKey {
	return p.key
}

// fnv1a64 computes a 64-bit FNV-1a hash of the input string.
func fnv1a64(s string) int64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return int64(h.Sum64())
}
