package workload

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loopline/loopline/sim"
)

func newSpawner(t *testing.T, cfg SpawnerConfig, seed int64) *Spawner {
	t.Helper()
	s, err := NewSpawner(cfg, sim.NewPartitionedRNG(sim.NewSimulationKey(seed)))
	require.NoError(t, err)
	return s
}

func ids(riders []*sim.Rider) []string {
	out := make([]string, len(riders))
	for i, r := range riders {
		out[i] = r.ID
	}
	return out
}

func TestSpawner_RidersAreFreshAndValid(t *testing.T) {
	s := newSpawner(t, SpawnerConfig{Stops: 5, RatePerMinute: 1}, 42)

	riders := s.Advance(30)

	require.NotEmpty(t, riders)
	for _, r := range riders {
		_, err := uuid.Parse(r.ID)
		assert.NoError(t, err)
		assert.Equal(t, sim.RiderFree, r.State)
		assert.Equal(t, -1, r.BoardedAt)
		assert.GreaterOrEqual(t, r.Stop, 0)
		assert.Less(t, r.Stop, 5)
	}
	assert.Equal(t, len(riders), s.Spawned())
}

func TestSpawner_MeanRate(t *testing.T) {
	// GIVEN 0.2 riders per stop per minute on five stops
	s := newSpawner(t, SpawnerConfig{Stops: 5, RatePerMinute: 0.2}, 7)

	// WHEN ten simulated hours pass
	n := len(s.Advance(600))

	// THEN about 600 riders arrived
	assert.InEpsilon(t, 600, n, 0.15)
}

func TestSpawner_SameSeed_SameRiders(t *testing.T) {
	cfg := SpawnerConfig{Stops: 3, RatePerMinute: 0.5}
	a := newSpawner(t, cfg, 99).Advance(120)
	b := newSpawner(t, cfg, 99).Advance(120)
	c := newSpawner(t, cfg, 100).Advance(120)

	assert.Equal(t, ids(a), ids(b))
	assert.NotEqual(t, ids(a), ids(c))
}

func TestSpawner_SlicingDoesNotChangeArrivals(t *testing.T) {
	// GIVEN two spawners with the same seed
	cfg := SpawnerConfig{Stops: 4, RatePerMinute: 0.3, Arrival: ArrivalSpec{Process: "gamma", CV: ptr(2)}}
	whole := newSpawner(t, cfg, 5)
	sliced := newSpawner(t, cfg, 5)

	// WHEN one advances an hour at once and the other in 480 slices
	want := whole.Advance(60)
	var got []*sim.Rider
	for i := 0; i < 480; i++ {
		got = append(got, sliced.Advance(0.125)...)
	}

	// THEN both produced the same riders at the same stops
	require.Equal(t, ids(want), ids(got))
	for i := range want {
		assert.Equal(t, want[i].Stop, got[i].Stop)
		assert.Equal(t, want[i].Kind, got[i].Kind)
	}
}

func TestSpawner_ZeroRate_NeverSpawns(t *testing.T) {
	s := newSpawner(t, SpawnerConfig{Stops: 2, RatePerMinute: 0}, 1)

	assert.Empty(t, s.Advance(1e6))
	assert.Zero(t, s.Spawned())
}

func TestSpawner_MixSelectsKinds(t *testing.T) {
	s := newSpawner(t, SpawnerConfig{
		Stops:         2,
		RatePerMinute: 2,
		Mix:           []KindWeight{{Kind: sim.RiderRowdy, Weight: 1}, {Kind: sim.RiderTourist, Weight: 0}},
	}, 3)

	for _, r := range s.Advance(20) {
		assert.Equal(t, sim.RiderRowdy, r.Kind)
	}
}

func TestSpawner_ConstantArrivalsAtEveryStop(t *testing.T) {
	// GIVEN one rider per stop every two minutes
	s := newSpawner(t, SpawnerConfig{Stops: 3, RatePerMinute: 0.5, Arrival: ArrivalSpec{Process: "constant"}}, 1)

	// WHEN just under two minutes pass nobody arrives
	assert.Empty(t, s.Advance(1.5))

	// THEN at two minutes every stop gets one, in stop order
	riders := s.Advance(0.5)
	require.Len(t, riders, 3)
	for i, r := range riders {
		assert.Equal(t, i, r.Stop)
	}
}

func TestNewSpawner_RejectsInvalidConfig(t *testing.T) {
	rng := sim.NewPartitionedRNG(sim.NewSimulationKey(1))
	tests := []struct {
		name string
		cfg  SpawnerConfig
	}{
		{"no stops", SpawnerConfig{RatePerMinute: 1}},
		{"negative rate", SpawnerConfig{Stops: 2, RatePerMinute: -1}},
		{"unknown process", SpawnerConfig{Stops: 2, RatePerMinute: 1, Arrival: ArrivalSpec{Process: "burst"}}},
		{"zero mix", SpawnerConfig{Stops: 2, RatePerMinute: 1, Mix: []KindWeight{{Kind: sim.RiderCommuter}}}},
		{"negative weight", SpawnerConfig{Stops: 2, RatePerMinute: 1, Mix: []KindWeight{{Kind: sim.RiderCommuter, Weight: -1}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSpawner(tt.cfg, rng)
			assert.Error(t, err)
		})
	}
	_, err := NewSpawner(SpawnerConfig{Stops: 1, RatePerMinute: 1}, nil)
	assert.Error(t, err)
}

func TestSpawner_Advance_PanicsOnNegativeSpan(t *testing.T) {
	s := newSpawner(t, SpawnerConfig{Stops: 1, RatePerMinute: 1}, 1)
	assert.Panics(t, func() { s.Advance(-1) })
}
