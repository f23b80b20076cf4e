package sim

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVehicle_Snapshot_ReflectsRun(t *testing.T) {
	// GIVEN a run stopped at stop 0 with one rider aboard and one waiting at stop 2
	h := newHarness(t, testRoute(), nil, 1)
	h.v.Update(5, at(12, NewRider("r1", RiderCommuter, 0), NewRider("r2", RiderTourist, 2)))

	// WHEN a snapshot is taken
	s := h.v.Snapshot()

	// THEN it describes the run
	assert.Equal(t, "loop", s.Line)
	assert.Equal(t, StateAtStop, s.State)
	assert.Equal(t, 0, s.Stop)
	assert.Equal(t, "Depot", s.StopName)
	assert.Equal(t, 1, s.Onboard)
	assert.Equal(t, []int{0, 0, 1, 0, 0}, s.Queues)
	assert.Equal(t, 2, s.Fare)
	assert.Zero(t, s.NextDeparture)
	assert.False(t, s.PlayerAboard)
}

func TestVehicle_Snapshot_Inactive_JSON(t *testing.T) {
	h := newHarness(t, testRoute(), nil, 1)

	data, err := json.Marshal(h.v.Snapshot())
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "inactive", got["state"])
	assert.Equal(t, -1.0, got["stop"])
	assert.NotContains(t, got, "stopName")
	assert.Equal(t, 5.0, got["nextDepartureSeconds"])
}

func TestVehicle_Snapshot_ShowsPass(t *testing.T) {
	// GIVEN a player holding one pass voucher
	h := newHarness(t, testRoute(), map[ItemKind]int{ItemPassVoucher: 1}, 1)
	assert.False(t, h.v.Snapshot().PassValid)

	// WHEN the pass is activated on the clock's day
	require.True(t, h.v.ActivatePass(0))

	// THEN the snapshot reports it valid for the full duration
	s := h.v.Snapshot()
	assert.True(t, s.PassValid)
	assert.Equal(t, testRoute().Pass.DurationDays, s.PassDaysLeft)
}
