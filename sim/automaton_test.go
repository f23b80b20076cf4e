package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingAutomaton struct {
	window              HourWindow
	enters, exits, tick int
	elapsed             float64
}

func (a *countingAutomaton) IsOpen(hour float64, _ int) bool { return a.window.Contains(hour) }
func (a *countingAutomaton) OnEnter()                        { a.enters++ }
func (a *countingAutomaton) OnExit()                         { a.exits++ }
func (a *countingAutomaton) OnTick(delta float64) {
	a.tick++
	a.elapsed += delta
}

func TestGate_CallsEdgesExactlyOnce(t *testing.T) {
	// GIVEN an automaton open from 06:00 to 22:00
	a := &countingAutomaton{window: HourWindow{Start: 6, End: 22}}
	g := NewGate(a)

	// WHEN a day passes in one-hour steps
	for hour := 0; hour < 24; hour++ {
		g.Step(1, float64(hour), 0)
	}

	// THEN it opened and closed once and only ticked while open
	assert.Equal(t, 1, a.enters)
	assert.Equal(t, 1, a.exits)
	assert.Equal(t, 16, a.tick)
	assert.InDelta(t, 16.0, a.elapsed, 1e-9)
	assert.False(t, g.Open())
}

func TestGate_StartsClosed(t *testing.T) {
	a := &countingAutomaton{window: HourWindow{Start: 0, End: 0}}
	g := NewGate(a)
	require.False(t, g.Open())

	g.Step(0.5, 12, 0)
	g.Step(0.5, 12, 0)

	assert.True(t, g.Open())
	assert.Equal(t, 1, a.enters)
	assert.Equal(t, 2, a.tick)
}

func TestLine_ClosingTakesVehicleOutOfService(t *testing.T) {
	// GIVEN a line open 06:00-22:00 with a rider aboard mid-run
	cfg := testRoute()
	cfg.Service.Operating = HourWindow{Start: 6, End: 22}
	h := newHarness(t, cfg, nil, 1)
	r := NewRider("r1", RiderCommuter, 0)
	hour := 21.0
	pending := []*Rider{r}
	line := NewLine(h.v, func() TickContext {
		tick := at(hour, pending...)
		pending = nil
		return tick
	})
	g := NewGate(line)
	g.Step(8, hour, 0)
	require.True(t, h.v.IsActive())
	require.Equal(t, RiderBoarded, r.State)

	// WHEN the clock passes closing time
	hour = 22
	g.Step(1, hour, 0)

	// THEN the vehicle is inactive, empty and waits the initial countdown
	assert.False(t, h.v.IsActive())
	assert.Equal(t, RiderAlighted, r.State)
	assert.InDelta(t, 5.0, h.v.NextDepartureIn(), 1e-9)

	// AND no time passes for it while closed
	g.Step(100, 23, 0)
	assert.InDelta(t, 5.0, h.v.NextDepartureIn(), 1e-9)

	// AND it resumes when the line reopens
	g.Step(5, 6, 1)
	assert.True(t, h.v.IsActive())
}
