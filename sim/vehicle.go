package sim

import (
	"fmt"
	"math"

	"github.com/sirupsen/logrus"

	"github.com/loopline/loopline/sim/trace"
)

// VehicleState is the phase of the vehicle. Exactly one is current.
type VehicleState string

const (
	StateInactive   VehicleState = "inactive"
	StateTravelling VehicleState = "travelling"
	StateAtStop     VehicleState = "at_stop"
	StateSkipping   VehicleState = "skipping"
)

// TickContext carries the caller-supplied inputs of one Update.
type TickContext struct {
	Hour       float64         // simulated hour of day, [0,24)
	Day        int             // simulated day index
	Market     MarketCondition // active market condition
	PlayerStop int             // stop the player stands at; -1 when not at a stop
	Arrivals   []*Rider        // riders handed over by the spawner; queued at Rider.Stop
}

type playerState struct {
	aboard      bool
	ticketValid bool // meaningful only while aboard
	boardedAt   int
	flagStop    int // stop the player signalled at; -1 when not flagging
	waitingStop int // stop the player stands at; -1 when elsewhere
	rides       int
}

// Vehicle is the loop line's single vehicle and the orchestrator of the
// stop queues, fares, ticket enforcement and the subscription pass.
//
// It is driven purely by Update deltas and performs no wall-clock reads.
// Not safe for concurrent use: one goroutine owns it.
type Vehicle struct {
	cfg   RouteConfig
	deps  Dependencies
	rng   *PartitionedRNG
	stops *StopQueues
	pass  *Subscription
	trace *trace.SimulationTrace

	// phase durations in ticks
	dwell     int64
	journey   int64
	skipPause int64
	inspectAt int64

	state         VehicleState
	stopIndex     int
	stateTimer    int64 // ticks spent in the current state
	nextDeparture int64 // ticks until the next run; only live while inactive
	night         bool  // fixed for one run
	onboard       []*Rider
	player        playerState
	inspector     InspectorSession
	tick          TickContext // inputs of the latest Update
	clock         int64       // total ticks elapsed since construction
	realSeconds   float64     // total real seconds supplied to Update

	Metrics *Metrics
}

// NewVehicle creates an inactive vehicle whose first run departs after
// cfg.Timing.InitialDepartureSeconds. Panics on an invalid config or a
// missing collaborator.
func NewVehicle(cfg RouteConfig, deps Dependencies, rng *PartitionedRNG) *Vehicle {
	if err := cfg.Validate(); err != nil {
		panic(fmt.Sprintf("NewVehicle: %v", err))
	}
	deps.validate()
	if rng == nil {
		panic("NewVehicle: rng must not be nil")
	}
	v := &Vehicle{
		cfg:           cfg,
		deps:          deps,
		rng:           rng,
		stops:         NewStopQueues(cfg.StopCount(), cfg.MaxQueueSize),
		pass:          NewSubscription(deps.Wallet, cfg.Pass.DurationDays),
		dwell:         secondsToTicks(cfg.Timing.DwellSeconds),
		journey:       secondsToTicks(cfg.Timing.JourneySeconds),
		skipPause:     secondsToTicks(cfg.Timing.SkipPauseSeconds),
		state:         StateInactive,
		nextDeparture: secondsToTicks(cfg.Timing.InitialDepartureSeconds),
		player:        playerState{boardedAt: -1, flagStop: -1, waitingStop: -1},
		tick:          TickContext{Market: MarketNormal, PlayerStop: -1},
		Metrics:       NewMetrics(),
	}
	v.inspectAt = int64(math.Round(float64(v.journey) * cfg.Timing.InspectionAt))
	if v.inspectAt < 1 {
		v.inspectAt = 1
	}
	return v
}

// SetTrace attaches a decision trace. A nil trace disables recording.
func (v *Vehicle) SetTrace(st *trace.SimulationTrace) {
	v.trace = st
}

// Update advances the vehicle by delta real seconds under the given inputs.
//
// Elapsed time is consumed transition by transition, so one call with a
// large delta ends in the same state as many calls whose deltas sum to it.
// A zero delta only records the inputs and queues new arrivals.
func (v *Vehicle) Update(delta float64, tick TickContext) {
	if delta < 0 || math.IsNaN(delta) {
		panic(fmt.Sprintf("Update: delta must be a non-negative number, got %f", delta))
	}
	if tick.PlayerStop < -1 || tick.PlayerStop >= v.stops.Count() {
		panic(fmt.Sprintf("Update: player stop %d out of range [-1, %d)", tick.PlayerStop, v.stops.Count()))
	}
	if tick.Market == "" {
		tick.Market = MarketNormal
	}
	arrivals := tick.Arrivals
	tick.Arrivals = nil
	v.tick = tick
	v.player.waitingStop = tick.PlayerStop
	v.admit(arrivals)

	// Ticks are taken from the running total so sub-tick remainders carry
	// over to the next call instead of being rounded away.
	v.realSeconds += delta
	remaining := secondsToTicks(v.realSeconds) - v.clock
	for remaining > 0 {
		need := v.untilNextTransition()
		if remaining < need {
			v.elapse(remaining)
			return
		}
		v.elapse(need)
		remaining -= need
		v.fire()
	}
}

// Enqueue queues r at stop. Returns false, leaving the queue unchanged,
// when the stop is full or r is not free to queue.
func (v *Vehicle) Enqueue(stop int, r *Rider) bool {
	if !r.Roaming() || !v.stops.Enqueue(stop, r) {
		v.Metrics.RejectedEnqueues++
		return false
	}
	return true
}

func (v *Vehicle) admit(arrivals []*Rider) {
	for _, r := range arrivals {
		if r == nil || !r.Roaming() {
			continue
		}
		if !v.Enqueue(r.Stop, r) {
			logrus.Debugf("stop %d full %s, rider %s turned away", r.Stop, v.stops.stop(r.Stop), r.ID)
		}
	}
}

// untilNextTransition returns the ticks left before the next event fires.
func (v *Vehicle) untilNextTransition() int64 {
	switch v.state {
	case StateInactive:
		return max(v.nextDeparture, 0)
	case StateAtStop:
		return v.dwell - v.stateTimer
	case StateSkipping:
		return v.skipPause - v.stateTimer
	case StateTravelling:
		if v.inspectionDue() {
			return v.inspectAt - v.stateTimer
		}
		return v.journey - v.stateTimer
	}
	panic(fmt.Sprintf("unknown vehicle state %q", v.state))
}

func (v *Vehicle) elapse(d int64) {
	v.clock += d
	v.Metrics.ElapsedTicks += d
	if v.state == StateInactive {
		v.nextDeparture -= d
		return
	}
	v.stateTimer += d
}

// fire runs the event whose time has come.
func (v *Vehicle) fire() {
	switch v.state {
	case StateInactive:
		v.spawn()
	case StateAtStop:
		v.depart()
	case StateSkipping:
		v.advance()
	case StateTravelling:
		if v.inspectionDue() {
			v.checkTicket()
			return
		}
		v.advance()
	}
}

func (v *Vehicle) transition(to VehicleState) {
	logrus.Debugf("[tick %010d] vehicle %s -> %s at stop %d", v.clock, v.state, to, v.stopIndex)
	v.state = to
	v.stateTimer = 0
}

// spawn starts a run at the first stop.
func (v *Vehicle) spawn() {
	v.night = v.cfg.Service.Night.Contains(v.tick.Hour)
	v.onboard = nil
	v.inspector = InspectorSession{present: v.rng.Chance(SubsystemInspector, v.cfg.Enforcement.InspectorChance)}
	v.nextDeparture = 0
	v.Metrics.Runs++
	logrus.Infof("[tick %010d] %s run %d departs (%s service, inspector=%v)",
		v.clock, v.cfg.Name, v.Metrics.Runs, v.serviceName(), v.inspector.present)
	v.emit(Event{Kind: EventSpawned, Stop: 0, Detail: v.serviceName()})
	v.arrive(0)
}

// arrive runs the arrival logic at stop idx: stop for work, or skip.
func (v *Vehicle) arrive(idx int) {
	v.stopIndex = idx
	flagged := v.player.flagStop == idx
	if !v.hasWorkAt(idx) {
		if v.player.waitingStop == idx {
			v.Metrics.MissedVehicles++
			v.emit(Event{Kind: EventMissed, Stop: idx, Detail: "player was not signalling"})
		}
		v.skip()
		return
	}
	v.boardQueued(idx)
	if flagged {
		v.player.flagStop = -1
		if !v.player.aboard {
			v.boardFlaggedPlayer()
		}
	}
	v.Metrics.StopsServed++
	v.transition(StateAtStop)
	v.emit(Event{Kind: EventArrived, Stop: idx})
}

// depart runs the departure logic when the dwell at the current stop ends.
func (v *Vehicle) depart() {
	idx := v.stopIndex
	if !v.hasWorkAt(idx) {
		v.skip()
		return
	}
	v.alightRiders(idx)
	v.boardQueued(idx)
	if v.player.flagStop == idx {
		v.player.flagStop = -1
		if !v.player.aboard {
			v.boardFlaggedPlayer()
		}
	}
	v.transition(StateTravelling)
	v.emit(Event{Kind: EventDeparted, Stop: idx})
}

// advance moves to the next stop, or ends the run after the last one.
func (v *Vehicle) advance() {
	next := v.stopIndex + 1
	if next >= v.stops.Count() {
		v.despawn()
		return
	}
	v.arrive(next)
}

func (v *Vehicle) skip() {
	v.Metrics.StopsSkipped++
	v.transition(StateSkipping)
	v.emit(Event{Kind: EventSkipped, Stop: v.stopIndex})
}

// hasWorkAt reports whether anyone is waiting at, riding to, or signalling
// for stop idx.
func (v *Vehicle) hasWorkAt(idx int) bool {
	return v.stops.Size(idx) > 0 || len(v.onboard) > 0 || v.player.aboard || v.player.flagStop == idx
}

func (v *Vehicle) boardQueued(idx int) {
	for _, r := range v.stops.DequeueAll(idx) {
		r.board(idx)
		v.onboard = append(v.onboard, r)
		v.Metrics.Boardings++
	}
}

// alightRiders flips one independent coin per rider who did not board here.
func (v *Vehicle) alightRiders(idx int) {
	kept := make([]*Rider, 0, len(v.onboard))
	for _, r := range v.onboard {
		if r.BoardedAt == idx || !v.rng.Chance(SubsystemAlighting, v.cfg.Riders.AlightChance) {
			kept = append(kept, r)
			continue
		}
		r.alight()
		v.Metrics.Alightings++
		if v.night && r.Kind == RiderRowdy && v.rng.Chance(SubsystemDisturbance, v.cfg.Riders.DisturbanceChance) {
			v.Metrics.Disturbances++
			v.emit(Event{Kind: EventDisturbance, Stop: idx, RiderID: r.ID})
		}
	}
	v.onboard = kept
}

// despawn ends the run: everyone gets off and the next departure is
// scheduled from the interval of the service that just finished.
func (v *Vehicle) despawn() {
	interval := v.cfg.Service.DayIntervalMinutes
	if v.night {
		interval = v.cfg.Service.NightIntervalMinutes
	}
	v.clearVehicle()
	v.Metrics.CompletedRuns++
	v.nextDeparture = secondsToTicks(interval * v.deps.Clock.RealSecondsPerSimMinute())
	v.transition(StateInactive)
	v.stopIndex = 0
	v.night = false
	logrus.Infof("[tick %010d] %s run %d complete, next departure in %.1fs",
		v.clock, v.cfg.Name, v.Metrics.Runs, ticksToSeconds(v.nextDeparture))
	v.emit(Event{Kind: EventDespawned, Stop: v.stops.Count() - 1, Detail: fmt.Sprintf("next in %.1fs", ticksToSeconds(v.nextDeparture))})
}

// Shutdown takes the vehicle out of service immediately, as when the line
// closes. Riders and the player are put off, and the next run departs
// InitialDepartureSeconds after the line reopens.
func (v *Vehicle) Shutdown() {
	if v.state != StateInactive {
		v.clearVehicle()
		v.transition(StateInactive)
		v.emit(Event{Kind: EventDespawned, Stop: v.stopIndex, Detail: "line closed"})
	}
	v.stopIndex = 0
	v.night = false
	v.nextDeparture = secondsToTicks(v.cfg.Timing.InitialDepartureSeconds)
}

// clearVehicle returns every rider and the player to free roam.
func (v *Vehicle) clearVehicle() {
	for _, r := range v.onboard {
		r.alight()
		v.Metrics.Alightings++
	}
	v.onboard = nil
	if v.player.aboard {
		v.unseatPlayer()
		v.emit(Event{Kind: EventPlayerAlighted, Stop: v.stopIndex, Detail: "end of service"})
	}
	v.inspector = InspectorSession{}
}

func (v *Vehicle) serviceName() string {
	if v.night {
		return "night"
	}
	return "day"
}

func (v *Vehicle) emit(ev Event) {
	ev.Clock = v.clock
	v.deps.Events.Emit(ev)
}
