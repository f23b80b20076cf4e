package sim

// IsActive reports whether a run is in progress.
func (v *Vehicle) IsActive() bool { return v.state != StateInactive }

// State returns the current phase.
func (v *Vehicle) State() VehicleState { return v.state }

// CurrentStopIndex returns the stop the vehicle is at or last left, or -1
// while inactive.
func (v *Vehicle) CurrentStopIndex() int {
	if v.state == StateInactive {
		return -1
	}
	return v.stopIndex
}

// IsPlayerAboard reports whether the player is on the vehicle.
func (v *Vehicle) IsPlayerAboard() bool { return v.player.aboard }

// TicketValid reports whether the player holds a valid ticket for the
// current journey. Always false when the player is not aboard.
func (v *Vehicle) TicketValid() bool { return v.player.aboard && v.player.ticketValid }

// IsNightService reports whether the current run is a night service.
func (v *Vehicle) IsNightService() bool { return v.state != StateInactive && v.night }

// InspectorPresent reports whether an inspector rides the current run.
func (v *Vehicle) InspectorPresent() bool { return v.inspector.present }

// FlaggedStop returns the stop the player is signalling at, or -1.
func (v *Vehicle) FlaggedStop() int { return v.player.flagStop }

// NextDepartureIn returns the real seconds until the next run, or 0 while
// a run is in progress.
func (v *Vehicle) NextDepartureIn() float64 {
	if v.state != StateInactive {
		return 0
	}
	return ticksToSeconds(v.nextDeparture)
}

// FareForNow quotes the fare for boarding right now under the market seen
// on the latest Update. During a run the run's service decides the night
// multiplier; otherwise the hour does.
func (v *Vehicle) FareForNow() int {
	hour := v.deps.Clock.CurrentHour()
	night := v.night
	if v.state == StateInactive {
		night = v.cfg.Service.Night.Contains(hour)
	}
	return ComputeFare(hour, night, v.tick.Market, v.cfg.Fares)
}

// PassDaysRemaining returns the days left on the pass as of the clock's
// current day.
func (v *Vehicle) PassDaysRemaining() int {
	return v.pass.DaysRemaining(v.deps.Clock.CurrentDay())
}

// HasValidPass reports whether the pass covers day.
func (v *Vehicle) HasValidPass(day int) bool { return v.pass.IsValid(day) }

// QueueContents returns a copy of the riders waiting at stop.
func (v *Vehicle) QueueContents(stop int) []*Rider { return v.stops.Items(stop) }

// Onboard returns a copy of the managed riders on the vehicle.
func (v *Vehicle) Onboard() []*Rider {
	out := make([]*Rider, len(v.onboard))
	copy(out, v.onboard)
	return out
}

// Config returns the route configuration the vehicle was built with.
func (v *Vehicle) Config() RouteConfig { return v.cfg }

// Snapshot is a serialisable view of the vehicle, published to observers.
type Snapshot struct {
	Line             string       `json:"line"`
	State            VehicleState `json:"state"`
	Stop             int          `json:"stop"`
	StopName         string       `json:"stopName,omitempty"`
	Night            bool         `json:"night"`
	PlayerAboard     bool         `json:"playerAboard"`
	TicketValid      bool         `json:"ticketValid"`
	PassValid        bool         `json:"passValid"`
	PassDaysLeft     int          `json:"passDaysRemaining"`
	InspectorPresent bool         `json:"inspectorPresent"`
	Onboard          int          `json:"onboard"`
	Queues           []int        `json:"queues"`
	Fare             int          `json:"fare"`
	NextDeparture    float64      `json:"nextDepartureSeconds"`
	Clock            int64        `json:"clock"`
}

// Snapshot captures the observable state of the vehicle.
func (v *Vehicle) Snapshot() Snapshot {
	s := Snapshot{
		Line:             v.cfg.Name,
		State:            v.state,
		Stop:             v.CurrentStopIndex(),
		Night:            v.IsNightService(),
		PlayerAboard:     v.player.aboard,
		TicketValid:      v.TicketValid(),
		PassValid:        v.HasValidPass(v.deps.Clock.CurrentDay()),
		PassDaysLeft:     v.PassDaysRemaining(),
		InspectorPresent: v.inspector.present,
		Onboard:          len(v.onboard),
		Queues:           make([]int, v.stops.Count()),
		Fare:             v.FareForNow(),
		NextDeparture:    v.NextDepartureIn(),
		Clock:            v.clock,
	}
	if s.Stop >= 0 {
		s.StopName = v.cfg.Stops[s.Stop]
	}
	for i := range s.Queues {
		s.Queues[i] = v.stops.Size(i)
	}
	return s
}
