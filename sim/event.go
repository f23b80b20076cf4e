package sim

import "github.com/sirupsen/logrus"

// EventKind names something the vehicle surfaces to the outside world.
// Events are notifications; none of them is an error.
type EventKind string

const (
	EventSpawned          EventKind = "spawned"           // a run started at stop 0
	EventArrived          EventKind = "arrived"           // vehicle stopped at a stop with work to do
	EventDeparted         EventKind = "departed"          // vehicle left a stop
	EventSkipped          EventKind = "skipped"           // vehicle passed a stop without stopping
	EventDespawned        EventKind = "despawned"         // run finished, next departure scheduled
	EventMissed           EventKind = "missed"            // player was waiting unflagged at a skipped stop
	EventDisturbance      EventKind = "disturbance"       // rowdy rider caused trouble after alighting
	EventPlayerBoarded    EventKind = "player_boarded"    // player boarded (paid, pass, or evaded)
	EventPlayerAlighted   EventKind = "player_alighted"   // player left the vehicle
	EventBoardingRefused  EventKind = "boarding_refused"  // flagged boarding failed for lack of funds
	EventInspectionPassed EventKind = "inspection_passed" // player held a valid ticket or bypass
	EventInspectionFailed EventKind = "inspection_failed" // player caught without a valid ticket
	EventWanted           EventKind = "wanted"            // failed check escalated to pursuit
	EventBribe            EventKind = "bribe"             // inspector accepted a bribe
	EventConfrontation    EventKind = "confrontation"     // inspector confronted and incapacitated
)

// Event is one notification. Clock is the vehicle's elapsed time in ticks
// at the moment the event happened, which is the same however the caller
// sliced its Update deltas.
type Event struct {
	Kind    EventKind `json:"kind"`
	Clock   int64     `json:"clock"`
	Stop    int       `json:"stop"`
	RiderID string    `json:"riderId,omitempty"`
	Amount  int       `json:"amount,omitempty"`
	Detail  string    `json:"detail,omitempty"`
}

// EventSink receives vehicle events synchronously, in order.
type EventSink interface {
	Emit(Event)
}

// MultiSink fans one event out to several sinks in order.
type MultiSink []EventSink

func (m MultiSink) Emit(ev Event) {
	for _, s := range m {
		s.Emit(ev)
	}
}

// LogSink writes every event to logrus at debug level.
type LogSink struct{}

func (LogSink) Emit(ev Event) {
	logrus.WithFields(logrus.Fields{
		"kind":  ev.Kind,
		"stop":  ev.Stop,
		"rider": ev.RiderID,
	}).Debugf("[tick %010d] %s %s", ev.Clock, ev.Kind, ev.Detail)
}

// EventRecorder keeps every event in memory. Useful in tests and for the
// end-of-run summary.
type EventRecorder struct {
	Events []Event
}

func (r *EventRecorder) Emit(ev Event) {
	r.Events = append(r.Events, ev)
}

// Count returns how many recorded events have the given kind.
func (r *EventRecorder) Count(kind EventKind) int {
	n := 0
	for _, ev := range r.Events {
		if ev.Kind == kind {
			n++
		}
	}
	return n
}
