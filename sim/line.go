package sim

import "github.com/sirupsen/logrus"

// Line runs a Vehicle only during the route's operating hours.
type Line struct {
	Vehicle *Vehicle
	hours   HourWindow
	inputs  func() TickContext
}

// NewLine adapts v to a TimeGatedAutomaton. inputs is called on every tick
// to collect the vehicle's per-tick context.
func NewLine(v *Vehicle, inputs func() TickContext) *Line {
	if v == nil || inputs == nil {
		panic("NewLine: vehicle and inputs must not be nil")
	}
	return &Line{Vehicle: v, hours: v.cfg.Service.Operating, inputs: inputs}
}

func (l *Line) IsOpen(hour float64, _ int) bool { return l.hours.Contains(hour) }

func (l *Line) OnEnter() {
	logrus.Infof("%s opens, first run in %.1fs", l.Vehicle.cfg.Name, l.Vehicle.NextDepartureIn())
}

func (l *Line) OnTick(delta float64) { l.Vehicle.Update(delta, l.inputs()) }

// OnExit takes the vehicle out of service at closing time.
func (l *Line) OnExit() {
	logrus.Infof("%s closes", l.Vehicle.cfg.Name)
	l.Vehicle.Shutdown()
}
