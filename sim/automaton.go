package sim

// TimeGatedAutomaton is anything that only runs during certain simulated
// hours. The Gate owns the transitions; implementations only react.
type TimeGatedAutomaton interface {
	// IsOpen reports whether the automaton should be running at hour on day.
	IsOpen(hour float64, day int) bool
	// OnEnter is called once each time the automaton opens.
	OnEnter()
	// OnTick advances the automaton by delta real seconds while open.
	OnTick(delta float64)
	// OnExit is called once each time the automaton closes.
	OnExit()
}

// Gate drives a TimeGatedAutomaton from the simulated clock. It calls
// OnEnter and OnExit exactly once per opening and closing edge, and
// OnTick only while open.
type Gate struct {
	automaton TimeGatedAutomaton
	open      bool
}

// NewGate wraps a. The gate starts closed, so the first Step during open
// hours calls OnEnter.
func NewGate(a TimeGatedAutomaton) *Gate {
	if a == nil {
		panic("NewGate: automaton must not be nil")
	}
	return &Gate{automaton: a}
}

// Step evaluates the gate at hour and day, then ticks the automaton if it
// is open.
func (g *Gate) Step(delta float64, hour float64, day int) {
	open := g.automaton.IsOpen(hour, day)
	switch {
	case open && !g.open:
		g.open = true
		g.automaton.OnEnter()
	case !open && g.open:
		g.open = false
		g.automaton.OnExit()
	}
	if g.open {
		g.automaton.OnTick(delta)
	}
}

// Open reports whether the automaton is currently open.
func (g *Gate) Open() bool { return g.open }
