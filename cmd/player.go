package cmd

import (
	"github.com/sirupsen/logrus"

	"github.com/loopline/loopline/sim"
	"github.com/loopline/loopline/sim/clock"
)

// playerPlan scripts a commuting player: wait at Home, ride to Dest, then
// ride back, forever.
type playerPlan struct {
	Home     int
	Dest     int
	Flag     bool // signal the vehicle instead of waiting to board at the stop
	Evade    bool // never pay
	Pass     bool // activate a pass at the start
	BribeMax int  // bribe a ticket inspector for up to this much cash; 0 never bribes
	Confront bool // confront inspectors instead of bribing them
}

type playerAgent struct {
	plan    playerPlan
	vehicle *sim.Vehicle
	clock   *clock.SimClock

	at      int // stop the player waits at
	target  int // stop the player rides to
	flagged bool
	riding  bool
	dealt   bool // handled the inspector on this journey
}

func newPlayerAgent(plan playerPlan, v *sim.Vehicle, clk *clock.SimClock) *playerAgent {
	a := &playerAgent{plan: plan, vehicle: v, clock: clk, at: plan.Home, target: plan.Dest}
	if plan.Pass && !v.ActivatePass(clk.CurrentDay()) {
		logrus.Warn("player: no pass voucher, paying per ride")
	}
	return a
}

// standingAt returns the stop the player waits at, or -1 while riding.
func (a *playerAgent) standingAt() int {
	if a.vehicle.IsPlayerAboard() {
		return -1
	}
	return a.at
}

// act runs the player's decisions after an update.
func (a *playerAgent) act(market sim.MarketCondition) {
	v := a.vehicle
	if v.IsPlayerAboard() {
		a.riding = true
		a.flagged = false
		a.handleInspector()
		if v.State() == sim.StateAtStop && v.CurrentStopIndex() == a.target && v.AlightPlayer() {
			a.at, a.target = a.target, a.at
			a.riding = false
			a.dealt = false
		}
		return
	}
	if a.riding {
		// Put off at the end of service; walk back and try again.
		logrus.Debugf("player: put off before stop %d", a.target)
		a.riding = false
		a.dealt = false
	}

	if a.plan.Flag {
		if !a.flagged || v.FlaggedStop() != a.at {
			v.FlagAtStop(a.at)
			a.flagged = true
		}
		return
	}

	if v.State() != sim.StateAtStop || v.CurrentStopIndex() != a.at {
		return
	}
	if a.plan.Evade {
		v.EvadeFare(a.at)
		return
	}
	res := v.Board(a.at, a.clock.CurrentHour(), a.clock.CurrentDay(), market)
	if res != sim.BoardSuccess {
		logrus.Debugf("player: boarding at stop %d: %s", a.at, res)
	}
}

func (a *playerAgent) handleInspector() {
	v := a.vehicle
	if a.dealt || !v.InspectorPresent() || v.TicketValid() {
		return
	}
	switch {
	case a.plan.Confront:
		a.dealt = v.ConfrontInspector()
	case a.plan.BribeMax > 0:
		a.dealt = v.BribeInspector(a.plan.BribeMax)
	}
}
