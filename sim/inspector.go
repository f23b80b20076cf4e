package sim

import (
	"github.com/sirupsen/logrus"

	"github.com/loopline/loopline/sim/trace"
)

// InspectorSession is the ticket inspector riding one run. Presence is
// rolled when the run spawns and never changes until despawn.
type InspectorSession struct {
	present       bool
	checkedPlayer bool // the player's current journey was checked
	incapacitated bool
}

// pending reports whether a check of the current journey is still owed.
func (s InspectorSession) pending() bool {
	return s.present && !s.checkedPlayer && !s.incapacitated
}

// inspectionDue reports whether the mid-journey check has yet to fire on
// the current leg.
func (v *Vehicle) inspectionDue() bool {
	return v.state == StateTravelling && v.player.aboard && v.inspector.pending() && v.stateTimer <= v.inspectAt
}

// checkTicket inspects the player at most once per journey.
func (v *Vehicle) checkTicket() {
	if !v.inspector.present || v.inspector.checkedPlayer || !v.player.aboard || v.state != StateTravelling {
		return
	}
	v.inspector.checkedPlayer = true
	rec := trace.InspectionRecord{Clock: v.clock, Stop: v.stopIndex}
	switch {
	case v.inspector.incapacitated:
		rec.Outcome = "incapacitated"
	case v.deps.Wallet.Balance(ItemStaffBadge) > 0:
		v.Metrics.Inspections++
		rec.Outcome = "bypass"
		v.emit(Event{Kind: EventInspectionPassed, Stop: v.stopIndex, Detail: "staff badge"})
	case v.player.ticketValid:
		v.Metrics.Inspections++
		rec.Outcome = "valid"
		v.deps.Achievements.Increment(AchievementInspectionsPassed)
		v.emit(Event{Kind: EventInspectionPassed, Stop: v.stopIndex})
	default:
		v.Metrics.Inspections++
		v.penalise(&rec)
	}
	if v.trace.Enabled() {
		v.trace.RecordInspection(rec)
	}
}

// penalise applies the consequences of a failed check. The fine is only
// charged when the player can afford it in full.
func (v *Vehicle) penalise(rec *trace.InspectionRecord) {
	enf := v.cfg.Enforcement
	rec.Outcome = "ticketless"
	v.Metrics.FailedChecks++
	if enf.FineAmount > 0 && v.deps.Wallet.Debit(ItemCash, enf.FineAmount) {
		rec.Fine = enf.FineAmount
		v.Metrics.FinesCollected += enf.FineAmount
	}
	v.deps.Record.Record(OffenseTicketless)
	v.deps.Reputation.Adjust(enf.InspectionPenalty)
	logrus.Infof("[tick %010d] player caught ticketless between stops %d and %d, fined %d",
		v.clock, v.stopIndex, v.stopIndex+1, rec.Fine)
	v.emit(Event{Kind: EventInspectionFailed, Stop: v.stopIndex, Amount: rec.Fine})
	if v.deps.Reputation.Tier() >= enf.WantedTier {
		rec.Escalated = true
		v.Metrics.WantedEscalated++
		v.deps.Wanted.Escalate(string(OffenseTicketless))
		v.emit(Event{Kind: EventWanted, Stop: v.stopIndex, Detail: string(OffenseTicketless)})
	}
}

// BribeInspector pays cost to have the inspector treat the player's ticket
// as valid for the rest of the journey. Requires a ticketless player aboard
// with a conscious inspector, a positive cost and enough cash; otherwise
// nothing changes.
func (v *Vehicle) BribeInspector(cost int) bool {
	if !v.player.aboard || v.player.ticketValid || !v.inspector.present || v.inspector.incapacitated || cost <= 0 {
		return false
	}
	if !v.deps.Wallet.Debit(ItemCash, cost) {
		return false
	}
	v.player.ticketValid = true
	v.Metrics.Bribes++
	v.emit(Event{Kind: EventBribe, Stop: v.stopIndex, Amount: cost})
	return true
}

// ConfrontInspector knocks out the inspector for the rest of the run and
// takes the ticket punch.
func (v *Vehicle) ConfrontInspector() bool {
	if !v.player.aboard || !v.inspector.present || v.inspector.incapacitated {
		return false
	}
	v.inspector.incapacitated = true
	v.deps.Wallet.Credit(ItemTicketPunch, 1)
	v.deps.Reputation.Adjust(v.cfg.Enforcement.EvasionReputation)
	v.deps.Achievements.Unlock(AchievementInspectorConfronted)
	v.Metrics.Confrontations++
	v.emit(Event{Kind: EventConfrontation, Stop: v.stopIndex})
	return true
}
