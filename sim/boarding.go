package sim

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/loopline/loopline/sim/trace"
)

// BoardResult is the outcome of a boarding attempt by the player.
type BoardResult string

const (
	BoardSuccess           BoardResult = "success"
	BoardNotAtStop         BoardResult = "not_at_stop"
	BoardNotActive         BoardResult = "not_active"
	BoardAlreadyBoarded    BoardResult = "already_boarded"
	BoardInsufficientFunds BoardResult = "insufficient_funds"
)

// Board puts the player on the vehicle at stop atStop, paying the fare for
// the given hour and market unless a pass covers day. At most one payment
// is taken per boarding; a failed attempt changes nothing.
func (v *Vehicle) Board(atStop int, hour float64, day int, market MarketCondition) BoardResult {
	if res := v.boardingCheck(atStop); res != BoardSuccess {
		v.traceBoarding(res, 0, false, false)
		return res
	}
	return v.payAndBoard(hour, day, market)
}

// EvadeFare puts the player on without paying. The vehicle and stop
// preconditions are the same as for Board. Evasion is recorded as an
// offence, raises notoriety and charges the evasion fine when affordable.
func (v *Vehicle) EvadeFare(atStop int) BoardResult {
	if res := v.boardingCheck(atStop); res != BoardSuccess {
		v.traceBoarding(res, 0, false, true)
		return res
	}
	enf := v.cfg.Enforcement
	v.seatPlayer(false)
	v.Metrics.Evasions++
	v.deps.Reputation.Adjust(enf.EvasionReputation)
	v.deps.Record.Record(OffenseFareEvasion)
	v.deps.Achievements.Increment(AchievementFaresEvaded)
	fine := 0
	if enf.EvasionFine > 0 && v.deps.Wallet.Debit(ItemCash, enf.EvasionFine) {
		fine = enf.EvasionFine
		v.Metrics.FinesCollected += fine
	}
	v.traceBoarding(BoardSuccess, 0, false, true)
	v.emit(Event{Kind: EventPlayerBoarded, Stop: v.stopIndex, Amount: fine, Detail: "evaded"})
	return BoardSuccess
}

// AlightPlayer lets the player off at the current stop. Returns false when
// the player is not aboard or the vehicle is not stopped.
func (v *Vehicle) AlightPlayer() bool {
	if !v.player.aboard || v.state != StateAtStop {
		return false
	}
	v.unseatPlayer()
	v.emit(Event{Kind: EventPlayerAlighted, Stop: v.stopIndex})
	return true
}

// FlagAtStop signals the vehicle to stop at stop for the player. The flag
// stays up until the vehicle serves that stop or CancelFlag is called.
func (v *Vehicle) FlagAtStop(stop int) {
	if stop < 0 || stop >= v.stops.Count() {
		panic(fmt.Sprintf("FlagAtStop: stop %d out of range [0, %d)", stop, v.stops.Count()))
	}
	v.player.flagStop = stop
}

// CancelFlag lowers the player's flag, if any.
func (v *Vehicle) CancelFlag() {
	v.player.flagStop = -1
}

// ActivatePass spends one pass voucher to start a pass on day.
func (v *Vehicle) ActivatePass(day int) bool {
	ok := v.pass.Activate(day)
	if ok {
		logrus.Infof("pass activated on day %d for %d days", day, v.cfg.Pass.DurationDays)
	}
	return ok
}

// boardingCheck applies the shared preconditions of Board and EvadeFare.
func (v *Vehicle) boardingCheck(atStop int) BoardResult {
	switch {
	case v.state == StateInactive:
		return BoardNotActive
	case v.player.aboard:
		return BoardAlreadyBoarded
	case v.state != StateAtStop || atStop != v.stopIndex:
		return BoardNotAtStop
	}
	return BoardSuccess
}

// payAndBoard charges the fare, or honours a pass, and seats the player.
// Callers have already established that the player may board here.
func (v *Vehicle) payAndBoard(hour float64, day int, market MarketCondition) BoardResult {
	if v.pass.IsValid(day) {
		v.seatPlayer(true)
		v.Metrics.PassRides++
		v.traceBoarding(BoardSuccess, 0, true, false)
		v.emit(Event{Kind: EventPlayerBoarded, Stop: v.stopIndex, Detail: "pass"})
		return BoardSuccess
	}
	fare := ComputeFare(hour, v.night, market, v.cfg.Fares)
	if !v.deps.Wallet.Debit(ItemCash, fare) {
		v.traceBoarding(BoardInsufficientFunds, 0, false, false)
		return BoardInsufficientFunds
	}
	v.seatPlayer(true)
	v.Metrics.FaresCollected += fare
	v.traceBoarding(BoardSuccess, fare, false, false)
	v.emit(Event{Kind: EventPlayerBoarded, Stop: v.stopIndex, Amount: fare, Detail: "paid"})
	return BoardSuccess
}

// boardFlaggedPlayer boards a player who signalled at the current stop,
// using the inputs of the latest Update.
func (v *Vehicle) boardFlaggedPlayer() {
	res := v.payAndBoard(v.tick.Hour, v.tick.Day, v.tick.Market)
	if res == BoardInsufficientFunds {
		v.Metrics.Refusals++
		v.emit(Event{Kind: EventBoardingRefused, Stop: v.stopIndex, Detail: string(res)})
	}
}

// seatPlayer marks the player aboard. Each boarding is a new journey, so
// the inspector may check the player again.
func (v *Vehicle) seatPlayer(ticketValid bool) {
	v.player.aboard = true
	v.player.ticketValid = ticketValid
	v.player.boardedAt = v.stopIndex
	if v.player.flagStop == v.stopIndex {
		v.player.flagStop = -1
	}
	v.inspector.checkedPlayer = false
	v.player.rides++
	v.Metrics.PlayerRides++
	v.deps.Achievements.Increment(AchievementRidesTaken)
	if v.player.rides == 1 {
		v.deps.Achievements.Unlock(AchievementFirstRide)
	}
}

func (v *Vehicle) unseatPlayer() {
	v.player.aboard = false
	v.player.ticketValid = false
	v.player.boardedAt = -1
}

func (v *Vehicle) traceBoarding(res BoardResult, fare int, usedPass, evaded bool) {
	if !v.trace.Enabled() {
		return
	}
	v.trace.RecordBoarding(trace.BoardingRecord{
		Clock:    v.clock,
		Stop:     v.stopIndex,
		Result:   string(res),
		Fare:     fare,
		UsedPass: usedPass,
		Evaded:   evaded,
	})
}
