package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// inspectedRoute guarantees an inspector on every run.
func inspectedRoute() RouteConfig {
	cfg := testRoute()
	cfg.Enforcement.InspectorChance = 1
	return cfg
}

// boardAtFirstStop brings the vehicle to stop 0 with one queued rider so it
// stops there, then boards the player with board.
func boardAtFirstStop(t *testing.T, h *harness, board func() BoardResult) {
	t.Helper()
	h.v.Update(5, at(12, NewRider("r1", RiderCommuter, 0)))
	require.Equal(t, StateAtStop, h.v.State())
	require.True(t, h.v.InspectorPresent() || h.v.cfg.Enforcement.InspectorChance == 0)
	require.Equal(t, BoardSuccess, board())
}

func TestInspector_PaidTicket_CheckedOncePerJourney(t *testing.T) {
	// GIVEN a paying player and an inspector aboard
	h := newHarness(t, inspectedRoute(), map[ItemKind]int{ItemCash: 100}, 1)
	boardAtFirstStop(t, h, func() BoardResult { return h.v.Board(0, 12, 0, MarketNormal) })

	// WHEN the whole journey to the next stop elapses
	h.v.Update(4+6, at(12))
	require.Equal(t, 1, h.v.Metrics.Inspections)
	h.v.Update(6, at(12))

	// THEN exactly one check passed, with no consequence
	assert.Equal(t, 1, h.v.Metrics.Inspections)
	assert.Equal(t, 0, h.v.Metrics.FailedChecks)
	assert.Equal(t, 1, h.events.Count(EventInspectionPassed))
	assert.Equal(t, 1, h.sinks.counters[AchievementInspectionsPassed])
	assert.Equal(t, 98, h.wallet.Balance(ItemCash))
}

func TestInspector_Ticketless_FinedRecordedAndEscalated(t *testing.T) {
	// GIVEN a fare evader with cash and an inspector aboard
	h := newHarness(t, inspectedRoute(), map[ItemKind]int{ItemCash: 100}, 1)
	boardAtFirstStop(t, h, func() BoardResult { return h.v.EvadeFare(0) })
	require.Equal(t, 90, h.wallet.Balance(ItemCash))

	// WHEN the inspector reaches them mid-journey
	h.v.Update(4+6, at(12))

	// THEN the fine is charged, the offence recorded and pursuit begins
	assert.Equal(t, 40, h.wallet.Balance(ItemCash))
	assert.Equal(t, []OffenseKind{OffenseFareEvasion, OffenseTicketless}, h.sinks.offenses)
	assert.Equal(t, 15, h.sinks.reputation)
	assert.Equal(t, []string{string(OffenseTicketless)}, h.sinks.escalations)
	assert.Equal(t, 1, h.v.Metrics.FailedChecks)
	assert.Equal(t, 1, h.v.Metrics.WantedEscalated)
	assert.Equal(t, 1, h.events.Count(EventWanted))
}

func TestInspector_Ticketless_BelowWantedTier_NoEscalation(t *testing.T) {
	cfg := inspectedRoute()
	cfg.Enforcement.WantedTier = 4
	h := newHarness(t, cfg, map[ItemKind]int{ItemCash: 100}, 1)
	boardAtFirstStop(t, h, func() BoardResult { return h.v.EvadeFare(0) })

	h.v.Update(4+6, at(12))

	assert.Equal(t, 1, h.v.Metrics.FailedChecks)
	assert.Empty(t, h.sinks.escalations)
}

func TestInspector_Ticketless_UnaffordableFine_NoDebt(t *testing.T) {
	// GIVEN an evader with less than either fine
	h := newHarness(t, inspectedRoute(), map[ItemKind]int{ItemCash: 5}, 1)
	boardAtFirstStop(t, h, func() BoardResult { return h.v.EvadeFare(0) })

	// WHEN caught
	h.v.Update(4+6, at(12))

	// THEN no partial fine is taken
	assert.Equal(t, 5, h.wallet.Balance(ItemCash))
	assert.Equal(t, 0, h.v.Metrics.FinesCollected)
	assert.Equal(t, 1, h.v.Metrics.FailedChecks)
}

func TestInspector_CheckTicket_IdempotentWithinJourney(t *testing.T) {
	// GIVEN an evader travelling with an inspector
	h := newHarness(t, inspectedRoute(), map[ItemKind]int{ItemCash: 100}, 1)
	boardAtFirstStop(t, h, func() BoardResult { return h.v.EvadeFare(0) })
	h.v.Update(4, at(12))
	require.Equal(t, StateTravelling, h.v.State())

	// WHEN the check runs twice, then the inspection point passes
	h.v.checkTicket()
	h.v.checkTicket()
	h.v.Update(12, at(12))

	// THEN the player was fined once
	assert.Equal(t, 1, h.v.Metrics.Inspections)
	assert.Equal(t, 40, h.wallet.Balance(ItemCash))
	assert.Len(t, h.sinks.offenses, 2)
}

func TestInspector_NoPlayerAboard_NoCheck(t *testing.T) {
	h := newHarness(t, inspectedRoute(), nil, 1)
	h.v.Update(5+4+12, at(12, NewRider("r1", RiderCommuter, 0)))

	assert.Equal(t, 0, h.v.Metrics.Inspections)
}

func TestInspector_StaffBadge_Bypasses(t *testing.T) {
	h := newHarness(t, inspectedRoute(), map[ItemKind]int{ItemCash: 100, ItemStaffBadge: 1}, 1)
	boardAtFirstStop(t, h, func() BoardResult { return h.v.EvadeFare(0) })

	h.v.Update(4+6, at(12))

	assert.Equal(t, 1, h.v.Metrics.Inspections)
	assert.Equal(t, 0, h.v.Metrics.FailedChecks)
	assert.Equal(t, 90, h.wallet.Balance(ItemCash))
	assert.Equal(t, []OffenseKind{OffenseFareEvasion}, h.sinks.offenses)
}

func TestInspector_NewJourney_CheckedAgain(t *testing.T) {
	// GIVEN a player checked on the first leg who gets off and back on
	h := newHarness(t, inspectedRoute(), map[ItemKind]int{ItemCash: 100}, 1)
	boardAtFirstStop(t, h, func() BoardResult { return h.v.Board(0, 12, 0, MarketNormal) })
	h.v.Update(4+12, at(12))
	require.Equal(t, 1, h.v.CurrentStopIndex())
	require.True(t, h.v.AlightPlayer())
	require.Equal(t, BoardSuccess, h.v.Board(1, 12, 0, MarketNormal))

	// WHEN the next leg reaches its inspection point
	h.v.Update(4+6, at(12))

	// THEN the new journey is checked too
	assert.Equal(t, 2, h.v.Metrics.Inspections)
}

func TestInspector_Bribe_ValidatesTicket(t *testing.T) {
	// GIVEN an evader aboard with an inspector
	h := newHarness(t, inspectedRoute(), map[ItemKind]int{ItemCash: 100}, 1)
	boardAtFirstStop(t, h, func() BoardResult { return h.v.EvadeFare(0) })

	// WHEN they bribe the inspector
	ok := h.v.BribeInspector(20)

	// THEN the ticket counts as valid and the check passes
	require.True(t, ok)
	assert.True(t, h.v.TicketValid())
	assert.Equal(t, 70, h.wallet.Balance(ItemCash))
	h.v.Update(4+6, at(12))
	assert.Equal(t, 0, h.v.Metrics.FailedChecks)
	assert.Equal(t, 1, h.v.Metrics.Bribes)
}

func TestInspector_Bribe_Rejected(t *testing.T) {
	t.Run("no inspector", func(t *testing.T) {
		h := newHarness(t, testRoute(), map[ItemKind]int{ItemCash: 100}, 1)
		boardAtFirstStop(t, h, func() BoardResult { return h.v.EvadeFare(0) })

		assert.False(t, h.v.BribeInspector(20))
		assert.Equal(t, 90, h.wallet.Balance(ItemCash))
		assert.False(t, h.v.TicketValid())
	})
	t.Run("insufficient funds", func(t *testing.T) {
		h := newHarness(t, inspectedRoute(), map[ItemKind]int{ItemCash: 15}, 1)
		boardAtFirstStop(t, h, func() BoardResult { return h.v.EvadeFare(0) })

		assert.False(t, h.v.BribeInspector(20))
		assert.Equal(t, 5, h.wallet.Balance(ItemCash))
		assert.False(t, h.v.TicketValid())
	})
	t.Run("zero cost", func(t *testing.T) {
		h := newHarness(t, inspectedRoute(), map[ItemKind]int{ItemCash: 100}, 1)
		boardAtFirstStop(t, h, func() BoardResult { return h.v.EvadeFare(0) })

		assert.False(t, h.v.BribeInspector(0))
		assert.False(t, h.v.TicketValid())
		assert.Equal(t, 0, h.v.Metrics.Bribes)
	})
	t.Run("ticket already valid", func(t *testing.T) {
		h := newHarness(t, inspectedRoute(), map[ItemKind]int{ItemCash: 100}, 1)
		boardAtFirstStop(t, h, func() BoardResult { return h.v.Board(0, 12, 0, MarketNormal) })

		assert.False(t, h.v.BribeInspector(20))
		assert.Equal(t, 98, h.wallet.Balance(ItemCash))
		assert.Equal(t, 0, h.v.Metrics.Bribes)
	})
	t.Run("player not aboard", func(t *testing.T) {
		h := newHarness(t, inspectedRoute(), map[ItemKind]int{ItemCash: 100}, 1)
		h.v.Update(5, at(12, NewRider("r1", RiderCommuter, 0)))

		assert.False(t, h.v.BribeInspector(20))
		assert.Equal(t, 100, h.wallet.Balance(ItemCash))
	})
}

func TestInspector_Confront_IncapacitatesForRun(t *testing.T) {
	// GIVEN an evader travelling with an inspector
	h := newHarness(t, inspectedRoute(), map[ItemKind]int{ItemCash: 100}, 1)
	boardAtFirstStop(t, h, func() BoardResult { return h.v.EvadeFare(0) })
	h.v.Update(4, at(12))

	// WHEN they confront the inspector
	ok := h.v.ConfrontInspector()

	// THEN the inspector is out, the punch is taken and notoriety rises
	require.True(t, ok)
	assert.Equal(t, 1, h.wallet.Balance(ItemTicketPunch))
	assert.Equal(t, 10, h.sinks.reputation)
	assert.Equal(t, 1, h.sinks.unlocked[AchievementInspectorConfronted])
	assert.False(t, h.v.ConfrontInspector(), "already incapacitated")
	assert.False(t, h.v.BribeInspector(1), "cannot bribe an incapacitated inspector")

	// AND no check happens for the rest of the run
	h.v.Update(12*5, at(12))
	assert.Equal(t, 0, h.v.Metrics.Inspections)
	assert.Equal(t, 90, h.wallet.Balance(ItemCash))
}
