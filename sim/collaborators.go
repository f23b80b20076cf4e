package sim

// ItemKind names a currency or inventory item held by the currency store.
type ItemKind string

const (
	ItemCash ItemKind = "cash"
	// ItemPassVoucher is consumed when a subscription pass is activated.
	ItemPassVoucher ItemKind = "pass_voucher"
	// ItemStaffBadge lets the holder pass a ticket inspection unchecked.
	ItemStaffBadge ItemKind = "staff_badge"
	// ItemTicketPunch is the loot taken from a confronted inspector.
	ItemTicketPunch ItemKind = "ticket_punch"
)

// OffenseKind names a criminal record entry.
type OffenseKind string

const (
	OffenseFareEvasion OffenseKind = "fare_evasion"
	OffenseTicketless  OffenseKind = "ticketless_travel"
)

// AchievementKind names an achievement or progress counter.
type AchievementKind string

const (
	AchievementFirstRide           AchievementKind = "first_ride"
	AchievementRidesTaken          AchievementKind = "rides_taken"
	AchievementFaresEvaded         AchievementKind = "fares_evaded"
	AchievementInspectionsPassed   AchievementKind = "inspections_passed"
	AchievementInspectorConfronted AchievementKind = "inspector_confronted"
)

// Clock supplies simulated time. Only its outputs are consumed.
type Clock interface {
	CurrentHour() float64 // [0,24)
	CurrentDay() int
	RealSecondsPerSimMinute() float64
}

// CurrencyStore holds the controlled actor's money and items.
// Debit is atomic: it either removes n units or changes nothing.
type CurrencyStore interface {
	Balance(kind ItemKind) int
	Credit(kind ItemKind, n int)
	Debit(kind ItemKind, n int) bool
}

// ReputationSink tracks notoriety. Higher tiers are worse.
type ReputationSink interface {
	Adjust(delta int)
	Tier() int
}

// CriminalRecordSink records offences.
type CriminalRecordSink interface {
	Record(kind OffenseKind)
}

// AchievementSink unlocks achievements and bumps progress counters.
type AchievementSink interface {
	Unlock(kind AchievementKind)
	Increment(kind AchievementKind)
}

// WantedSink is the external pursuit system.
type WantedSink interface {
	Escalate(reason string)
}

// Dependencies groups every collaborator a Vehicle needs. All fields are
// mandatory; use the Nop implementations where a collaborator is irrelevant.
type Dependencies struct {
	Clock        Clock
	Wallet       CurrencyStore
	Reputation   ReputationSink
	Record       CriminalRecordSink
	Achievements AchievementSink
	Wanted       WantedSink
	Events       EventSink
}

func (d Dependencies) validate() {
	switch {
	case d.Clock == nil:
		panic("Dependencies: Clock must not be nil")
	case d.Wallet == nil:
		panic("Dependencies: Wallet must not be nil")
	case d.Reputation == nil:
		panic("Dependencies: Reputation must not be nil")
	case d.Record == nil:
		panic("Dependencies: Record must not be nil")
	case d.Achievements == nil:
		panic("Dependencies: Achievements must not be nil")
	case d.Wanted == nil:
		panic("Dependencies: Wanted must not be nil")
	case d.Events == nil:
		panic("Dependencies: Events must not be nil")
	}
}

// NopDependencies returns a Dependencies whose sinks discard everything,
// built around the given clock and wallet.
func NopDependencies(clock Clock, wallet CurrencyStore) Dependencies {
	return Dependencies{
		Clock:        clock,
		Wallet:       wallet,
		Reputation:   NopReputation{},
		Record:       NopRecord{},
		Achievements: NopAchievements{},
		Wanted:       NopWanted{},
		Events:       NopEvents{},
	}
}

// FixedClock is a Clock that never moves.
type FixedClock struct {
	Hour          float64
	Day           int
	SecsPerMinute float64
}

func (c FixedClock) CurrentHour() float64             { return c.Hour }
func (c FixedClock) CurrentDay() int                  { return c.Day }
func (c FixedClock) RealSecondsPerSimMinute() float64 { return c.SecsPerMinute }

// EmptyWallet is a CurrencyStore with nothing in it.
type EmptyWallet struct{}

func (EmptyWallet) Balance(ItemKind) int     { return 0 }
func (EmptyWallet) Credit(ItemKind, int)     {}
func (EmptyWallet) Debit(ItemKind, int) bool { return false }

type NopReputation struct{}

func (NopReputation) Adjust(int) {}
func (NopReputation) Tier() int  { return 0 }

type NopRecord struct{}

func (NopRecord) Record(OffenseKind) {}

type NopAchievements struct{}

func (NopAchievements) Unlock(AchievementKind)    {}
func (NopAchievements) Increment(AchievementKind) {}

type NopWanted struct{}

func (NopWanted) Escalate(string) {}

type NopEvents struct{}

func (NopEvents) Emit(Event) {}
