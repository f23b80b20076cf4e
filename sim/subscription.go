package sim

// Subscription is the unlimited-ride pass. Validity is always recomputed
// from the issue day, never from a counter decremented on a timer, so any
// number of queries per day gives the same answer.
type Subscription struct {
	wallet        CurrencyStore
	durationDays  int
	issuedDay     int
	daysRemaining int // days granted at issue; 0 means no pass was ever activated
}

// NewSubscription creates an inactive pass that consumes vouchers from wallet.
func NewSubscription(wallet CurrencyStore, durationDays int) *Subscription {
	if wallet == nil {
		panic("NewSubscription: wallet must not be nil")
	}
	return &Subscription{wallet: wallet, durationDays: durationDays}
}

// Activate consumes one pass voucher and issues a pass starting on
// currentDay. Activating while a pass is still valid restarts it from
// currentDay. Returns false, changing nothing, when no voucher is held.
func (s *Subscription) Activate(currentDay int) bool {
	if !s.wallet.Debit(ItemPassVoucher, 1) {
		return false
	}
	s.issuedDay = currentDay
	s.daysRemaining = s.durationDays
	return true
}

// IsValid reports whether the pass covers currentDay.
func (s *Subscription) IsValid(currentDay int) bool {
	return s.daysRemaining > 0 && currentDay-s.issuedDay < s.durationDays && currentDay >= s.issuedDay
}

// DaysRemaining returns the number of days, including currentDay, the pass
// still covers. 0 when there is no valid pass.
func (s *Subscription) DaysRemaining(currentDay int) int {
	if !s.IsValid(currentDay) {
		return 0
	}
	return s.durationDays - (currentDay - s.issuedDay)
}
