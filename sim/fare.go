package sim

import "math"

// MarketCondition is the city-wide economic state supplied by the caller on
// every tick. Only MarketCrackdown affects fares.
type MarketCondition string

const (
	MarketNormal    MarketCondition = "normal"
	MarketCrackdown MarketCondition = "crackdown"
	MarketFestival  MarketCondition = "festival"
)

// fareMultipliers lists the multipliers active for the given inputs.
func fareMultipliers(hour float64, night bool, market MarketCondition, cfg FareConfig) []float64 {
	var ms []float64
	if night {
		ms = append(ms, cfg.NightMultiplier)
	}
	if isRushHour(hour, cfg.RushWindows) {
		ms = append(ms, cfg.RushMultiplier)
	}
	if market == MarketCrackdown {
		ms = append(ms, cfg.CrackdownMultiplier)
	}
	return ms
}

// ComputeFare returns the fare for one ride: BaseFare scaled by the product
// of the active multipliers, rounded up, never below 1. The product is
// commutative, so the order multipliers are listed in has no effect.
func ComputeFare(hour float64, night bool, market MarketCondition, cfg FareConfig) int {
	return applyMultipliers(cfg.BaseFare, fareMultipliers(hour, night, market, cfg))
}

func applyMultipliers(base int, ms []float64) int {
	m := 1.0
	for _, x := range ms {
		m *= x
	}
	// Round away float noise before the ceiling so that 2*1.5*2.0 is 6, not 7.
	raw := math.Round(float64(base)*m*1e9) / 1e9
	fare := int(math.Ceil(raw))
	if fare < 1 {
		return 1
	}
	return fare
}

func isRushHour(hour float64, windows []HourWindow) bool {
	for _, w := range windows {
		// A degenerate window would mark the whole day as rush hour.
		if w.Start != w.End && w.Contains(hour) {
			return true
		}
	}
	return false
}
