package sim

import (
	"fmt"
	"math"
)

// HourWindow is a half-open range of simulated hours [Start, End). A window
// whose Start is after its End wraps past midnight. Start == End covers the
// whole day.
type HourWindow struct {
	Start float64 `yaml:"start"`
	End   float64 `yaml:"end"`
}

// Contains reports whether hour falls inside the window.
func (w HourWindow) Contains(hour float64) bool {
	if w.Start == w.End {
		return true
	}
	if w.Start < w.End {
		return hour >= w.Start && hour < w.End
	}
	return hour >= w.Start || hour < w.End
}

// TimingConfig groups the real-time durations of each vehicle phase, in
// real seconds.
type TimingConfig struct {
	DwellSeconds            float64 `yaml:"dwell_seconds"`             // stationary at a stop before departing
	JourneySeconds          float64 `yaml:"journey_seconds"`           // travelling between consecutive stops
	SkipPauseSeconds        float64 `yaml:"skip_pause_seconds"`        // short pause when a stop has nothing to do
	InitialDepartureSeconds float64 `yaml:"initial_departure_seconds"` // countdown to the first run after construction
	InspectionAt            float64 `yaml:"inspection_at"`             // fraction of a journey at which the inspector checks, in (0,1)
}

// ServiceConfig groups timetable parameters, in simulated time.
type ServiceConfig struct {
	DayIntervalMinutes   float64    `yaml:"day_interval_minutes"`   // gap between day runs
	NightIntervalMinutes float64    `yaml:"night_interval_minutes"` // gap between night runs
	Night                HourWindow `yaml:"night"`                  // hours that spawn a night run
	Operating            HourWindow `yaml:"operating"`              // hours the line is open
}

// FareConfig groups fare multipliers.
type FareConfig struct {
	BaseFare            int          `yaml:"base_fare"`
	NightMultiplier     float64      `yaml:"night_multiplier"`
	RushMultiplier      float64      `yaml:"rush_multiplier"`
	CrackdownMultiplier float64      `yaml:"crackdown_multiplier"`
	RushWindows         []HourWindow `yaml:"rush_windows"`
}

// EnforcementConfig groups ticket inspection parameters.
type EnforcementConfig struct {
	InspectorChance   float64 `yaml:"inspector_chance"`   // probability an inspector rides a given run
	FineAmount        int     `yaml:"fine_amount"`        // fine on a failed check, charged only if affordable
	EvasionFine       int     `yaml:"evasion_fine"`       // partial fine on open fare evasion, charged only if affordable
	EvasionReputation int     `yaml:"evasion_reputation"` // notoriety added by evasion and confrontation
	InspectionPenalty int     `yaml:"inspection_penalty"` // notoriety added by a failed check
	WantedTier        int     `yaml:"wanted_tier"`        // reputation tier at which a failed check escalates
}

// RiderConfig groups rider behaviour probabilities.
type RiderConfig struct {
	AlightChance      float64 `yaml:"alight_chance"`      // per rider, per stop departure
	DisturbanceChance float64 `yaml:"disturbance_chance"` // per rowdy rider alighting from a night run
}

// PassConfig groups subscription parameters.
type PassConfig struct {
	DurationDays int `yaml:"duration_days"`
}

// RouteConfig is the complete parameter set of one loop line.
type RouteConfig struct {
	Name         string            `yaml:"name"`
	Stops        []string          `yaml:"stops"`
	MaxQueueSize int               `yaml:"max_queue_size"`
	Timing       TimingConfig      `yaml:"timing"`
	Service      ServiceConfig     `yaml:"service"`
	Fares        FareConfig        `yaml:"fares"`
	Enforcement  EnforcementConfig `yaml:"enforcement"`
	Riders       RiderConfig       `yaml:"riders"`
	Pass         PassConfig        `yaml:"pass"`
}

// DefaultRouteConfig returns the stock five-stop loop.
func DefaultRouteConfig() RouteConfig {
	return RouteConfig{
		Name:         "loop",
		Stops:        []string{"Depot", "Market Square", "Harbour", "University", "Old Town"},
		MaxQueueSize: 6,
		Timing: TimingConfig{
			DwellSeconds:            4,
			JourneySeconds:          12,
			SkipPauseSeconds:        1.5,
			InitialDepartureSeconds: 5,
			InspectionAt:            0.5,
		},
		Service: ServiceConfig{
			DayIntervalMinutes:   30,
			NightIntervalMinutes: 60,
			Night:                HourWindow{Start: 22, End: 5},
			Operating:            HourWindow{Start: 0, End: 0},
		},
		Fares: FareConfig{
			BaseFare:            2,
			NightMultiplier:     2.0,
			RushMultiplier:      1.5,
			CrackdownMultiplier: 1.25,
			RushWindows:         []HourWindow{{Start: 7, End: 9}, {Start: 17, End: 19}},
		},
		Enforcement: EnforcementConfig{
			InspectorChance:   0.3,
			FineAmount:        50,
			EvasionFine:       10,
			EvasionReputation: 5,
			InspectionPenalty: 10,
			WantedTier:        3,
		},
		Riders: RiderConfig{
			AlightChance:      0.5,
			DisturbanceChance: 0.25,
		},
		Pass: PassConfig{DurationDays: 7},
	}
}

// StopCount returns the number of stops on the loop.
func (c RouteConfig) StopCount() int {
	return len(c.Stops)
}

// Validate checks that the configuration describes a runnable loop.
func (c RouteConfig) Validate() error {
	if len(c.Stops) < 2 {
		return fmt.Errorf("a loop needs at least 2 stops, got %d", len(c.Stops))
	}
	if c.MaxQueueSize <= 0 {
		return fmt.Errorf("max_queue_size must be positive, got %d", c.MaxQueueSize)
	}
	t := c.Timing
	for name, v := range map[string]float64{
		"dwell_seconds":      t.DwellSeconds,
		"journey_seconds":    t.JourneySeconds,
		"skip_pause_seconds": t.SkipPauseSeconds,
	} {
		if secondsToTicks(v) <= 0 {
			return fmt.Errorf("%s must be positive, got %f", name, v)
		}
	}
	if t.InitialDepartureSeconds < 0 {
		return fmt.Errorf("initial_departure_seconds must be non-negative, got %f", t.InitialDepartureSeconds)
	}
	if t.InspectionAt <= 0 || t.InspectionAt >= 1 {
		return fmt.Errorf("inspection_at must be in (0,1), got %f", t.InspectionAt)
	}
	if c.Service.DayIntervalMinutes < 0 || c.Service.NightIntervalMinutes < 0 {
		return fmt.Errorf("service intervals must be non-negative, got day=%f night=%f",
			c.Service.DayIntervalMinutes, c.Service.NightIntervalMinutes)
	}
	if c.Fares.BaseFare < 1 {
		return fmt.Errorf("base_fare must be at least 1, got %d", c.Fares.BaseFare)
	}
	for name, v := range map[string]float64{
		"night_multiplier":     c.Fares.NightMultiplier,
		"rush_multiplier":      c.Fares.RushMultiplier,
		"crackdown_multiplier": c.Fares.CrackdownMultiplier,
	} {
		// Multipliers below 1 would let an extra condition lower the fare.
		if v < 1 || math.IsInf(v, 0) || math.IsNaN(v) {
			return fmt.Errorf("%s must be a finite value >= 1, got %f", name, v)
		}
	}
	for name, p := range map[string]float64{
		"inspector_chance":   c.Enforcement.InspectorChance,
		"alight_chance":      c.Riders.AlightChance,
		"disturbance_chance": c.Riders.DisturbanceChance,
	} {
		if p < 0 || p > 1 {
			return fmt.Errorf("%s must be in [0,1], got %f", name, p)
		}
	}
	if c.Enforcement.FineAmount < 0 || c.Enforcement.EvasionFine < 0 {
		return fmt.Errorf("fines must be non-negative, got fine=%d evasion=%d",
			c.Enforcement.FineAmount, c.Enforcement.EvasionFine)
	}
	if c.Pass.DurationDays <= 0 {
		return fmt.Errorf("pass duration_days must be positive, got %d", c.Pass.DurationDays)
	}
	return nil
}
