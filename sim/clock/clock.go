// Package clock provides the accelerated simulated clock that drives a line.
//
// Simulated time advances from caller-supplied real seconds at a
// configurable rate. The clock never reads the wall clock itself.
package clock

import (
	"fmt"
	"math"
	"sync"
)

const minutesPerDay = 24 * 60

// SimClock maps elapsed real seconds onto a simulated hour and day.
// Safe for concurrent use: the serve loop advances it while HTTP handlers read it.
type SimClock struct {
	mu            sync.RWMutex
	minutes       float64 // simulated minutes since 00:00 on day 0
	secsPerMinute float64 // real seconds per simulated minute
	paused        bool

	listeners []func(hour float64, day int)
}

// New creates a clock at startHour on startDay running at secsPerMinute
// real seconds per simulated minute.
func New(startHour float64, startDay int, secsPerMinute float64) (*SimClock, error) {
	if startHour < 0 || startHour >= 24 {
		return nil, fmt.Errorf("start hour must be in [0,24), got %f", startHour)
	}
	if startDay < 0 {
		return nil, fmt.Errorf("start day must be non-negative, got %d", startDay)
	}
	if err := checkSpeed(secsPerMinute); err != nil {
		return nil, err
	}
	return &SimClock{
		minutes:       float64(startDay)*minutesPerDay + startHour*60,
		secsPerMinute: secsPerMinute,
	}, nil
}

func checkSpeed(secsPerMinute float64) error {
	if secsPerMinute <= 0 || math.IsInf(secsPerMinute, 0) || math.IsNaN(secsPerMinute) {
		return fmt.Errorf("real seconds per sim minute must be a positive number, got %f", secsPerMinute)
	}
	return nil
}

// Advance moves simulated time forward by realSeconds and returns the real
// seconds that actually elapsed for the simulation: 0 while paused. Callers
// pass the returned value on to the vehicle so paused time never reaches it.
func (c *SimClock) Advance(realSeconds float64) float64 {
	if realSeconds <= 0 {
		return 0
	}
	c.mu.Lock()
	if c.paused {
		c.mu.Unlock()
		return 0
	}
	c.minutes += realSeconds / c.secsPerMinute
	hour, day := c.hourDayLocked()
	listeners := c.listeners
	c.mu.Unlock()

	for _, fn := range listeners {
		fn(hour, day)
	}
	return realSeconds
}

// AddListener registers a callback invoked after every effective Advance.
func (c *SimClock) AddListener(fn func(hour float64, day int)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, fn)
}

// CurrentHour returns the simulated hour of day in [0,24).
func (c *SimClock) CurrentHour() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	hour, _ := c.hourDayLocked()
	return hour
}

// CurrentDay returns the simulated day index.
func (c *SimClock) CurrentDay() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, day := c.hourDayLocked()
	return day
}

// RealSecondsPerSimMinute returns the current speed factor.
func (c *SimClock) RealSecondsPerSimMinute() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.secsPerMinute
}

// SetSpeed changes how many real seconds make one simulated minute.
// Simulated time already elapsed is unaffected.
func (c *SimClock) SetSpeed(secsPerMinute float64) error {
	if err := checkSpeed(secsPerMinute); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.secsPerMinute = secsPerMinute
	return nil
}

// Pause freezes simulated time.
func (c *SimClock) Pause() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.paused = true
}

// Resume unfreezes simulated time.
func (c *SimClock) Resume() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.paused = false
}

// Paused reports whether simulated time is frozen.
func (c *SimClock) Paused() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.paused
}

func (c *SimClock) hourDayLocked() (float64, int) {
	day := math.Floor(c.minutes / minutesPerDay)
	hour := (c.minutes - day*minutesPerDay) / 60
	if hour >= 24 {
		hour = 0
		day++
	}
	return hour, int(day)
}

// String renders the clock as "day D HH:MM".
func (c *SimClock) String() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	hour, day := c.hourDayLocked()
	total := int(hour * 60)
	return fmt.Sprintf("day %d %02d:%02d", day, total/60, total%60)
}
