package ledger

import (
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/loopline/loopline/sim"
)

// Achievements tracks one-off unlocks and progress counters.
type Achievements struct {
	mu       sync.Mutex
	unlocked map[sim.AchievementKind]bool
	counters map[sim.AchievementKind]int
}

func NewAchievements() *Achievements {
	return &Achievements{
		unlocked: make(map[sim.AchievementKind]bool),
		counters: make(map[sim.AchievementKind]int),
	}
}

// Unlock marks kind as earned. Unlocking twice is harmless.
func (a *Achievements) Unlock(kind sim.AchievementKind) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.unlocked[kind] {
		return
	}
	a.unlocked[kind] = true
	logrus.Infof("achievement unlocked: %s", kind)
}

func (a *Achievements) Increment(kind sim.AchievementKind) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.counters[kind]++
}

func (a *Achievements) Unlocked(kind sim.AchievementKind) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.unlocked[kind]
}

func (a *Achievements) Count(kind sim.AchievementKind) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.counters[kind]
}
