package ledger

import (
	"sync"

	"github.com/sirupsen/logrus"
)

// MaxWantedLevel caps pursuit escalation.
const MaxWantedLevel = 5

// Wanted is a pursuit level raised by escalations.
type Wanted struct {
	mu      sync.Mutex
	level   int
	reasons []string
}

// Escalate raises the pursuit level by one, up to MaxWantedLevel.
func (w *Wanted) Escalate(reason string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.reasons = append(w.reasons, reason)
	if w.level < MaxWantedLevel {
		w.level++
	}
	logrus.Warnf("wanted level %d: %s", w.level, reason)
}

func (w *Wanted) Level() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.level
}

// Reasons returns every escalation reason, oldest first.
func (w *Wanted) Reasons() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]string, len(w.reasons))
	copy(out, w.reasons)
	return out
}

// Clear drops pursuit entirely.
func (w *Wanted) Clear() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.level = 0
	w.reasons = nil
}
