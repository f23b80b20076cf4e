// Defines the Rider struct that models one managed actor waiting for,
// riding on, or leaving the vehicle.

package sim

import (
	"fmt"
)

// RiderState represents the lifecycle state of a rider.
type RiderState string

const (
	// RiderFree is a rider roaming freely, not queued and not aboard.
	RiderFree     RiderState = "free"
	RiderWaiting  RiderState = "waiting"
	RiderBoarded  RiderState = "boarded"
	RiderAlighted RiderState = "alighted"
)

// RiderKind classifies riders. Only RiderRowdy has behavioural weight:
// rowdy riders may cause a disturbance after alighting from a night run.
type RiderKind string

const (
	RiderCommuter RiderKind = "commuter"
	RiderTourist  RiderKind = "tourist"
	RiderRowdy    RiderKind = "rowdy"
)

// Rider is a handle owned by an external spawner. The core only touches
// State, Stop and BoardedAt.
type Rider struct {
	ID   string    // Unique identifier, assigned by the spawner
	Kind RiderKind // Behavioural category

	State     RiderState // free, waiting, boarded, alighted
	Stop      int        // Stop the rider wants to queue at (arrivals) or is queued at
	BoardedAt int        // Stop index where the rider boarded; -1 when not aboard
}

// NewRider creates a free rider that wants to queue at stop.
func NewRider(id string, kind RiderKind, stop int) *Rider {
	return &Rider{ID: id, Kind: kind, State: RiderFree, Stop: stop, BoardedAt: -1}
}

// Roaming reports whether the rider is outside the transit system and can
// be handed to a stop queue.
func (r *Rider) Roaming() bool {
	return r.State == RiderFree || r.State == RiderAlighted
}

func (r *Rider) board(stop int) {
	r.State = RiderBoarded
	r.BoardedAt = stop
}

func (r *Rider) alight() {
	r.State = RiderAlighted
	r.BoardedAt = -1
}

// This method returns a human-readable string representation of a Rider.
func (r Rider) String() string {
	return fmt.Sprintf("Rider: (ID: %s, Kind: %s, State: %s, Stop: %d)", r.ID, r.Kind, r.State, r.Stop)
}
