// Tracks line-wide counters such as runs completed, riders carried, fares
// collected and enforcement outcomes.

package sim

import "fmt"

// Metrics aggregates statistics about the simulation
// for final reporting. Useful for evaluating timetable and fare settings.
type Metrics struct {
	Runs             int // Runs started
	CompletedRuns    int // Runs that reached the end of the loop
	StopsServed      int // Arrivals that turned into an AtStop phase
	StopsSkipped     int // Skipping phases entered
	Boardings        int // Managed riders boarded
	Alightings       int // Managed riders alighted, including forced alights at despawn
	RejectedEnqueues int // Arrivals turned away by a full stop queue

	PlayerRides     int // Player boardings of any kind
	PassRides       int // Player boardings covered by a pass
	FaresCollected  int // Sum of fares debited
	Evasions        int // Open fare evasions
	Refusals        int // Flagged boardings refused for lack of funds
	Inspections     int // Ticket checks performed
	FailedChecks    int // Checks that found no valid ticket
	FinesCollected  int // Sum of fines actually debited
	Bribes          int
	Confrontations  int
	Disturbances    int
	MissedVehicles  int
	WantedEscalated int

	ElapsedTicks int64 // Total simulated real time
}

// NewMetrics returns zeroed metrics.
func NewMetrics() *Metrics {
	return &Metrics{}
}

// Print displays aggregated metrics at the end of the simulation.
func (m *Metrics) Print() {
	fmt.Println("=== Simulation Metrics ===")
	fmt.Printf("Elapsed              : %.1f s\n", ticksToSeconds(m.ElapsedTicks))
	fmt.Printf("Runs                 : %d started, %d completed\n", m.Runs, m.CompletedRuns)
	fmt.Printf("Stops                : %d served, %d skipped\n", m.StopsServed, m.StopsSkipped)
	fmt.Printf("Riders               : %d boarded, %d alighted, %d turned away\n", m.Boardings, m.Alightings, m.RejectedEnqueues)
	if m.CompletedRuns > 0 {
		fmt.Printf("Riders per Run       : %.2f\n", float64(m.Boardings)/float64(m.CompletedRuns))
	}
	fmt.Printf("Player Rides         : %d (%d on pass, %d evaded, %d refused)\n", m.PlayerRides, m.PassRides, m.Evasions, m.Refusals)
	fmt.Printf("Fares Collected      : %d\n", m.FaresCollected)
	fmt.Printf("Inspections          : %d (%d failed, fines %d)\n", m.Inspections, m.FailedChecks, m.FinesCollected)
	fmt.Printf("Bribes / Confronts   : %d / %d\n", m.Bribes, m.Confrontations)
	fmt.Printf("Disturbances         : %d\n", m.Disturbances)
	fmt.Printf("Missed Vehicles      : %d\n", m.MissedVehicles)
	fmt.Printf("Wanted Escalations   : %d\n", m.WantedEscalated)
}
