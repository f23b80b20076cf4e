// Package sim provides the simulation core of one scheduled loop line.
//
// # Reading Guide
//
// Start with these files to understand the core:
//   - vehicle.go: the Inactive/AtStop/Travelling/Skipping state machine and the Update loop
//   - boarding.go: player boarding, fare evasion, flagging and the pass
//   - inspector.go: the per-run ticket inspector and its bribe/confront paths
//   - queue.go: bounded FIFO stop queues
//
// # Time
//
// The vehicle never reads a wall clock. Update consumes caller-supplied real
// seconds, converted to integer microsecond ticks, and fires transitions in
// order until the delta is spent. Slicing the same total time differently
// therefore reaches every boundary at the same tick.
//
// # Collaborators
//
// Money, reputation, criminal records, achievements and pursuit live outside
// this package behind the small interfaces in collaborators.go. All are
// mandatory constructor arguments; the Nop types stand in where a caller
// does not care. Concrete implementations live in sim/ledger.
//
// Sub-packages:
//   - sim/clock/: accelerated simulated clock
//   - sim/ledger/: wallet, reputation, criminal record, achievements, pursuit
//   - sim/workload/: rider arrival generation
//   - sim/trace/: decision trace recording
package sim
