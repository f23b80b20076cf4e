// Package trace provides decision-trace recording for fare and ticket
// enforcement analysis.
// This package has no dependencies on sim/; it stores pure data types.
package trace

// BoardingRecord captures one attempt by the controlled actor to get on.
type BoardingRecord struct {
	Clock    int64
	Stop     int
	Result   string // board result, e.g. "success", "insufficient_funds"
	Fare     int    // amount debited; 0 for pass rides, evasion and refusals
	UsedPass bool
	Evaded   bool
}

// InspectionRecord captures one ticket check and its consequences.
type InspectionRecord struct {
	Clock     int64
	Stop      int    // stop the journey departed from
	Outcome   string // "valid", "bypass", "incapacitated", "ticketless"
	Fine      int    // amount actually charged; 0 when unaffordable
	Escalated bool   // wanted escalation triggered
}
