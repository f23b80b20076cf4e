package trace

// TraceSummary aggregates statistics from a SimulationTrace.
type TraceSummary struct {
	TotalBoardings   int
	PaidBoardings    int
	PassBoardings    int
	EvadedBoardings  int
	RefusedBoardings int
	FareRevenue      int
	Inspections      int
	Ticketless       int
	FineRevenue      int
	Escalations      int
	OutcomeCounts    map[string]int // inspection outcome → count
}

// Summarize computes aggregate statistics from a SimulationTrace.
// Safe for nil or empty traces (returns zero-value fields).
func Summarize(st *SimulationTrace) *TraceSummary {
	summary := &TraceSummary{
		OutcomeCounts: make(map[string]int),
	}
	if st == nil {
		return summary
	}

	summary.TotalBoardings = len(st.Boardings)
	for _, b := range st.Boardings {
		switch {
		case b.Evaded:
			summary.EvadedBoardings++
		case b.Result != "success":
			summary.RefusedBoardings++
		case b.UsedPass:
			summary.PassBoardings++
		default:
			summary.PaidBoardings++
			summary.FareRevenue += b.Fare
		}
	}

	summary.Inspections = len(st.Inspections)
	for _, r := range st.Inspections {
		summary.OutcomeCounts[r.Outcome]++
		if r.Outcome == "ticketless" {
			summary.Ticketless++
		}
		summary.FineRevenue += r.Fine
		if r.Escalated {
			summary.Escalations++
		}
	}

	return summary
}
