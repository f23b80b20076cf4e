package trace

import (
	"testing"
)

func TestSimulationTrace_RecordBoarding_AppendsRecord(t *testing.T) {
	// GIVEN a trace configured for decisions
	st := NewSimulationTrace(TraceConfig{Level: TraceLevelDecisions})

	// WHEN a boarding record is recorded
	st.RecordBoarding(BoardingRecord{
		Clock:  1000,
		Stop:   2,
		Result: "success",
		Fare:   3,
	})

	// THEN the trace contains one boarding record with correct data
	if len(st.Boardings) != 1 {
		t.Fatalf("expected 1 boarding, got %d", len(st.Boardings))
	}
	if st.Boardings[0].Stop != 2 {
		t.Errorf("expected stop 2, got %d", st.Boardings[0].Stop)
	}
	if st.Boardings[0].Fare != 3 {
		t.Errorf("expected fare 3, got %d", st.Boardings[0].Fare)
	}
}

func TestSimulationTrace_RecordInspection_AppendsRecord(t *testing.T) {
	// GIVEN a trace configured for decisions
	st := NewSimulationTrace(TraceConfig{Level: TraceLevelDecisions})

	// WHEN an inspection record is recorded
	st.RecordInspection(InspectionRecord{
		Clock:     2000,
		Stop:      1,
		Outcome:   "ticketless",
		Fine:      50,
		Escalated: true,
	})

	// THEN the trace contains one inspection record with correct data
	if len(st.Inspections) != 1 {
		t.Fatalf("expected 1 inspection, got %d", len(st.Inspections))
	}
	if st.Inspections[0].Outcome != "ticketless" {
		t.Errorf("expected outcome ticketless, got %s", st.Inspections[0].Outcome)
	}
	if !st.Inspections[0].Escalated {
		t.Error("expected escalated=true")
	}
}

func TestSimulationTrace_MultipleRecords_PreservesOrder(t *testing.T) {
	// GIVEN a trace
	st := NewSimulationTrace(TraceConfig{Level: TraceLevelDecisions})

	// WHEN multiple records are added
	st.RecordBoarding(BoardingRecord{Clock: 100, Stop: 0, Result: "success"})
	st.RecordBoarding(BoardingRecord{Clock: 200, Stop: 3, Result: "insufficient_funds"})
	st.RecordInspection(InspectionRecord{Clock: 150, Stop: 0, Outcome: "valid"})

	// THEN order is preserved
	if len(st.Boardings) != 2 {
		t.Fatalf("expected 2 boardings, got %d", len(st.Boardings))
	}
	if st.Boardings[0].Clock != 100 || st.Boardings[1].Clock != 200 {
		t.Error("boarding order not preserved")
	}
	if len(st.Inspections) != 1 || st.Inspections[0].Outcome != "valid" {
		t.Error("inspection record mismatch")
	}
}

func TestSimulationTrace_Enabled(t *testing.T) {
	var nilTrace *SimulationTrace
	if nilTrace.Enabled() {
		t.Error("nil trace must report disabled")
	}
	if NewSimulationTrace(TraceConfig{Level: TraceLevelNone}).Enabled() {
		t.Error("level none must report disabled")
	}
	if !NewSimulationTrace(TraceConfig{Level: TraceLevelDecisions}).Enabled() {
		t.Error("level decisions must report enabled")
	}
}

func TestIsValidTraceLevel_ValidLevels(t *testing.T) {
	tests := []struct {
		level string
		valid bool
	}{
		{"none", true},
		{"decisions", true},
		{"", true}, // empty defaults to none
		{"detailed", false},
		{"foobar", false},
		{"NONE", false}, // case-sensitive
	}
	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			if got := IsValidTraceLevel(tt.level); got != tt.valid {
				t.Errorf("IsValidTraceLevel(%q) = %v, want %v", tt.level, got, tt.valid)
			}
		})
	}
}
