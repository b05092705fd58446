package metrics

import "time"

// Solve outcomes used as metric labels.
const (
	OutcomeOK            = "ok"
	OutcomeInvalid       = "invalid"
	OutcomeInfeasible    = "infeasible"
	OutcomeNoCombination = "no_combination"
	OutcomeBudget        = "budget_exceeded"
	OutcomeCanceled      = "canceled"
)

// SolveEvent summarises one run of the dispatch engine.
type SolveEvent struct {
	PlanID       string
	Strategy     string
	Outcome      string
	Load         float64
	Cost         float64
	LowerBound   float64
	Plants       int
	Tiers        int
	Combinations int
	Duration     time.Duration
	Time         time.Time
}

// MetricsSink records solver activity for observability purposes.
type MetricsSink interface {
	RecordSolve(ev SolveEvent) error
}

// AllocationEvent is the output a plan assigns to one plant.
type AllocationEvent struct {
	PlanID  string
	Plant   string
	Type    string
	PowerMW float64
	// CostPerMWh is the marginal cost of the plant.
	CostPerMWh float64
	Time       time.Time
}

// AllocationRecorder records per-plant outputs of successful plans.
type AllocationRecorder interface {
	RecordAllocations(evs []AllocationEvent) error
}

// NopSink is a MetricsSink that discards all events.
type NopSink struct{}

func (NopSink) RecordSolve(SolveEvent) error              { return nil }
func (NopSink) RecordAllocations([]AllocationEvent) error { return nil }
