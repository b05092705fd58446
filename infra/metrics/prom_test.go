package metrics

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	coremetrics "github.com/kilianp07/powerplan/core/metrics"
)

func TestPromSink_RecordSolve(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSinkWithRegistry(coremetrics.Config{}, reg)
	if err != nil {
		t.Fatalf("create sink: %v", err)
	}
	ok := coremetrics.SolveEvent{
		Strategy:     "golden_path",
		Outcome:      coremetrics.OutcomeOK,
		Cost:         2300,
		LowerBound:   2000,
		Tiers:        2,
		Combinations: 0,
		Duration:     2 * time.Millisecond,
	}
	if err := sink.RecordSolve(ok); err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := sink.RecordSolve(coremetrics.SolveEvent{Outcome: coremetrics.OutcomeInfeasible, Tiers: 3, Combinations: 4}); err != nil {
		t.Fatalf("record: %v", err)
	}

	expected := `
# HELP powerplan_solves_total Total number of production plan requests by strategy and outcome
# TYPE powerplan_solves_total counter
powerplan_solves_total{outcome="infeasible",strategy="none"} 1
powerplan_solves_total{outcome="ok",strategy="golden_path"} 1
`
	if err := testutil.CollectAndCompare(sink.solves, strings.NewReader(expected)); err != nil {
		t.Errorf("unexpected metrics: %v", err)
	}
	if c := testutil.CollectAndCount(sink.latency); c != 2 {
		t.Errorf("latency series = %d, want 2", c)
	}
	if v := testutil.ToFloat64(sink.combinations); v != 4 {
		t.Errorf("combinations = %v, want 4", v)
	}
	if v := testutil.ToFloat64(sink.tiers); v != 3 {
		t.Errorf("tiers = %v, want 3", v)
	}
	// failed solves leave the gap of the last plan untouched
	if v := testutil.ToFloat64(sink.gap); v != 300 {
		t.Errorf("gap = %v, want 300", v)
	}
}

func TestPromSink_RecordAllocations(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSinkWithRegistry(coremetrics.Config{}, reg)
	if err != nil {
		t.Fatalf("create sink: %v", err)
	}
	evs := []coremetrics.AllocationEvent{
		{Plant: "gasfiredbig1", Type: "gasfired", PowerMW: 380},
		{Plant: "windpark1", Type: "windturbine", PowerMW: 90},
	}
	if err := sink.RecordAllocations(evs); err != nil {
		t.Fatalf("record: %v", err)
	}
	expected := `
# HELP powerplan_plant_output_mw Power assigned to each plant by the last successful plan
# TYPE powerplan_plant_output_mw gauge
powerplan_plant_output_mw{plant="gasfiredbig1",type="gasfired"} 380
powerplan_plant_output_mw{plant="windpark1",type="windturbine"} 90
`
	if err := testutil.CollectAndCompare(sink.output, strings.NewReader(expected)); err != nil {
		t.Errorf("unexpected metrics: %v", err)
	}
}

func TestPromSink_ReusesRegisteredCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := NewPromSinkWithRegistry(coremetrics.Config{}, reg)
	if err != nil {
		t.Fatalf("first sink: %v", err)
	}
	second, err := NewPromSinkWithRegistry(coremetrics.Config{}, reg)
	if err != nil {
		t.Fatalf("second sink: %v", err)
	}
	_ = second.RecordSolve(coremetrics.SolveEvent{Strategy: "brute_force", Outcome: coremetrics.OutcomeOK})
	if v := testutil.ToFloat64(first.solves.WithLabelValues("brute_force", "ok")); v != 1 {
		t.Fatalf("shared counter = %v, want 1", v)
	}
}
