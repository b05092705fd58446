package scenarios

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kilianp07/powerplan/core/dispatch"
	"github.com/kilianp07/powerplan/core/events"
	coremetrics "github.com/kilianp07/powerplan/core/metrics"
	"github.com/kilianp07/powerplan/infra/logger"
	"github.com/kilianp07/powerplan/infra/metrics"
	"github.com/kilianp07/powerplan/infra/mqtt"
	"github.com/kilianp07/powerplan/internal/eventbus"
)

func RunScenario(t *testing.T, sc *Scenario) {
	t.Helper()
	reg := prometheus.NewRegistry()
	sink, err := metrics.NewPromSinkWithRegistry(coremetrics.Config{}, reg)
	if err != nil {
		t.Fatalf("prom sink: %v", err)
	}

	pub := mqtt.NewMockPublisher()
	for _, name := range sc.FailPlants {
		pub.FailPlants[name] = true
	}
	for _, name := range sc.NoAck {
		pub.NoAck[name] = true
	}

	bus := eventbus.New[events.PlanEvent](1)
	sub := bus.Subscribe()
	defer bus.Close()

	engine := dispatch.NewEngine(dispatch.Config{}, logger.NopLogger{}, sink, bus)
	req := sc.Request()
	plan, err := engine.Solve(context.Background(), req)

	if got := dispatch.Outcome(err); got != sc.Expected.Outcome {
		t.Fatalf("scenario %s expected outcome %s, got %s (%v)", sc.Name, sc.Expected.Outcome, got, err)
	}
	if n := solveCount(t, reg, sc.Expected.Outcome); n != 1 {
		t.Errorf("scenario %s: %v solves recorded with outcome %s", sc.Name, n, sc.Expected.Outcome)
	}

	var ev events.PlanEvent
	select {
	case ev = <-sub:
	case <-time.After(time.Second):
		t.Fatalf("scenario %s: no plan event", sc.Name)
	}
	rep := mqtt.Dispatch(ev, pub, 10*time.Millisecond, logger.NopLogger{})
	if rep.Acked != sc.Expected.Acked {
		t.Errorf("scenario %s expected %d acked, got %d", sc.Name, sc.Expected.Acked, rep.Acked)
	}
	if err != nil {
		return
	}

	if sc.Expected.Strategy != "" && string(plan.Strategy) != sc.Expected.Strategy {
		t.Errorf("scenario %s expected strategy %s, got %s", sc.Name, sc.Expected.Strategy, plan.Strategy)
	}
	if sc.Expected.Cost != nil && math.Abs(plan.Cost-*sc.Expected.Cost) > 1e-6 {
		t.Errorf("scenario %s expected cost %.2f, got %.2f", sc.Name, *sc.Expected.Cost, plan.Cost)
	}
	total := 0.0
	for _, a := range plan.Allocations {
		total += a.P
		if want, ok := sc.Expected.Allocations[a.Name]; ok && math.Abs(want-a.P) > 1e-9 {
			t.Errorf("scenario %s: %s expected %.1f MW, got %.1f", sc.Name, a.Name, want, a.P)
		}
	}
	if math.Abs(total-req.Load) > 1e-6 {
		t.Errorf("scenario %s: allocations sum to %.1f, want %.1f", sc.Name, total, req.Load)
	}
	if plan.LowerBound > plan.Cost+0.01 {
		t.Errorf("scenario %s: lower bound %.2f above cost %.2f", sc.Name, plan.LowerBound, plan.Cost)
	}
}

func solveCount(t *testing.T, reg *prometheus.Registry, outcome string) float64 {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	var n float64
	for _, mf := range families {
		if mf.GetName() != "powerplan_solves_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, l := range m.GetLabel() {
				if l.GetName() == "outcome" && l.GetValue() == outcome {
					n += m.GetCounter().GetValue()
				}
			}
		}
	}
	return n
}
