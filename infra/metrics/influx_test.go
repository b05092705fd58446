package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/kilianp07/powerplan/core/metrics"
)

func bodyRecorder(t *testing.T) (*httptest.Server, func() []string) {
	t.Helper()
	var (
		mu     sync.Mutex
		bodies []string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		mu.Lock()
		bodies = append(bodies, strings.TrimSpace(string(data)))
		mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(srv.Close)
	return srv, func() []string {
		mu.Lock()
		defer mu.Unlock()
		return append([]string(nil), bodies...)
	}
}

func TestInfluxSink_RecordSolve(t *testing.T) {
	srv, bodies := bodyRecorder(t)
	sink := NewInfluxSink(InfluxConfig{URL: srv.URL, Token: "token", Org: "org", Bucket: "bucket"})
	defer sink.Close()

	now := time.Now()
	ev := coremetrics.SolveEvent{
		PlanID:     "p1",
		Strategy:   "golden_path",
		Outcome:    coremetrics.OutcomeOK,
		Load:       480,
		Cost:       12134.4,
		LowerBound: 12134.4,
		Plants:     6,
		Tiers:      4,
		Duration:   1500 * time.Microsecond,
		Time:       now,
	}
	if err := sink.RecordSolve(ev); err != nil {
		t.Fatalf("record error: %v", err)
	}
	p := write.NewPointWithMeasurement("plan_solve").
		AddTag("strategy", "golden_path").
		AddTag("outcome", "ok").
		AddTag("plan_id", "p1").
		AddField("load_mw", 480.0).
		AddField("cost_eur", 12134.4).
		AddField("lower_bound_eur", 12134.4).
		AddField("plants", 6).
		AddField("tiers", 4).
		AddField("combinations", 0).
		AddField("duration_ms", 1.5).
		SetTime(now)
	expected := strings.TrimSpace(write.PointToLineProtocol(p, time.Nanosecond))
	got := bodies()
	if len(got) != 1 || got[0] != expected {
		t.Errorf("unexpected bodies: %#v", got)
	}
}

func TestInfluxSink_RecordAllocations(t *testing.T) {
	srv, bodies := bodyRecorder(t)
	sink := NewInfluxSink(InfluxConfig{URL: srv.URL + "/api/v2/write", Token: "token", Org: "org", Bucket: "bucket"})
	defer sink.Close()

	now := time.Now()
	evs := []coremetrics.AllocationEvent{
		{PlanID: "p1", Plant: "gasfiredbig1", Type: "gasfired", PowerMW: 380, CostPerMWh: 25.14 / 0.53, Time: now},
		{PlanID: "p1", Plant: "windpark1", Type: "windturbine", PowerMW: 90, Time: now},
	}
	if err := sink.RecordAllocations(evs); err != nil {
		t.Fatalf("record error: %v", err)
	}
	got := bodies()
	if len(got) != 2 {
		t.Fatalf("expected 2 writes, got %d", len(got))
	}
	p := write.NewPointWithMeasurement("plant_output").
		AddTag("plant", "windpark1").
		AddTag("type", "windturbine").
		AddTag("plan_id", "p1").
		AddField("power_mw", 90.0).
		AddField("cost_per_mwh", 0.0).
		SetTime(now)
	if exp := strings.TrimSpace(write.PointToLineProtocol(p, time.Nanosecond)); got[1] != exp {
		t.Errorf("unexpected body: %s", got[1])
	}
	if !strings.HasPrefix(got[0], "plant_output,") || !strings.Contains(got[0], "plant=gasfiredbig1") || !strings.Contains(got[0], "power_mw=380") {
		t.Errorf("unexpected body: %s", got[0])
	}
}

func TestNewInfluxSinkWithFallback(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			called = true
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
	}))
	defer srv.Close()

	sink := NewInfluxSinkWithFallback(InfluxConfig{URL: srv.URL + "/api/v2/write", Token: "tok", Org: "org", Bucket: "bucket"})
	if _, ok := sink.(*InfluxSink); ok {
		t.Fatalf("expected NopSink on failing health check")
	}
	if !called {
		t.Fatalf("health endpoint not called")
	}
}

func TestFactory_Builtins(t *testing.T) {
	for _, name := range []string{"nop", "prometheus", "influx"} {
		noop := func(map[string]any) (coremetrics.MetricsSink, error) { return coremetrics.NopSink{}, nil }
		if err := coremetrics.RegisterMetricsSink(name, noop); err == nil {
			t.Errorf("%s should already be registered", name)
		}
	}
}
