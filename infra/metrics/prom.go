package metrics

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	coremetrics "github.com/kilianp07/powerplan/core/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PromSink records solver activity in Prometheus metrics.
type PromSink struct {
	solves       *prometheus.CounterVec
	latency      *prometheus.HistogramVec
	combinations prometheus.Counter
	tiers        prometheus.Gauge
	gap          prometheus.Gauge
	output       *prometheus.GaugeVec
}

// NewPromSink registers solver metrics on the default Prometheus registerer.
// The Prometheus server should be started separately using cfg.PrometheusPort.
func NewPromSink(cfg coremetrics.Config) (coremetrics.MetricsSink, error) {
	s, err := NewPromSinkWithRegistry(cfg, prometheus.DefaultRegisterer)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(_ coremetrics.Config, reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	solves, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "powerplan_solves_total",
		Help: "Total number of production plan requests by strategy and outcome",
	}, []string{"strategy", "outcome"}))
	if err != nil {
		return nil, err
	}
	latency, err := register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "powerplan_solve_duration_seconds",
		Help:    "Time spent computing a production plan",
		Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10),
	}, []string{"strategy"}))
	if err != nil {
		return nil, err
	}
	combinations, err := register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "powerplan_fallback_combinations_total",
		Help: "Number of tier combinations evaluated by the fallback search",
	}))
	if err != nil {
		return nil, err
	}
	tiers, err := register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "powerplan_last_tiers",
		Help: "Number of cost tiers in the last request",
	}))
	if err != nil {
		return nil, err
	}
	gap, err := register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "powerplan_last_cost_gap_euros",
		Help: "Difference between the last plan cost and its LP lower bound",
	}))
	if err != nil {
		return nil, err
	}
	output, err := register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "powerplan_plant_output_mw",
		Help: "Power assigned to each plant by the last successful plan",
	}, []string{"plant", "type"}))
	if err != nil {
		return nil, err
	}
	return &PromSink{
		solves:       solves,
		latency:      latency,
		combinations: combinations,
		tiers:        tiers,
		gap:          gap,
		output:       output,
	}, nil
}

// register adds c to reg, reusing the collector already registered under
// the same descriptor.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// RecordSolve updates counters and the latency histogram.
func (s *PromSink) RecordSolve(ev coremetrics.SolveEvent) error {
	strategy := ev.Strategy
	if strategy == "" {
		strategy = "none"
	}
	s.solves.WithLabelValues(strategy, ev.Outcome).Inc()
	s.latency.WithLabelValues(strategy).Observe(ev.Duration.Seconds())
	s.combinations.Add(float64(ev.Combinations))
	s.tiers.Set(float64(ev.Tiers))
	if ev.Outcome == coremetrics.OutcomeOK {
		s.gap.Set(ev.Cost - ev.LowerBound)
	}
	return nil
}

// RecordAllocations sets the output gauge of every allocated plant.
func (s *PromSink) RecordAllocations(evs []coremetrics.AllocationEvent) error {
	for _, ev := range evs {
		s.output.WithLabelValues(ev.Plant, ev.Type).Set(ev.PowerMW)
	}
	return nil
}

// StartPromServer serves the default registry on /metrics until ctx is done.
func StartPromServer(ctx context.Context, port int) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
