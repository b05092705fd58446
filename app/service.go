package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/kilianp07/powerplan/api/plans"
	"github.com/kilianp07/powerplan/api/productionplan"
	"github.com/kilianp07/powerplan/config"
	"github.com/kilianp07/powerplan/core/dispatch"
	"github.com/kilianp07/powerplan/core/events"
	coremetrics "github.com/kilianp07/powerplan/core/metrics"
	coremon "github.com/kilianp07/powerplan/core/monitoring"
	coremqtt "github.com/kilianp07/powerplan/core/mqtt"
	"github.com/kilianp07/powerplan/core/planlog"
	"github.com/kilianp07/powerplan/infra/logger"
	"github.com/kilianp07/powerplan/infra/metrics"
	inframon "github.com/kilianp07/powerplan/infra/monitoring"
	"github.com/kilianp07/powerplan/infra/mqtt"
	"github.com/kilianp07/powerplan/internal/eventbus"
)

// Service wires the dispatch engine to its HTTP API, plan log, metrics
// and setpoint publication.
type Service struct {
	Engine *dispatch.Engine
	Store  planlog.Store

	cfg       *config.Config
	bus       *eventbus.Bus[events.PlanEvent]
	logSub    <-chan events.PlanEvent
	mqttSub   <-chan events.PlanEvent
	publisher coremqtt.SetpointPublisher
	client    *mqtt.PahoClient
	log       logger.Logger

	mu   sync.Mutex
	addr net.Addr
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	logg := logger.New("service")

	mon, err := inframon.NewSentryMonitor(cfg.Sentry)
	if err != nil {
		return nil, fmt.Errorf("sentry: %w", err)
	}
	coremon.Init(mon)

	sink, err := coremetrics.NewMetricsSink(cfg.Metrics.Sinks)
	if err != nil {
		return nil, fmt.Errorf("metrics sink: %w", err)
	}

	store, err := planlog.NewStore(cfg.Logging.Module())
	if err != nil {
		return nil, fmt.Errorf("plan log: %w", err)
	}

	bus := eventbus.New[events.PlanEvent](64)
	svc := &Service{
		Engine: dispatch.NewEngine(cfg.Engine, logger.New("engine"), sink, bus),
		Store:  store,
		cfg:    cfg,
		bus:    bus,
		logSub: bus.Subscribe(),
		log:    logg,
	}
	if cfg.MQTT.Enabled {
		client, err := mqtt.NewPahoClient(cfg.MQTT)
		if err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("mqtt client: %w", err)
		}
		svc.client = client
		svc.publisher = client
		svc.mqttSub = bus.Subscribe()
	}
	return svc, nil
}

// Handler returns the HTTP routes of the service.
func (s *Service) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/productionplan", productionplan.NewHandler(s.Engine, s.cfg.Server.RequestTimeout(), logger.New("api")))
	mux.Handle("/api/plans/logs", plans.NewLogHandler(s.Store, s.cfg.Server.Token))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return productionplan.Recoverer(mux)
}

// Addr returns the listening address once Run has started.
func (s *Service) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addr
}

// Run starts the service and blocks until the context is cancelled.
func (s *Service) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		planlog.Run(ctx, s.logSub, s.Store, logger.New("planlog"))
	}()
	if s.publisher != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			mqtt.ForwardPlans(ctx, s.mqttSub, s.publisher, s.cfg.MQTT.AckTimeout(), logger.New("setpoints"))
		}()
	}
	if port := s.cfg.Metrics.PrometheusPort; port > 0 {
		go func() {
			if err := metrics.StartPromServer(ctx, port); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}

	ln, err := net.Listen("tcp", s.cfg.Server.Address)
	if err != nil {
		cancel()
		wg.Wait()
		return fmt.Errorf("listen %s: %w", s.cfg.Server.Address, err)
	}
	s.mu.Lock()
	s.addr = ln.Addr()
	s.mu.Unlock()

	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()
	s.log.Infof("listening on %s", ln.Addr())

	select {
	case <-ctx.Done():
		err = nil
	case err = <-errCh:
	}
	shutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	_ = srv.Shutdown(shutdown)
	cancel()
	wg.Wait()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	s.bus.Close()
	if s.client != nil {
		s.client.Disconnect()
	}
	coremon.Current().Flush(coremon.FlushTimeout)
	return s.Store.Close()
}
