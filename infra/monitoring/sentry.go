package monitoring

import (
	"fmt"
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/kilianp07/powerplan/config"
	coremon "github.com/kilianp07/powerplan/core/monitoring"
)

// NewSentryMonitor initializes Sentry using the provided configuration and
// returns a Monitor implementation.
func NewSentryMonitor(cfg config.SentryConfig) (coremon.Monitor, error) {
	if cfg.DSN == "" {
		return coremon.NopMonitor{}, nil
	}
	client, err := sentry.NewClient(sentry.ClientOptions{
		Dsn:              cfg.DSN,
		Environment:      cfg.Environment,
		TracesSampleRate: cfg.TracesSampleRate,
		Release:          cfg.Release,
		ServerName:       cfg.ServerName,
	})
	if err != nil {
		return nil, fmt.Errorf("sentry: %w", err)
	}
	return &sentryMonitor{hub: sentry.NewHub(client, sentry.NewScope())}, nil
}

type sentryMonitor struct {
	hub *sentry.Hub
}

// withTags runs f on a clone of the hub so concurrent captures never share
// a scope.
func (s *sentryMonitor) withTags(tags map[string]string, f func(*sentry.Hub)) {
	hub := s.hub.Clone()
	if len(tags) > 0 {
		hub.Scope().SetTags(tags)
	}
	f(hub)
}

func (s *sentryMonitor) CaptureException(err error, tags map[string]string) {
	if err == nil {
		return
	}
	s.withTags(tags, func(h *sentry.Hub) { h.CaptureException(err) })
}

func (s *sentryMonitor) CapturePanic(v any, tags map[string]string) {
	s.withTags(tags, func(h *sentry.Hub) { h.Recover(v) })
}

func (s *sentryMonitor) Flush(timeout time.Duration) { s.hub.Flush(timeout) }
