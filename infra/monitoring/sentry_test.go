package monitoring

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/getsentry/sentry-go"

	"github.com/kilianp07/powerplan/config"
	coremon "github.com/kilianp07/powerplan/core/monitoring"
)

func TestNewSentryMonitor_NoDSN(t *testing.T) {
	m, err := NewSentryMonitor(config.SentryConfig{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := m.(coremon.NopMonitor); !ok {
		t.Fatalf("expected NopMonitor, got %T", m)
	}
}

func TestNewSentryMonitor_InvalidDSN(t *testing.T) {
	if _, err := NewSentryMonitor(config.SentryConfig{DSN: "not a dsn"}); err == nil {
		t.Fatal("expected dsn error")
	}
}

func TestSentryMonitor_Capture(t *testing.T) {
	m, err := NewSentryMonitor(config.SentryConfig{DSN: "https://public@example.com/1", Environment: "test"})
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	m.CaptureException(nil, nil)
	if _, ok := m.(*sentryMonitor); !ok {
		t.Fatalf("expected sentry monitor, got %T", m)
	}
}

func TestSentryMonitor_TagsStayPerCapture(t *testing.T) {
	var (
		mu   sync.Mutex
		seen = map[string]map[string]string{}
	)
	client, err := sentry.NewClient(sentry.ClientOptions{
		Dsn: "https://public@example.com/1",
		BeforeSend: func(ev *sentry.Event, _ *sentry.EventHint) *sentry.Event {
			mu.Lock()
			defer mu.Unlock()
			if len(ev.Exception) > 0 {
				seen[ev.Exception[0].Value] = ev.Tags
			}
			return nil
		},
	})
	if err != nil {
		t.Fatalf("client: %v", err)
	}
	m := &sentryMonitor{hub: sentry.NewHub(client, sentry.NewScope())}

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			m.CaptureException(fmt.Errorf("err %d", i), map[string]string{"plant": fmt.Sprintf("p%d", i)})
		}(i)
	}
	wg.Wait()
	m.CaptureException(errors.New("untagged"), nil)

	mu.Lock()
	defer mu.Unlock()
	if len(seen) != 21 {
		t.Fatalf("expected 21 events, got %d", len(seen))
	}
	for i := 0; i < 20; i++ {
		tags := seen[fmt.Sprintf("err %d", i)]
		if tags["plant"] != fmt.Sprintf("p%d", i) {
			t.Fatalf("event %d carries tags %v", i, tags)
		}
	}
	if _, ok := seen["untagged"]["plant"]; ok {
		t.Fatalf("tags leaked into the shared scope: %v", seen["untagged"])
	}
}
