package testutil

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestWaitForMetric(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if hits.Add(1) < 3 {
			fmt.Fprintln(w, "# nothing yet")
			return
		}
		fmt.Fprintln(w, `powerplan_solves_total{outcome="ok",strategy="golden_path"} 1`)
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), MetricTimeout)
	defer cancel()
	if err := WaitForMetric(ctx, srv.URL, "powerplan_solves_total"); err != nil {
		t.Fatalf("wait: %v", err)
	}
	if hits.Load() < 3 {
		t.Fatalf("expected polling, got %d hits", hits.Load())
	}
}

func TestWaitForHTTP_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	if err := WaitForHTTP(ctx, srv.URL); err == nil {
		t.Fatal("expected timeout")
	}
}
