package plans

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/kilianp07/powerplan/core/model"
	"github.com/kilianp07/powerplan/core/planlog"
)

func seededStore(t *testing.T) planlog.Store {
	t.Helper()
	store, err := planlog.NewJSONLStore(filepath.Join(t.TempDir(), "plans.jsonl"))
	if err != nil {
		t.Fatalf("store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	recs := []planlog.Record{
		{PlanID: "a", Timestamp: base, Strategy: "golden_path", Allocations: []model.Allocation{{Name: "windpark1", P: 90}}},
		{PlanID: "b", Timestamp: base.Add(time.Hour), Strategy: "brute_force", Allocations: []model.Allocation{{Name: "tj1", P: 16}}},
		{PlanID: "c", Timestamp: base.Add(2 * time.Hour), Error: "unable to distribute load, no solution found"},
	}
	for _, r := range recs {
		if err := store.Append(context.Background(), r); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	return store
}

func get(h http.Handler, target, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestLogHandler_AuthAndFilters(t *testing.T) {
	h := NewLogHandler(seededStore(t), "tok")

	cases := []struct {
		target string
		want   []string
	}{
		{"/api/plans/logs", []string{"a", "b", "c"}},
		{"/api/plans/logs?plant=windpark1", []string{"a"}},
		{"/api/plans/logs?strategy=brute_force", []string{"b"}},
		{"/api/plans/logs?failed=true", []string{"c"}},
		{"/api/plans/logs?start=2024-03-01T12:30:00Z", []string{"b", "c"}},
		{"/api/plans/logs?end=2024-03-01T12:30:00Z", []string{"a"}},
		{"/api/plans/logs?limit=1", []string{"c"}},
		{"/api/plans/logs?plant=nope", []string{}},
	}
	for _, c := range cases {
		rr := get(h, c.target, "tok")
		if rr.Code != http.StatusOK {
			t.Fatalf("%s: status %d", c.target, rr.Code)
		}
		var out []planlog.Record
		if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
			t.Fatalf("%s: unmarshal: %v", c.target, err)
		}
		ids := make([]string, 0, len(out))
		for _, r := range out {
			ids = append(ids, r.PlanID)
		}
		if len(ids) != len(c.want) {
			t.Fatalf("%s: got %v want %v", c.target, ids, c.want)
		}
		for i := range ids {
			if ids[i] != c.want[i] {
				t.Fatalf("%s: got %v want %v", c.target, ids, c.want)
			}
		}
	}

	// unauthorized
	if rr := get(h, "/api/plans/logs", ""); rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rr.Code)
	}
	if rr := get(h, "/api/plans/logs", "wrong"); rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rr.Code)
	}
}

func TestLogHandler_BadQuery(t *testing.T) {
	h := NewLogHandler(seededStore(t), "")
	for _, target := range []string{
		"/api/plans/logs?start=yesterday",
		"/api/plans/logs?failed=maybe",
		"/api/plans/logs?limit=ten",
	} {
		if rr := get(h, target, ""); rr.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400 got %d", target, rr.Code)
		}
	}
	req := httptest.NewRequest(http.MethodPost, "/api/plans/logs", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405 got %d", rr.Code)
	}
}
