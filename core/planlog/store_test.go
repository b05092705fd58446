package planlog

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/powerplan/core/events"
	"github.com/kilianp07/powerplan/core/factory"
	"github.com/kilianp07/powerplan/core/model"
)

func TestRecord_JSON(t *testing.T) {
	rec := Record{
		PlanID:      "id",
		Timestamp:   time.Unix(0, 0),
		Load:        480,
		Strategy:    "golden_path",
		Allocations: []model.Allocation{{Name: "gas1", P: 480}},
		Cost:        12134.4,
	}
	data, err := json.Marshal(rec)
	require.NoError(t, err)
	var m map[string]any
	require.NoError(t, json.Unmarshal(data, &m))
	for _, k := range []string{"plan_id", "timestamp", "load", "wind_pct", "strategy", "allocations", "cost", "lower_bound", "duration_ms"} {
		assert.Contains(t, m, k)
	}
	assert.NotContains(t, m, "error")
}

func TestFromEvent(t *testing.T) {
	now := time.Now()
	rec := FromEvent(events.PlanEvent{
		PlanID:   "x",
		Time:     now,
		Load:     20,
		Duration: 1500 * time.Microsecond,
		Err:      errors.New("unable to distribute load"),
	})
	assert.Equal(t, "x", rec.PlanID)
	assert.Equal(t, 1.5, rec.DurationMS)
	assert.Equal(t, "unable to distribute load", rec.Error)
	assert.True(t, rec.Timestamp.Equal(now))
}

func TestQueryMatch(t *testing.T) {
	rec := Record{
		Timestamp:   time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		Strategy:    "brute_force",
		Allocations: []model.Allocation{{Name: "gas1", P: 70}, {Name: "gas2", P: 0}},
	}
	cases := []struct {
		name string
		q    Query
		want bool
	}{
		{"empty", Query{}, true},
		{"plant running", Query{Plant: "gas1"}, true},
		{"plant off", Query{Plant: "gas2"}, false},
		{"unknown plant", Query{Plant: "tj1"}, false},
		{"strategy", Query{Strategy: "golden_path"}, false},
		{"failed only", Query{FailedOnly: true}, false},
		{"before start", Query{Start: rec.Timestamp.Add(time.Second)}, false},
		{"after end", Query{End: rec.Timestamp.Add(-time.Second)}, false},
		{"window", Query{Start: rec.Timestamp, End: rec.Timestamp}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.q.Match(rec))
		})
	}
}

func TestJSONLStore_AppendQuery(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plans.jsonl")
	store, err := NewJSONLStore(path)
	require.NoError(t, err)
	ctx := context.Background()
	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, store.Append(ctx, Record{PlanID: id, Timestamp: time.Now()}))
	}
	out, err := store.Query(ctx, Query{Limit: 2})
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "b", out[0].PlanID)
	assert.Equal(t, "c", out[1].PlanID)
	require.NoError(t, store.Close())
}

func TestNewStore_Builtins(t *testing.T) {
	assert.Equal(t, []string{"jsonl", "jsonl_rotating", "sqlite"}, Backends())

	path := filepath.Join(t.TempDir(), "plans.jsonl")
	s, err := NewStore(factory.ModuleConfig{Type: "jsonl", Conf: map[string]any{"path": path}})
	require.NoError(t, err)
	_, ok := s.(*JSONLStore)
	assert.True(t, ok)

	_, err = NewStore(factory.ModuleConfig{Type: "postgres"})
	assert.ErrorIs(t, err, factory.ErrUnknownType)
}

func TestRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plans.jsonl")
	store, err := NewJSONLStore(path)
	require.NoError(t, err)

	sub := make(chan events.PlanEvent, 2)
	sub <- events.PlanEvent{PlanID: "ok", Time: time.Now(), Strategy: "golden_path"}
	sub <- events.PlanEvent{PlanID: "ko", Time: time.Now(), Err: errors.New("boom")}
	close(sub)

	Run(context.Background(), sub, store, nil)

	out, err := store.Query(context.Background(), Query{})
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "boom", out[1].Error)
}
