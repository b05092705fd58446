package planlog

import (
	"context"
	"time"

	"github.com/kilianp07/powerplan/core/events"
	"github.com/kilianp07/powerplan/core/model"
)

// Record captures one solve, successful or not.
type Record struct {
	PlanID       string             `json:"plan_id"`
	Timestamp    time.Time          `json:"timestamp"`
	Load         float64            `json:"load"`
	WindPct      float64            `json:"wind_pct"`
	Strategy     string             `json:"strategy,omitempty"`
	Allocations  []model.Allocation `json:"allocations,omitempty"`
	Cost         float64            `json:"cost"`
	LowerBound   float64            `json:"lower_bound"`
	Combinations int                `json:"combinations,omitempty"`
	DurationMS   float64            `json:"duration_ms"`
	Error        string             `json:"error,omitempty"`
}

// FromEvent converts a PlanEvent into a Record.
func FromEvent(ev events.PlanEvent) Record {
	r := Record{
		PlanID:       ev.PlanID,
		Timestamp:    ev.Time,
		Load:         ev.Load,
		WindPct:      ev.WindPct,
		Strategy:     ev.Strategy,
		Allocations:  ev.Allocations,
		Cost:         ev.Cost,
		LowerBound:   ev.LowerBound,
		Combinations: ev.Combinations,
		DurationMS:   float64(ev.Duration.Microseconds()) / 1000,
	}
	if ev.Err != nil {
		r.Error = ev.Err.Error()
	}
	return r
}

// Query defines filters for retrieving records. Zero values match
// everything.
type Query struct {
	Start time.Time
	End   time.Time
	// Plant keeps plans giving a non-zero output to the named plant.
	Plant    string
	Strategy string
	// FailedOnly keeps plans that ended with an error.
	FailedOnly bool
	// Limit keeps only the most recent records when positive.
	Limit int
}

// Match reports whether r passes every filter of q except Limit.
func (q Query) Match(r Record) bool {
	if !q.Start.IsZero() && r.Timestamp.Before(q.Start) {
		return false
	}
	if !q.End.IsZero() && r.Timestamp.After(q.End) {
		return false
	}
	if q.Strategy != "" && r.Strategy != q.Strategy {
		return false
	}
	if q.FailedOnly && r.Error == "" {
		return false
	}
	if q.Plant != "" {
		for _, a := range r.Allocations {
			if a.Name == q.Plant && a.P > 0 {
				return true
			}
		}
		return false
	}
	return true
}

func (q Query) limit(recs []Record) []Record {
	if q.Limit > 0 && len(recs) > q.Limit {
		return recs[len(recs)-q.Limit:]
	}
	return recs
}

// Store persists Records and supports querying.
type Store interface {
	Append(ctx context.Context, rec Record) error
	Query(ctx context.Context, q Query) ([]Record, error)
	Close() error
}
