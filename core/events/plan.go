package events

import (
	"time"

	"github.com/kilianp07/powerplan/core/model"
)

// PlanEvent is published after every solve, successful or not. Err is set
// when no plan could be produced; Allocations is then empty.
type PlanEvent struct {
	PlanID       string
	Time         time.Time
	Load         float64
	WindPct      float64
	Strategy     string
	Allocations  []model.Allocation
	Cost         float64
	LowerBound   float64
	Combinations int
	Duration     time.Duration
	Err          error
}
