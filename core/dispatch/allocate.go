package dispatch

import (
	"context"
	"fmt"
	"math"

	"github.com/kilianp07/powerplan/core/interval"
	"github.com/kilianp07/powerplan/core/model"
)

// DistributeTier splits a tier load among equal-cost units. It picks the
// first unit subset, in binary counter order, whose members can run
// together at the load, runs them at their minimum and then raises them in
// list order until the load is met. Units outside the subset are off.
// Allocations are returned in the order of units.
func DistributeTier(load float64, units []model.Unit) ([]model.Allocation, error) {
	return distributeTier(context.Background(), load, units, &budget{})
}

// distributeTier is DistributeTier charging one unit of b per subset
// examined. It stops when ctx is done or b runs out.
func distributeTier(ctx context.Context, load float64, units []model.Unit, b *budget) ([]model.Allocation, error) {
	out := make([]model.Allocation, len(units))
	for i, u := range units {
		out[i] = u.Off()
	}
	load = model.Round1(load)
	if load == 0 {
		return out, nil
	}
	for subset := range interval.Subsets(len(units)) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := b.take(1); err != nil {
			return nil, fmt.Errorf("distribute %.1f MW over %d units: %w", load, len(units), err)
		}
		power, ok := distributeSubset(load, subset, units)
		if !ok {
			continue
		}
		for k, i := range subset {
			a, err := units[i].Allocate(power[k])
			if err != nil {
				return nil, fmt.Errorf("distribute %.1f MW: %w", load, err)
			}
			out[i] = a
		}
		return out, nil
	}
	return nil, fmt.Errorf("distribute %.1f MW over %d units: %w", load, len(units), ErrNoFeasibleCombination)
}

// distributeSubset runs every member of subset at its minimum and sweeps
// the rest of load into them in order. Outputs stay on the 0.1 MW grid.
func distributeSubset(load float64, subset []int, units []model.Unit) ([]float64, bool) {
	var lo, hi float64
	for _, i := range subset {
		lo += units[i].Range.Lo
		hi += units[i].Range.Hi
	}
	if !(interval.Interval{Lo: lo, Hi: hi}).Contains(load) {
		return nil, false
	}

	power := make([]float64, len(subset))
	remaining := load
	for k, i := range subset {
		power[k] = model.Round1(units[i].Range.Lo)
		remaining = model.Round1(remaining - power[k])
	}
	if remaining < 0 {
		return nil, false
	}
	for k, i := range subset {
		if remaining < minFloor {
			break
		}
		step := math.Min(remaining, model.Round1(units[i].Range.Span()))
		power[k] = model.Round1(power[k] + step)
		remaining = model.Round1(remaining - step)
	}
	if remaining != 0 {
		return nil, false
	}
	return power, true
}
