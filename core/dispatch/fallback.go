package dispatch

import (
	"context"
	"math"

	"github.com/kilianp07/powerplan/core/interval"
	"github.com/kilianp07/powerplan/core/model"
)

// minFloor is the smallest output a tier must contribute to count as used.
const minFloor = 0.1

// AllNeeded reports whether every tier of subset can run at least at its
// floor (its minimum, or minFloor when lower) while the rest of the load
// still lands in the range left above those floors.
func AllNeeded(load float64, subset []int, ranges []interval.Set) bool {
	remaining := load
	var reduced interval.Set
	for _, t := range subset {
		floor := math.Max(model.Round1(ranges[t].Min()), minFloor)
		remaining = model.Round1(remaining - floor)
		reduced = interval.Sum(reduced, ranges[t].ShiftClampZero(floor))
	}
	return remaining >= 0 && reduced.Contains(remaining)
}

// budget counts sub-interval combinations against a limit. Zero means no
// limit.
type budget struct {
	limit int
	used  int
}

func (b *budget) take(n int) error {
	if n > math.MaxInt-b.used {
		b.used = math.MaxInt
	} else {
		b.used += n
	}
	if b.limit > 0 && b.used > b.limit {
		return ErrSearchBudgetExceeded
	}
	return nil
}

// BruteForce returns the cheapest solution that uses every tier of subset.
// It tries each combination of one sub-interval per tier: every tier first
// gets the minimum of its sub-interval, then the rest of the load is swept
// into the tiers cheapest first. ok is false when no combination fits.
func BruteForce(load float64, subset []int, tiers []Tier, ranges []interval.Set) (TierSolution, bool) {
	sol, ok, _ := bruteForce(load, subset, tiers, ranges, &budget{})
	return sol, ok
}

func bruteForce(load float64, subset []int, tiers []Tier, ranges []interval.Set, b *budget) (TierSolution, bool, error) {
	// Mixed radix over the sub-intervals of each tier, subset[0] varying
	// fastest.
	radix := make([]int, len(subset))
	combinations := 1
	for k, t := range subset {
		radix[k] = len(ranges[t])
		if radix[k] == 0 {
			return TierSolution{}, false, nil
		}
		if combinations > math.MaxInt/radix[k] {
			combinations = math.MaxInt
		} else {
			combinations *= radix[k]
		}
	}
	if err := b.take(combinations); err != nil {
		return TierSolution{}, false, err
	}

	var (
		best  TierSolution
		found bool
	)
	chosen := make([]interval.Set, len(ranges))
	for c := 0; c < combinations; c++ {
		div := c
		for k, t := range subset {
			chosen[t] = interval.Set{ranges[t][div%radix[k]]}
			div /= radix[k]
		}
		if !AllNeeded(load, subset, chosen) {
			continue
		}
		sol, ok := sweep(load, subset, tiers, chosen)
		if ok && (!found || sol.Cost < best.Cost) {
			best, found = sol, true
		}
	}
	return best, found, nil
}

// sweep gives every chosen sub-interval its minimum, then pours the rest
// of the load into the tiers in ascending cost order.
func sweep(load float64, subset []int, tiers []Tier, chosen []interval.Set) (TierSolution, bool) {
	sol := newTierSolution(len(tiers))
	remaining := load
	var total float64
	headroom := make([]interval.Set, len(tiers))
	for _, t := range subset {
		floor := chosen[t].Min()
		remaining = model.Round1(remaining - floor)
		sol.add(t, tiers[t].Cost, floor, &total)
		headroom[t] = chosen[t].ShiftClampZero(floor)
	}
	for t := range tiers {
		r := headroom[t]
		if len(r) == 0 {
			continue
		}
		if r.Contains(remaining) {
			sol.add(t, tiers[t].Cost, remaining, &total)
			return sol, true
		}
		if max := r.Max(); remaining > max {
			sol.add(t, tiers[t].Cost, max, &total)
			remaining = model.Round1(remaining - max)
		}
	}
	return sol, false
}

// fallback searches every tier subset able to carry load and keeps the
// cheapest solution, the first one found on equal cost. It stops early when
// ctx is done or the combination budget runs out.
func fallback(ctx context.Context, load float64, tiers []Tier, cache *subsetCache, limit int) (TierSolution, int, error) {
	b := &budget{limit: limit}
	var (
		best  TierSolution
		found bool
	)
	for subset := range interval.Subsets(len(tiers)) {
		if err := ctx.Err(); err != nil {
			return TierSolution{}, b.used, err
		}
		if !cache.Range(subset).Contains(load) || !AllNeeded(load, subset, cache.ranges) {
			continue
		}
		sol, ok, err := bruteForce(load, subset, tiers, cache.ranges, b)
		if err != nil {
			return TierSolution{}, b.used, err
		}
		if ok && (!found || sol.Cost < best.Cost) {
			best, found = sol, true
		}
	}
	if !found {
		return TierSolution{}, b.used, ErrNoFeasibleCombination
	}
	return best, b.used, nil
}
