package dispatch

import (
	"github.com/kilianp07/powerplan/core/interval"
	"github.com/kilianp07/powerplan/core/model"
)

// GoldenPath fills tiers cheapest first. A tier whose range holds the
// remaining load takes it and ends the walk; a tier whose maximum is below
// the remaining load runs at its maximum. Any other tier means the greedy
// walk cannot continue and ok is false.
func GoldenPath(load float64, tiers []Tier, ranges []interval.Set) (TierSolution, bool) {
	sol := newTierSolution(len(tiers))
	remaining := model.Round1(load)
	var total float64
	for i, r := range ranges {
		if r.Contains(remaining) {
			sol.add(i, tiers[i].Cost, remaining, &total)
			return sol, true
		}
		max := r.Max()
		if remaining <= max {
			return sol, false
		}
		sol.add(i, tiers[i].Cost, max, &total)
		remaining = model.Round1(remaining - max)
	}
	return sol, false
}
