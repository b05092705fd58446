package dispatch

import (
	"sort"

	"github.com/kilianp07/powerplan/core/interval"
	"github.com/kilianp07/powerplan/core/model"
)

// Tier groups units sharing the same marginal cost. Units of a tier are
// economically interchangeable.
type Tier struct {
	Cost  float64
	Units []model.Unit
}

// BuildTiers sorts units by ascending cost and groups equal costs, keeping
// the input order inside a tier. Tiers are returned cheapest first.
func BuildTiers(units []model.Unit) []Tier {
	sorted := make([]model.Unit, len(units))
	copy(sorted, units)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Cost < sorted[j].Cost })

	var tiers []Tier
	for _, u := range sorted {
		if n := len(tiers); n > 0 && tiers[n-1].Cost == u.Cost {
			tiers[n-1].Units = append(tiers[n-1].Units, u)
			continue
		}
		tiers = append(tiers, Tier{Cost: u.Cost, Units: []model.Unit{u}})
	}
	return tiers
}

// Range returns every aggregate output the tier can supply.
func (t Tier) Range() interval.Set {
	var r interval.Set
	for _, u := range t.Units {
		r = interval.Sum(r, interval.Set{u.Range})
	}
	return r
}

// TierRanges returns Range for every tier.
func TierRanges(tiers []Tier) []interval.Set {
	out := make([]interval.Set, len(tiers))
	for i, t := range tiers {
		out[i] = t.Range()
	}
	return out
}

// TierLoad is the load carried by one tier and what it costs.
type TierLoad struct {
	Load float64 `json:"load"`
	Cost float64 `json:"cost"`
}

// TierSolution assigns a load to every tier. Cost is the sum of tier costs.
type TierSolution struct {
	Tiers []TierLoad `json:"tiers"`
	Cost  float64    `json:"cost"`
}

func newTierSolution(n int) TierSolution {
	return TierSolution{Tiers: make([]TierLoad, n)}
}

// add places load on tier i and keeps the running totals rounded.
func (s *TierSolution) add(i int, price, load float64, total *float64) {
	cost := price * load
	*total += cost
	s.Tiers[i].Load = model.Round1(s.Tiers[i].Load + load)
	s.Tiers[i].Cost = model.Round2(s.Tiers[i].Cost + cost)
	s.Cost = model.Round2(*total)
}
