package dispatch

import (
	"github.com/kilianp07/powerplan/core/interval"
	"github.com/kilianp07/powerplan/core/model"
)

func gas(name string, eff, pmin, pmax float64) model.PowerPlant {
	return model.PowerPlant{Name: name, Type: model.GasFired, Efficiency: eff, PMin: pmin, PMax: pmax}
}

func jet(name string, eff, pmin, pmax float64) model.PowerPlant {
	return model.PowerPlant{Name: name, Type: model.TurboJet, Efficiency: eff, PMin: pmin, PMax: pmax}
}

func wind(name string, pmax float64) model.PowerPlant {
	return model.PowerPlant{Name: name, Type: model.WindTurbine, Efficiency: 1, PMax: pmax}
}

// referenceFleet is the reference fleet used by several tests.
func referenceFleet() []model.PowerPlant {
	return []model.PowerPlant{
		gas("gasfiredbig1", 0.53, 100, 460),
		gas("gasfiredbig2", 0.53, 100, 460),
		gas("gasfiredsomewhatsmaller", 0.37, 40, 210),
		jet("tj1", 0.3, 0, 16),
		wind("windpark1", 150),
		wind("windpark2", 36),
	}
}

func request(load, windPct float64, plants ...model.PowerPlant) model.Request {
	return model.Request{
		Load:        load,
		Fuels:       model.Fuels{Gas: 13.4, Kerosine: 50.8, CO2: 20, WindPct: windPct},
		PowerPlants: plants,
	}
}

func unit(cost, lo, hi float64) model.Unit {
	return model.Unit{Cost: cost, Range: interval.Interval{Lo: lo, Hi: hi}}
}

func tiersOf(units ...model.Unit) ([]Tier, []interval.Set) {
	tiers := BuildTiers(units)
	return tiers, TierRanges(tiers)
}

func powerOf(allocs []model.Allocation) map[string]float64 {
	out := make(map[string]float64, len(allocs))
	for _, a := range allocs {
		out[a.Name] = a.P
	}
	return out
}
