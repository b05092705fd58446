package model

import (
	"fmt"
	"strings"
)

// Fuels holds the market conditions of a request. Prices are in euro/MWh,
// WindPct is the share of nameplate capacity available to wind turbines.
type Fuels struct {
	Gas      float64 `json:"gas(euro/MWh)"`
	Kerosine float64 `json:"kerosine(euro/MWh)"`
	CO2      float64 `json:"co2(euro/ton)"`
	WindPct  float64 `json:"wind(%)"`
}

// Request is a validated production plan request.
type Request struct {
	Load        float64      `json:"load"`
	Fuels       Fuels        `json:"fuels"`
	PowerPlants []PowerPlant `json:"powerplants"`
}

// ValidationError describes malformed input. Index is the position of the
// offending power plant, or -1 for request level fields.
type ValidationError struct {
	Field string
	Index int
	Msg   string
}

func (e *ValidationError) Error() string { return e.Msg }

func invalid(field string, index int, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Index: index, Msg: fmt.Sprintf(format, args...)}
}

// Validate checks value domains. The solver must not run on a request that
// fails validation.
func (r Request) Validate() error {
	if r.Load < 0 || r.Fuels.Gas < 0 || r.Fuels.Kerosine < 0 {
		return invalid("load", -1, "Negative load or fuel price. Values must be >=0. Check JSON.")
	}
	if r.Fuels.WindPct < 0 || r.Fuels.WindPct > 100 {
		return invalid("wind(%)", -1, "Wind percentage '%g' not valid. Value needs to be between 0 and 100. Check JSON.", r.Fuels.WindPct)
	}
	seen := make(map[string]int, len(r.PowerPlants))
	for i, p := range r.PowerPlants {
		if err := p.validate(i); err != nil {
			return err
		}
		if j, ok := seen[p.Name]; ok {
			return invalid("name", i, "Name '%s' of power plant number %d already used by power plant number %d. Names must be unique. Check JSON file.", p.Name, i, j)
		}
		seen[p.Name] = i
	}
	return nil
}

func (p PowerPlant) validate(i int) error {
	if strings.TrimSpace(p.Name) == "" {
		return invalid("name", i, "Power plant number %d has an empty name. Check JSON file.", i)
	}
	if !p.Type.Valid() {
		names := make([]string, len(PlantTypes))
		for j, t := range PlantTypes {
			names[j] = string(t)
		}
		return invalid("type", i, "Type '%s' of power plant number %d not valid. Type needs to be one of [%s]. Check JSON file.",
			p.Type, i, strings.Join(names, ", "))
	}
	if p.Efficiency <= 0 || p.Efficiency > 1 {
		return invalid("efficiency", i, "Efficiency '%g' of power plant number %d not valid. Value needs to be: 0 < '%g' <= 1. Check JSON file.",
			p.Efficiency, i, p.Efficiency)
	}
	if p.PMin < 0 || p.PMax < 0 || p.PMax < p.PMin {
		return invalid("pmin", i, "[pmin, pmax] = '[%g, %g]' of power plant number %d not valid. Both values need to be positive, and pmax >= pmin. Check JSON file.",
			p.PMin, p.PMax, i)
	}
	return nil
}

// Units binds every plant of the request to its fuels.
func (r Request) Units() []Unit {
	units := make([]Unit, len(r.PowerPlants))
	for i, p := range r.PowerPlants {
		units[i] = NewUnit(p, r.Fuels)
	}
	return units
}
