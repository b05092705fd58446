package model

import (
	"errors"
	"fmt"
	"math"

	"github.com/kilianp07/powerplan/core/interval"
)

// PlantType identifies the technology of a generating unit.
type PlantType string

const (
	GasFired    PlantType = "gasfired"
	TurboJet    PlantType = "turbojet"
	WindTurbine PlantType = "windturbine"
)

// PlantTypes lists the accepted plant types.
var PlantTypes = []PlantType{GasFired, TurboJet, WindTurbine}

// Valid reports whether t is one of PlantTypes.
func (t PlantType) Valid() bool {
	switch t {
	case GasFired, TurboJet, WindTurbine:
		return true
	}
	return false
}

// PowerPlant is a generating unit as described by the caller. Power values
// are in MW.
type PowerPlant struct {
	Name       string    `json:"name"`
	Type       PlantType `json:"type"`
	Efficiency float64   `json:"efficiency"`
	PMin       float64   `json:"pmin"`
	PMax       float64   `json:"pmax"`
}

// ErrPowerOutOfRange is returned when an output outside the plant's
// feasible range is assigned.
var ErrPowerOutOfRange = errors.New("power out of range")

// limits returns pmin and pmax, both forced to zero for a plant that cannot
// convert fuel.
func (p PowerPlant) limits() (float64, float64) {
	if p.Efficiency <= 0 {
		return 0, 0
	}
	return p.PMin, p.PMax
}

// FeasibleRange returns the output bounds the plant can produce for the
// given wind percentage. A wind turbine only produces its available output,
// so min equals max. Bounds are rounded to 0.1 MW.
func (p PowerPlant) FeasibleRange(windPct float64) (float64, float64) {
	pmin, pmax := p.limits()
	if p.Type == WindTurbine {
		w := Round1(pmax * windPct / 100)
		return w, w
	}
	return Round1(pmin), Round1(pmax)
}

// CostPerMWh returns the marginal cost of the plant: the fuel price divided
// by the efficiency, zero for wind. Rounded to 0.01.
func (p PowerPlant) CostPerMWh(gasPrice, kerosinePrice float64) float64 {
	var fuel float64
	switch p.Type {
	case GasFired:
		fuel = gasPrice
	case TurboJet:
		fuel = kerosinePrice
	default:
		return 0
	}
	if p.Efficiency <= 0 {
		return 0
	}
	return Round2(fuel / p.Efficiency)
}

// CheckPower reports whether the plant can supply exactly power at the
// given wind percentage.
func (p PowerPlant) CheckPower(power, windPct float64) bool {
	lo, hi := p.FeasibleRange(windPct)
	power = Round1(power)
	if p.Type == WindTurbine {
		return power == lo
	}
	return power >= lo && power <= hi
}

// Unit is a plant bound to the prices and wind conditions of one request:
// its marginal cost and its feasible output range.
type Unit struct {
	Plant PowerPlant
	Cost  float64
	Range interval.Interval
}

// NewUnit costs p with the request fuels and binds its feasible range.
func NewUnit(p PowerPlant, f Fuels) Unit {
	lo, hi := p.FeasibleRange(f.WindPct)
	return Unit{
		Plant: p,
		Cost:  p.CostPerMWh(f.Gas, f.Kerosine),
		Range: interval.Interval{Lo: lo, Hi: hi},
	}
}

// Allocation is the immutable output assigned to one plant by a plan.
type Allocation struct {
	Name string  `json:"name"`
	P    float64 `json:"p"`
}

// Allocate assigns power p to the unit. p is rounded to 0.1 MW and must lie
// within the unit's feasible range.
func (u Unit) Allocate(p float64) (Allocation, error) {
	p = Round1(p)
	if p < Round1(u.Range.Lo) || p > Round1(u.Range.Hi) {
		return Allocation{}, fmt.Errorf("plant %s: %.1f MW outside %v: %w", u.Plant.Name, p, u.Range, ErrPowerOutOfRange)
	}
	return Allocation{Name: u.Plant.Name, P: p}, nil
}

// Off returns the zero allocation for the unit.
func (u Unit) Off() Allocation { return Allocation{Name: u.Plant.Name} }

// Round1 rounds to the power granularity (0.1 MW).
func Round1(x float64) float64 { return math.Round(x*10) / 10 }

// Round2 rounds to the cost granularity (0.01).
func Round2(x float64) float64 { return math.Round(x*100) / 100 }
