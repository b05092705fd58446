package model

import (
	"encoding/json"
	"errors"
	"io"
)

// Payload is the raw production plan request as received on the wire.
// Pointer fields distinguish a missing key from a zero value.
type Payload struct {
	Load        *float64        `json:"load"`
	Fuels       *FuelsPayload   `json:"fuels"`
	PowerPlants *[]PlantPayload `json:"powerplants"`
}

// FuelsPayload mirrors Fuels with optional fields.
type FuelsPayload struct {
	Gas      *float64 `json:"gas(euro/MWh)"`
	Kerosine *float64 `json:"kerosine(euro/MWh)"`
	CO2      *float64 `json:"co2(euro/ton)"`
	WindPct  *float64 `json:"wind(%)"`
}

// PlantPayload mirrors PowerPlant with optional fields.
type PlantPayload struct {
	Name       *string  `json:"name"`
	Type       *string  `json:"type"`
	Efficiency *float64 `json:"efficiency"`
	PMin       *float64 `json:"pmin"`
	PMax       *float64 `json:"pmax"`
}

// DecodePayload reads a JSON payload. Syntax and type errors are reported
// as a ValidationError.
func DecodePayload(r io.Reader) (Payload, error) {
	var p Payload
	if err := json.NewDecoder(r).Decode(&p); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return p, invalid(typeErr.Field, -1, "Type error in payload. Field '%s' expects %s. Check JSON file.", typeErr.Field, typeErr.Type)
		}
		return p, invalid("", -1, "Malformed JSON payload: %v. Check JSON file.", err)
	}
	return p, nil
}

// Request checks that every key is present and returns the validated
// request.
func (p Payload) Request() (Request, error) {
	if p.Load == nil || p.Fuels == nil || p.Fuels.Gas == nil || p.Fuels.Kerosine == nil || p.Fuels.WindPct == nil {
		return Request{}, invalid("load", -1, "Key error in payload. At least one of the 'load' or 'fuel' keys is wrong. Check JSON file.")
	}
	if p.PowerPlants == nil {
		return Request{}, invalid("powerplants", -1, "Key error: can't find 'powerplants' entry. Check JSON file.")
	}
	req := Request{
		Load: *p.Load,
		Fuels: Fuels{
			Gas:      *p.Fuels.Gas,
			Kerosine: *p.Fuels.Kerosine,
			WindPct:  *p.Fuels.WindPct,
		},
		PowerPlants: make([]PowerPlant, len(*p.PowerPlants)),
	}
	if p.Fuels.CO2 != nil {
		req.Fuels.CO2 = *p.Fuels.CO2
	}
	for i, pp := range *p.PowerPlants {
		if pp.Name == nil || pp.Type == nil || pp.Efficiency == nil || pp.PMin == nil || pp.PMax == nil {
			return Request{}, invalid("powerplants", i, "Key error in powerplant number %d. Check JSON file.", i)
		}
		req.PowerPlants[i] = PowerPlant{
			Name:       *pp.Name,
			Type:       PlantType(*pp.Type),
			Efficiency: *pp.Efficiency,
			PMin:       *pp.PMin,
			PMax:       *pp.PMax,
		}
	}
	if err := req.Validate(); err != nil {
		return Request{}, err
	}
	return req, nil
}
