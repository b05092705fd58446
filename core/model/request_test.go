package model

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const examplePayload = `{
  "load": 480,
  "fuels": {"gas(euro/MWh)": 13.4, "kerosine(euro/MWh)": 50.8, "co2(euro/ton)": 20, "wind(%)": 60},
  "powerplants": [
    {"name": "gasfiredbig1", "type": "gasfired", "efficiency": 0.53, "pmin": 100, "pmax": 460},
    {"name": "windpark1", "type": "windturbine", "efficiency": 1, "pmin": 0, "pmax": 150}
  ]
}`

func TestPayloadRequest(t *testing.T) {
	p, err := DecodePayload(strings.NewReader(examplePayload))
	require.NoError(t, err)
	req, err := p.Request()
	require.NoError(t, err)
	assert.Equal(t, 480.0, req.Load)
	assert.Equal(t, Fuels{Gas: 13.4, Kerosine: 50.8, CO2: 20, WindPct: 60}, req.Fuels)
	require.Len(t, req.PowerPlants, 2)
	assert.Equal(t, WindTurbine, req.PowerPlants[1].Type)
}

func TestPayloadRequest_Errors(t *testing.T) {
	cases := []struct {
		name    string
		payload string
		field   string
		index   int
		msg     string
	}{
		{"missing load", `{"fuels": {"gas(euro/MWh)": 1, "kerosine(euro/MWh)": 1, "wind(%)": 1}, "powerplants": []}`, "load", -1, "Key error in payload"},
		{"missing plants", `{"load": 1, "fuels": {"gas(euro/MWh)": 1, "kerosine(euro/MWh)": 1, "wind(%)": 1}}`, "powerplants", -1, "can't find 'powerplants'"},
		{"missing plant key", `{"load": 1, "fuels": {"gas(euro/MWh)": 1, "kerosine(euro/MWh)": 1, "wind(%)": 1}, "powerplants": [{"name": "a"}]}`, "powerplants", 0, "powerplant number 0"},
		{"negative load", `{"load": -1, "fuels": {"gas(euro/MWh)": 1, "kerosine(euro/MWh)": 1, "wind(%)": 1}, "powerplants": []}`, "load", -1, "Negative load"},
		{"wind", `{"load": 1, "fuels": {"gas(euro/MWh)": 1, "kerosine(euro/MWh)": 1, "wind(%)": 120}, "powerplants": []}`, "wind(%)", -1, "Wind percentage '120'"},
		{"type", `{"load": 1, "fuels": {"gas(euro/MWh)": 1, "kerosine(euro/MWh)": 1, "wind(%)": 1}, "powerplants": [{"name": "a", "type": "nuclear", "efficiency": 1, "pmin": 0, "pmax": 1}]}`, "type", 0, "Type 'nuclear'"},
		{"efficiency", `{"load": 1, "fuels": {"gas(euro/MWh)": 1, "kerosine(euro/MWh)": 1, "wind(%)": 1}, "powerplants": [{"name": "a", "type": "gasfired", "efficiency": 1.5, "pmin": 0, "pmax": 1}]}`, "efficiency", 0, "Efficiency '1.5'"},
		{"empty name", `{"load": 1, "fuels": {"gas(euro/MWh)": 1, "kerosine(euro/MWh)": 1, "wind(%)": 1}, "powerplants": [{"name": " ", "type": "gasfired", "efficiency": 1, "pmin": 0, "pmax": 1}]}`, "name", 0, "empty name"},
		{"duplicate name", `{"load": 1, "fuels": {"gas(euro/MWh)": 1, "kerosine(euro/MWh)": 1, "wind(%)": 1}, "powerplants": [{"name": "a", "type": "gasfired", "efficiency": 1, "pmin": 0, "pmax": 1}, {"name": "a", "type": "turbojet", "efficiency": 1, "pmin": 0, "pmax": 1}]}`, "name", 1, "already used by power plant number 0"},
		{"bounds", `{"load": 1, "fuels": {"gas(euro/MWh)": 1, "kerosine(euro/MWh)": 1, "wind(%)": 1}, "powerplants": [{"name": "a", "type": "gasfired", "efficiency": 1, "pmin": 5, "pmax": 1}]}`, "pmin", 0, "pmax >= pmin"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			p, err := DecodePayload(strings.NewReader(c.payload))
			require.NoError(t, err)
			_, err = p.Request()
			var verr *ValidationError
			require.True(t, errors.As(err, &verr), "expected ValidationError got %v", err)
			assert.Equal(t, c.field, verr.Field)
			assert.Equal(t, c.index, verr.Index)
			assert.Contains(t, verr.Error(), c.msg)
		})
	}
}

func TestDecodePayload_TypeError(t *testing.T) {
	_, err := DecodePayload(strings.NewReader(`{"load": "a lot"}`))
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Msg, "Type error in payload")

	_, err = DecodePayload(strings.NewReader(`{"load": `))
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Msg, "Malformed JSON")
}

func TestRequestUnits(t *testing.T) {
	req := Request{
		Load:  10,
		Fuels: Fuels{Gas: 10, Kerosine: 30, WindPct: 50},
		PowerPlants: []PowerPlant{
			{Name: "g", Type: GasFired, Efficiency: 0.5, PMin: 0, PMax: 10},
			{Name: "w", Type: WindTurbine, Efficiency: 1, PMax: 20},
		},
	}
	units := req.Units()
	require.Len(t, units, 2)
	assert.Equal(t, 20.0, units[0].Cost)
	assert.Equal(t, 0.0, units[1].Cost)
	assert.Equal(t, 10.0, units[1].Range.Lo)
}
