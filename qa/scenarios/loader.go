package scenarios

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kilianp07/powerplan/core/model"
)

type PlantDef struct {
	Name       string  `yaml:"name"`
	Type       string  `yaml:"type"`
	Efficiency float64 `yaml:"efficiency"`
	PMin       float64 `yaml:"pmin"`
	PMax       float64 `yaml:"pmax"`
}

func (p PlantDef) ToModel() model.PowerPlant {
	return model.PowerPlant{
		Name:       p.Name,
		Type:       model.PlantType(p.Type),
		Efficiency: p.Efficiency,
		PMin:       p.PMin,
		PMax:       p.PMax,
	}
}

type FuelsDef struct {
	Gas      float64 `yaml:"gas"`
	Kerosine float64 `yaml:"kerosine"`
	CO2      float64 `yaml:"co2"`
	Wind     float64 `yaml:"wind"`
}

type Expected struct {
	// Outcome is the metrics outcome label of the solve, "ok" when empty.
	Outcome     string             `yaml:"outcome,omitempty"`
	Strategy    string             `yaml:"strategy,omitempty"`
	Cost        *float64           `yaml:"cost,omitempty"`
	Allocations map[string]float64 `yaml:"allocations,omitempty"`
	Acked       int                `yaml:"acked"`
}

type Scenario struct {
	Name        string     `yaml:"name"`
	Description string     `yaml:"description,omitempty"`
	Load        float64    `yaml:"load"`
	Fuels       FuelsDef   `yaml:"fuels"`
	Plants      []PlantDef `yaml:"plants"`
	// FailPlants never receive their setpoint.
	FailPlants []string `yaml:"fail_plants,omitempty"`
	// NoAck plants receive their setpoint but never acknowledge it.
	NoAck    []string `yaml:"no_ack,omitempty"`
	Expected Expected `yaml:"expected"`
}

// Request builds the engine input of the scenario.
func (s Scenario) Request() model.Request {
	req := model.Request{
		Load: s.Load,
		Fuels: model.Fuels{
			Gas:      s.Fuels.Gas,
			Kerosine: s.Fuels.Kerosine,
			CO2:      s.Fuels.CO2,
			WindPct:  s.Fuels.Wind,
		},
		PowerPlants: make([]model.PowerPlant, len(s.Plants)),
	}
	for i, p := range s.Plants {
		req.PowerPlants[i] = p.ToModel()
	}
	return req
}

func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, err
	}
	if sc.Name == "" {
		return nil, fmt.Errorf("%s: scenario name is required", path)
	}
	if sc.Expected.Outcome == "" {
		sc.Expected.Outcome = "ok"
	}
	return &sc, nil
}
