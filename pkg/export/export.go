package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"

	"github.com/kilianp07/powerplan/core/dispatch"
	"github.com/kilianp07/powerplan/core/model"
)

// Row is one plant of a plan with its merit order data.
type Row struct {
	Plant      string  `json:"name"`
	Type       string  `json:"type"`
	CostPerMWh float64 `json:"cost_per_mwh"`
	MinMW      float64 `json:"min_mw"`
	MaxMW      float64 `json:"max_mw"`
	PowerMW    float64 `json:"p"`
}

// Rows joins the allocations of plan with the units they were computed
// from. Rows follow the allocation order, cheapest first.
func Rows(plan dispatch.Plan, units []model.Unit) []Row {
	byName := make(map[string]model.Unit, len(units))
	for _, u := range units {
		byName[u.Plant.Name] = u
	}
	rows := make([]Row, 0, len(plan.Allocations))
	for _, a := range plan.Allocations {
		u := byName[a.Name]
		rows = append(rows, Row{
			Plant:      a.Name,
			Type:       string(u.Plant.Type),
			CostPerMWh: u.Cost,
			MinMW:      u.Range.Lo,
			MaxMW:      u.Range.Hi,
			PowerMW:    a.P,
		})
	}
	return rows
}

// WriteJSON writes the plan to w in JSON format.
func WriteJSON(w io.Writer, plan dispatch.Plan) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(plan)
}

// WriteCSV writes the rows to w in CSV format.
func WriteCSV(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"name", "type", "cost_per_mwh", "min_mw", "max_mw", "p"}); err != nil {
		return err
	}
	for _, r := range rows {
		rec := []string{
			r.Plant,
			r.Type,
			strconv.FormatFloat(r.CostPerMWh, 'f', 2, 64),
			strconv.FormatFloat(r.MinMW, 'f', 1, 64),
			strconv.FormatFloat(r.MaxMW, 'f', 1, 64),
			strconv.FormatFloat(r.PowerMW, 'f', 1, 64),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
