package export

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// WriteMeritOrderChart renders an HTML bar chart of the plan: available
// and dispatched power per plant in merit order, with the marginal cost on
// a secondary axis.
func WriteMeritOrderChart(w io.Writer, title string, rows []Row) error {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Plant"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Power (MW)"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
	)
	bar.ExtendYAxis(opts.YAxis{Name: "Cost (€/MWh)"})

	names := make([]string, 0, len(rows))
	available := make([]opts.BarData, 0, len(rows))
	dispatched := make([]opts.BarData, 0, len(rows))
	costs := make([]opts.LineData, 0, len(rows))
	for _, r := range rows {
		names = append(names, r.Plant)
		available = append(available, opts.BarData{Value: r.MaxMW})
		dispatched = append(dispatched, opts.BarData{Value: r.PowerMW})
		costs = append(costs, opts.LineData{Value: r.CostPerMWh})
	}
	bar.SetXAxis(names).
		AddSeries("Available", available).
		AddSeries("Dispatched", dispatched)

	line := charts.NewLine()
	line.SetXAxis(names).AddSeries("Cost", costs, charts.WithLineChartOpts(opts.LineChart{YAxisIndex: 1}))
	bar.Overlap(line)

	if err := bar.Render(w); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	return nil
}
