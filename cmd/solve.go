package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/kilianp07/powerplan/core/dispatch"
	"github.com/kilianp07/powerplan/core/model"
	"github.com/kilianp07/powerplan/infra/logger"
	"github.com/kilianp07/powerplan/pkg/export"
)

var (
	payloadPath string
	outFormat   string
	chartPath   string
)

var solveCmd = &cobra.Command{
	Use:   "solve",
	Short: "Compute the production plan of a payload file",
	RunE:  solve,
}

func init() {
	solveCmd.Flags().StringVarP(&payloadPath, "file", "f", "", "payload file, - for stdin")
	solveCmd.Flags().StringVar(&outFormat, "format", "json", "output format: json or csv")
	solveCmd.Flags().StringVar(&chartPath, "chart", "", "write an HTML merit order chart to this file")
	_ = solveCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(solveCmd)
}

func solve(cmd *cobra.Command, _ []string) error {
	if outFormat != "json" && outFormat != "csv" {
		return fmt.Errorf("unknown format %q", outFormat)
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	var in io.Reader = cmd.InOrStdin()
	if payloadPath != "-" {
		f, err := os.Open(payloadPath)
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}
	payload, err := model.DecodePayload(in)
	if err != nil {
		return err
	}
	req, err := payload.Request()
	if err != nil {
		return err
	}

	engine := dispatch.NewEngine(cfg.Engine, logger.New("solve"), nil, nil)
	plan, err := engine.Solve(cmd.Context(), req)
	if err != nil {
		return err
	}
	rows := export.Rows(plan, req.Units())

	out := cmd.OutOrStdout()
	switch outFormat {
	case "csv":
		err = export.WriteCSV(out, rows)
	default:
		err = export.WriteJSON(out, plan)
	}
	if err != nil {
		return err
	}
	if chartPath != "" {
		f, err := os.Create(chartPath)
		if err != nil {
			return err
		}
		if err := export.WriteMeritOrderChart(f, fmt.Sprintf("Plan %s, %.1f MW for %.2f €", plan.ID, req.Load, plan.Cost), rows); err != nil {
			_ = f.Close()
			return err
		}
		return f.Close()
	}
	return nil
}
