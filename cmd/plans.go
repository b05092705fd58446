package cmd

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/kilianp07/powerplan/core/planlog"
)

var planQuery planlog.Query

var plansCmd = &cobra.Command{
	Use:   "plans",
	Short: "Inspect the plan log",
}

var plansLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List logged plans",
	RunE:  listPlans,
}

func init() {
	plansLsCmd.Flags().StringVar(&planQuery.Plant, "plant", "", "only plans dispatching this plant")
	plansLsCmd.Flags().StringVar(&planQuery.Strategy, "strategy", "", "only plans found with this strategy")
	plansLsCmd.Flags().BoolVar(&planQuery.FailedOnly, "failed", false, "only failed solves")
	plansLsCmd.Flags().IntVar(&planQuery.Limit, "limit", 20, "most recent plans to show, 0 for all")
	plansCmd.AddCommand(plansLsCmd)
	rootCmd.AddCommand(plansCmd)
}

func listPlans(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	store, err := planlog.NewStore(cfg.Logging.Module())
	if err != nil {
		return err
	}
	defer store.Close()

	recs, err := store.Query(cmd.Context(), planQuery)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	for _, r := range recs {
		if err := enc.Encode(r); err != nil {
			return err
		}
	}
	return nil
}
