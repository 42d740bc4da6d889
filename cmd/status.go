package main

import (
	"github.com/spf13/cobra"

	"github.com/voltlead/leadsync-cli/internal/monitoring"
)

var statusLookbackHours int

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show sync health metrics and any triggered alerts",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := initStore(cmd.Context())
		if err != nil {
			return err
		}
		defer st.Close()
		if err := st.Migrate(cmd.Context()); err != nil {
			return err
		}

		snap, err := monitoring.NewCollector(st).Collect(cmd.Context(), statusLookbackHours)
		if err != nil {
			return err
		}

		alerts := monitoring.NewAlerter(cfg.Monitoring).Evaluate(snap)
		return printJSON(struct {
			Metrics *monitoring.MetricsSnapshot `json:"metrics"`
			Alerts  []monitoring.Alert          `json:"alerts,omitempty"`
		}{Metrics: snap, Alerts: alerts})
	},
}

func init() {
	statusCmd.Flags().IntVar(&statusLookbackHours, "lookback", 24, "lookback window in hours")
	rootCmd.AddCommand(statusCmd)
}
