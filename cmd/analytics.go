package main

import (
	"github.com/spf13/cobra"

	"github.com/voltlead/leadsync-cli/internal/branch"
)

var analyticsCmd = &cobra.Command{
	Use:   "analytics <customer>",
	Short: "Per-branch lead counts, conversion, value and growth",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := branch.ValidateConfig(cfg.Classifier); err != nil {
			return err
		}

		st, err := initStore(cmd.Context())
		if err != nil {
			return err
		}
		defer st.Close()
		if err := st.Migrate(cmd.Context()); err != nil {
			return err
		}

		c, err := resolveCustomer(cmd.Context(), st, args[0])
		if err != nil {
			return err
		}

		report := branch.New(cfg.Classifier).Aggregate(c.Leads)
		return printJSON(report)
	},
}

func init() {
	rootCmd.AddCommand(analyticsCmd)
}
