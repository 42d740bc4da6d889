package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/voltlead/leadsync-cli/internal/branch"
	"github.com/voltlead/leadsync-cli/internal/model"
)

var classifyLeadID string

var classifyCmd = &cobra.Command{
	Use:   "classify <customer>",
	Short: "Classify customer leads into energy-sector verticals",
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

		classifier := branch.New(cfg.Classifier)

		if classifyLeadID != "" {
			lead := c.LeadByID(classifyLeadID)
			if lead == nil {
				return eris.Errorf("lead %s not found on customer %s", classifyLeadID, c.ID)
			}
			return printJSON(classification{Lead: lead, Intelligence: classifier.Classify(lead)})
		}

		out := make([]classification, 0, len(c.Leads))
		for i := range c.Leads {
			out = append(out, classification{
				Lead:         &c.Leads[i],
				Intelligence: classifier.Classify(&c.Leads[i]),
			})
		}
		return printJSON(out)
	},
}

type classification struct {
	Lead         *model.Lead              `json:"lead"`
	Intelligence model.BranchIntelligence `json:"intelligence"`
}

func init() {
	classifyCmd.Flags().StringVar(&classifyLeadID, "lead", "", "classify a single lead by id")
	rootCmd.AddCommand(classifyCmd)
}
