package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/voltlead/leadsync-cli/internal/model"
)

var (
	leadName     string
	leadEmail    string
	leadPhone    string
	leadInterest string
	leadNotes    string
	leadStatus   string
	leadAssigned string
	leadPush     bool
)

var leadsCmd = &cobra.Command{
	Use:   "leads",
	Short: "Manage individual leads",
}

var leadsAddCmd = &cobra.Command{
	Use:   "add <customer>",
	Short: "Add a hand-entered lead to a customer",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if leadName == "" || leadEmail == "" {
			return eris.New("--name and --email are required")
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

		lead, err := st.AddLead(cmd.Context(), c.ID, model.Lead{
			Name:       leadName,
			Email:      leadEmail,
			Phone:      leadPhone,
			Interest:   leadInterest,
			Notes:      leadNotes,
			AssignedTo: leadAssigned,
			Status:     model.ParseLeadStatus(leadStatus),
			Source:     model.SourceManual,
		})
		if err != nil {
			return err
		}
		return printJSON(lead)
	},
}

var leadsUpdateCmd = &cobra.Command{
	Use:   "update <customer> <lead-id>",
	Short: "Update lead fields, optionally writing the row back to the sheet",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
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

		var patch model.LeadPatch
		if cmd.Flags().Changed("name") {
			patch.Name = &leadName
		}
		if cmd.Flags().Changed("email") {
			patch.Email = &leadEmail
		}
		if cmd.Flags().Changed("phone") {
			patch.Phone = &leadPhone
		}
		if cmd.Flags().Changed("interest") {
			patch.Interest = &leadInterest
		}
		if cmd.Flags().Changed("notes") {
			patch.Notes = &leadNotes
		}
		if cmd.Flags().Changed("assigned-to") {
			patch.AssignedTo = &leadAssigned
		}
		if cmd.Flags().Changed("status") {
			status := model.ParseLeadStatus(leadStatus)
			patch.Status = &status
		}

		lead, err := st.UpdateLead(cmd.Context(), c.ID, args[1], patch)
		if err != nil {
			return err
		}

		if leadPush {
			if c.Sheet == nil || c.Sheet.SheetID == "" {
				return eris.Errorf("customer %s has no linked sheet to push to", c.ID)
			}
			ctx, cancel := syncContext(cmd.Context())
			defer cancel()
			if err := initEngine(st).PushLead(ctx, c.ID, lead.ID, c.Sheet.SheetID); err != nil {
				return err
			}
		}
		return printJSON(lead)
	},
}

var leadsRemoveCmd = &cobra.Command{
	Use:   "remove <customer> <lead-id>",
	Short: "Remove a lead",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
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
		return st.RemoveLead(cmd.Context(), c.ID, args[1])
	},
}

func init() {
	for _, c := range []*cobra.Command{leadsAddCmd, leadsUpdateCmd} {
		c.Flags().StringVar(&leadName, "name", "", "lead name")
		c.Flags().StringVar(&leadEmail, "email", "", "lead email")
		c.Flags().StringVar(&leadPhone, "phone", "", "lead phone")
		c.Flags().StringVar(&leadInterest, "interest", "", "product interest")
		c.Flags().StringVar(&leadNotes, "notes", "", "free-form notes")
		c.Flags().StringVar(&leadAssigned, "assigned-to", "", "sales owner")
		c.Flags().StringVar(&leadStatus, "status", "", "lead status")
	}
	leadsUpdateCmd.Flags().BoolVar(&leadPush, "push", false, "write the updated row back to the linked sheet")

	leadsCmd.AddCommand(leadsAddCmd, leadsUpdateCmd, leadsRemoveCmd)
	rootCmd.AddCommand(leadsCmd)
}
