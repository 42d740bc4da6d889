package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var customersCmd = &cobra.Command{
	Use:   "customers",
	Short: "Inspect stored customers",
}

var customersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all customers",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := initStore(cmd.Context())
		if err != nil {
			return err
		}
		defer st.Close()
		if err := st.Migrate(cmd.Context()); err != nil {
			return err
		}

		customers, err := st.ListCustomers(cmd.Context())
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tEMAIL\tNAME\tSTATUS\tLEADS\tORDERS\tLAST ACTIVITY")
		for _, c := range customers {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%d\t%s\n",
				c.ID, c.Email, c.Name, c.Status, len(c.Leads), len(c.Orders),
				c.LastActivity.Format("2006-01-02 15:04"),
			)
		}
		return w.Flush()
	},
}

var customersShowCmd = &cobra.Command{
	Use:   "show <customer>",
	Short: "Show one customer aggregate as JSON",
	Args:  cobra.ExactArgs(1),
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
		return printJSON(c)
	},
}

func init() {
	customersCmd.AddCommand(customersListCmd, customersShowCmd)
	rootCmd.AddCommand(customersCmd)
}
