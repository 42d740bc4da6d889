package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/voltlead/leadsync-cli/internal/model"
	"github.com/voltlead/leadsync-cli/internal/store"
)

var (
	importEmail string
	importName  string
	importFile  string
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Create (or update) a customer and load leads from a spreadsheet",
	Long: "Links the customer to the given XLSX file and runs a full sync, " +
		"so the stored leads mirror the sheet exactly.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if importEmail == "" {
			return eris.New("--email is required")
		}
		if importFile == "" {
			return eris.New("--file is required")
		}

		st, err := initStore(cmd.Context())
		if err != nil {
			return err
		}
		defer st.Close()
		if err := st.Migrate(cmd.Context()); err != nil {
			return err
		}

		c, err := st.UpsertCustomer(cmd.Context(), store.CustomerUpsert{
			Email:  importEmail,
			Name:   importName,
			Sheet:  &model.SheetLink{SheetID: importFile},
			Origin: model.ChangeOriginImport,
		})
		if err != nil {
			return err
		}

		ctx, cancel := syncContext(cmd.Context())
		defer cancel()

		res, err := initEngine(st).Full(ctx, c.ID, importFile)
		if err != nil {
			return err
		}
		return printJSON(res)
	},
}

func init() {
	importCmd.Flags().StringVar(&importEmail, "email", "", "customer email (lookup key)")
	importCmd.Flags().StringVar(&importName, "name", "", "customer name")
	importCmd.Flags().StringVar(&importFile, "file", "", "path to the XLSX lead sheet")
	rootCmd.AddCommand(importCmd)
}
