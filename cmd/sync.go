package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

var (
	syncFull  bool
	syncAll   bool
	syncSheet string
)

var syncCmd = &cobra.Command{
	Use:   "sync [customer]",
	Short: "Reconcile customer leads with their linked spreadsheet",
	Long: "Smart sync applies only the difference between the sheet and the store. " +
		"With --full the sheet-linked lead collection is rebuilt from the sheet; " +
		"hand-entered leads are never touched either way.",
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := initStore(cmd.Context())
		if err != nil {
			return err
		}
		defer st.Close()
		if err := st.Migrate(cmd.Context()); err != nil {
			return err
		}

		eng := initEngine(st)

		if syncAll {
			results, err := eng.All(cmd.Context(), syncFull, cfg.Sync.MaxConcurrent)
			if err != nil {
				return err
			}
			return printJSON(results)
		}

		if len(args) == 0 {
			return eris.New("customer id or email required (or --all)")
		}

		c, err := resolveCustomer(cmd.Context(), st, args[0])
		if err != nil {
			return err
		}

		ref := syncSheet
		if ref == "" {
			if c.Sheet == nil || c.Sheet.SheetID == "" {
				return eris.Errorf("customer %s has no linked sheet; pass --sheet", c.ID)
			}
			ref = c.Sheet.SheetID
		}

		ctx, cancel := syncContext(cmd.Context())
		defer cancel()

		if syncFull {
			res, err := eng.Full(ctx, c.ID, ref)
			if err != nil {
				return err
			}
			return printJSON(res)
		}

		res, err := eng.Smart(ctx, c.ID, ref)
		if err != nil {
			return err
		}
		return printJSON(res)
	},
}

var syncLogCmd = &cobra.Command{
	Use:   "log <customer>",
	Short: "Show the sync history for a customer",
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

		entries, err := st.ListSyncLog(cmd.Context(), c.ID)
		if err != nil {
			return err
		}
		return printJSON(entries)
	},
}

func syncContext(parent context.Context) (context.Context, context.CancelFunc) {
	if cfg.Sheet.TimeoutSecs > 0 {
		return context.WithTimeout(parent, time.Duration(cfg.Sheet.TimeoutSecs)*time.Second)
	}
	return context.WithCancel(parent)
}

func init() {
	syncCmd.Flags().BoolVar(&syncFull, "full", false, "rebuild the lead collection from the sheet")
	syncCmd.Flags().BoolVar(&syncAll, "all", false, "sync every customer with a linked sheet")
	syncCmd.Flags().StringVar(&syncSheet, "sheet", "", "sheet reference (default: the customer's linked sheet)")
	syncCmd.AddCommand(syncLogCmd)
	rootCmd.AddCommand(syncCmd)
}
