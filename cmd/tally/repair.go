package main

import (
	"fmt"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/tallyfin/tally/internal/cli"
)

func repairCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "repair",
		Short: "Repair orphaned transaction references",
		Long: `Scan all transactions and redirect any whose category no longer exists
to the "No Category" bucket matching the transaction's sign. Safe to run
repeatedly; a second pass changes nothing.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			svc, store, err := initCatalog(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			txns, err := store.FetchAll(ctx)
			if err != nil {
				return fmt.Errorf("failed to fetch transactions: %w", err)
			}

			bar := progressbar.NewOptions(len(txns),
				progressbar.OptionSetDescription("Scanning transactions"),
				progressbar.OptionShowCount(),
				progressbar.OptionClearOnFinish(),
			)
			orphans := 0
			for _, txn := range txns {
				if _, findErr := svc.FindByID(ctx, txn.CategoryID); findErr != nil {
					orphans++
				}
				_ = bar.Add(1)
			}
			_ = bar.Finish()
			if orphans > 0 {
				fmt.Println(cli.WarningStyle.Render(fmt.Sprintf("Found %d orphaned transaction(s)", orphans)))
			}

			repaired, err := svc.RepairOrphans(ctx)
			if err != nil {
				fmt.Println(cli.FormatWarning(fmt.Sprintf("Repair finished with errors: %v", err)))
			}

			if repaired == 0 {
				fmt.Println(cli.InfoStyle.Render("No orphaned transactions found."))
				return nil
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Repaired %d orphaned transaction(s)", repaired)))
			return nil
		},
	}
}
