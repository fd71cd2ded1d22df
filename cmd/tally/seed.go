package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tallyfin/tally/internal/cli"
)

func seedCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Reset the category catalog to the built-in set",
		Long: `Discard every category, including user-created ones, and re-seed the
built-in catalog. Transactions and budgets keep their references; run
'tally repair' afterwards to redirect any that no longer resolve.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			if !force {
				fmt.Print("This deletes all user-created categories. Continue? (y/N): ")
				var response string
				fmt.Scanln(&response)
				if strings.ToLower(response) != "y" {
					fmt.Println("Reset cancelled.")
					return nil
				}
			}

			svc, store, err := initCatalog(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			if err := svc.Reset(ctx); err != nil {
				return fmt.Errorf("failed to reset catalog: %w", err)
			}

			fmt.Println(cli.FormatSuccess("Catalog reset to built-in categories"))
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Skip confirmation prompt")

	return cmd
}
