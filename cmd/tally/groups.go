package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tallyfin/tally/internal/cli"
)

func groupsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "groups [search]",
		Short: "Show categories grouped with their subcategories",
		Long: `Display the category tree grouped by parent, optionally filtered by a
case-insensitive search term. A matching parent keeps all of its
subcategories; otherwise only matching subcategories are shown.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			term := ""
			if len(args) == 1 {
				term = args[0]
			}

			svc, store, err := initCatalog(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			groups, err := svc.Groups(ctx, term)
			if err != nil {
				return fmt.Errorf("failed to get groups: %w", err)
			}

			if len(groups) == 0 {
				fmt.Println(cli.InfoStyle.Render("No matching categories."))
				return nil
			}

			for _, group := range groups {
				header := strings.TrimSpace(group.Parent.Glyph + " " + group.Parent.Name)
				fmt.Printf("%s %s\n", cli.TitleStyle.UnsetMargins().Render(header), cli.SubtleStyle.Render("("+string(group.Parent.Type)+")"))
				for _, child := range group.Children {
					fmt.Printf("  %s\n", strings.TrimSpace(child.Glyph+" "+child.Name))
				}
			}

			return nil
		},
	}
}
