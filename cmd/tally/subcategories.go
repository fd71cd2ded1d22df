package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tallyfin/tally/internal/cli"
)

func subcategoriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "subcategories",
		Short: "Manage subcategories",
		Long:  `Rename and delete the subcategories nested under a category.`,
	}

	cmd.AddCommand(updateSubcategoryCmd())
	cmd.AddCommand(deleteSubcategoryCmd())

	return cmd
}

func updateSubcategoryCmd() *cobra.Command {
	var (
		newName string
		glyph   string
	)

	cmd := &cobra.Command{
		Use:   "update <name>",
		Short: "Rename or reglyph a subcategory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			svc, store, err := initCatalog(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			name := newName
			if name == "" {
				name = args[0]
			}

			sub, err := svc.UpdateSubcategory(ctx, args[0], name, glyph)
			if err != nil {
				return fmt.Errorf("failed to update subcategory: %w", err)
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Updated subcategory %q under %q", sub.Name, sub.ParentName)))
			return nil
		},
	}

	cmd.Flags().StringVar(&newName, "name", "", "New subcategory name")
	cmd.Flags().StringVar(&glyph, "glyph", "", "New display glyph")

	return cmd
}

func deleteSubcategoryCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "delete <name> <parent>",
		Short: "Delete a subcategory",
		Long: `Soft-delete a subcategory of the given parent. Transactions and budgets
filed under it move to the matching "No Category" bucket.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			name, parent := args[0], args[1]

			if !force {
				fmt.Printf("Are you sure you want to delete subcategory %q of %q? (y/N): ", name, parent)
				var response string
				fmt.Scanln(&response)
				if strings.ToLower(response) != "y" {
					fmt.Println("Deletion cancelled.")
					return nil
				}
			}

			svc, store, err := initCatalog(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			if err := svc.DeleteSubcategory(ctx, name, parent); err != nil {
				return fmt.Errorf("failed to delete subcategory: %w", err)
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Deleted subcategory %q", name)))
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Skip confirmation prompt")

	return cmd
}
