package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/tallyfin/tally/internal/cli"
	"github.com/tallyfin/tally/internal/model"
)

func categoriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "Manage income and expense categories",
		Long:  `List, add, update, and delete the categories transactions and budgets are filed under.`,
	}

	cmd.AddCommand(listCategoriesCmd())
	cmd.AddCommand(addCategoryCmd())
	cmd.AddCommand(updateCategoryCmd())
	cmd.AddCommand(deleteCategoryCmd())

	return cmd
}

func listCategoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all categories",
		Long:  `Display all active categories with their type, glyph, and parent.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			svc, store, err := initCatalog(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			categories, err := svc.Categories(ctx)
			if err != nil {
				return fmt.Errorf("failed to get categories: %w", err)
			}

			if len(categories) == 0 {
				fmt.Println(cli.InfoStyle.Render("No categories found. Use 'tally categories add' to create one."))
				return nil
			}

			byID := make(map[string]string, len(categories))
			for _, cat := range categories {
				byID[cat.ID.String()] = cat.Name
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			defer w.Flush()

			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
				cli.HeaderStyle.Render("Name"),
				cli.HeaderStyle.Render("Type"),
				cli.HeaderStyle.Render("Glyph"),
				cli.HeaderStyle.Render("Parent"))
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
				strings.Repeat("-", 20),
				strings.Repeat("-", 8),
				strings.Repeat("-", 5),
				strings.Repeat("-", 20))

			for _, cat := range categories {
				parent := ""
				if cat.ParentID != nil {
					parent = byID[cat.ParentID.String()]
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", cat.Name, cat.Type, cat.Glyph, parent)
			}

			return nil
		},
	}
}

func addCategoryCmd() *cobra.Command {
	var (
		glyph      string
		parentName string
		catType    string
	)

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a new category",
		Long: `Create a new category. With --parent the category becomes a subcategory
and inherits the parent's type; otherwise --type selects income or expense.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			svc, store, err := initCatalog(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			cat, err := svc.Add(ctx, args[0], glyph, parentName, model.CategoryType(catType))
			if err != nil {
				return fmt.Errorf("failed to add category: %w", err)
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Added %s category %q", cat.Type, cat.Name)))
			return nil
		},
	}

	cmd.Flags().StringVar(&glyph, "glyph", "", "Display glyph")
	cmd.Flags().StringVar(&parentName, "parent", "", "Parent category name (empty for top-level)")
	cmd.Flags().StringVar(&catType, "type", "", "Category type: income or expense (default expense)")

	return cmd
}

func updateCategoryCmd() *cobra.Command {
	var (
		newName    string
		glyph      string
		parentName string
		catType    string
	)

	cmd := &cobra.Command{
		Use:   "update <name>",
		Short: "Update a category",
		Long: `Rename, reglyph, retype, or move a category. Updating a subcategory by
name converts it into a category under the new parent, keeping its id.`,
		Args: cobra.ExactArgs(1),
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

			cat, err := svc.Update(ctx, args[0], name, glyph, parentName, model.CategoryType(catType))
			if err != nil {
				return fmt.Errorf("failed to update category: %w", err)
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Updated category %q (%s)", cat.Name, cat.Type)))
			return nil
		},
	}

	cmd.Flags().StringVar(&newName, "name", "", "New category name")
	cmd.Flags().StringVar(&glyph, "glyph", "", "New display glyph")
	cmd.Flags().StringVar(&parentName, "parent", "", "New parent category name ('none' for top-level)")
	cmd.Flags().StringVar(&catType, "type", "", "New type for top-level categories: income or expense")

	return cmd
}

func deleteCategoryCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a category",
		Long: `Soft-delete a category. Fails if the category still has subcategories.
Transactions and budgets filed under it move to the matching "No Category" bucket.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			name := args[0]

			if !force {
				fmt.Printf("Are you sure you want to delete category %q? (y/N): ", name)
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

			if err := svc.Delete(ctx, name); err != nil {
				return fmt.Errorf("failed to delete category: %w", err)
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Deleted category %q", name)))
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Skip confirmation prompt")

	return cmd
}
