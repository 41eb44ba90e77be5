package cli

import (
	"fmt"

	"github.com/dmitrijs2005/passkeeper/internal/server/models"
	"github.com/spf13/cobra"
)

func categoriesCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "Manage account categories",
	}

	cmd.AddCommand(listCategoriesCmd(e))
	cmd.AddCommand(searchCategoriesCmd(e))
	cmd.AddCommand(showCategoryCmd(e))
	cmd.AddCommand(addCategoryCmd(e))
	cmd.AddCommand(deleteCategoriesCmd(e))

	return cmd
}

func printCategories(e *env, categories []models.Category) error {
	if len(categories) == 0 {
		fmt.Fprintln(e.out, "No categories found.")
		return nil
	}

	w := newTable(e.out)
	fmt.Fprintln(w, "ID\tNAME\tDESCRIPTION")
	for _, c := range categories {
		fmt.Fprintf(w, "%d\t%s\t%s\n", c.ID, c.Name, c.Description)
	}
	return w.Flush()
}

func listCategoriesCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all categories ordered by name",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			categories, err := e.categories.List(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to get categories: %w", err)
			}
			return printCategories(e, categories)
		},
	}
}

func searchCategoriesCmd(e *env) *cobra.Command {
	var search models.ItemSearchData

	cmd := &cobra.Command{
		Use:   "search [text]",
		Short: "Search categories by name or description",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				search.SearchString = args[0]
			}
			res, err := e.categories.Search(cmd.Context(), &search)
			if err != nil {
				return fmt.Errorf("failed to search categories: %w", err)
			}
			if err := printCategories(e, res.Data); err != nil {
				return err
			}
			fmt.Fprintf(e.out, "%d of %d\n", res.NumRows, res.TotalNumRows)
			return nil
		},
	}

	cmd.Flags().IntVar(&search.LimitStart, "offset", 0, "rows to skip")
	cmd.Flags().IntVar(&search.LimitCount, "limit", 0, "maximum rows to return (0 = all)")

	return cmd
}

func showCategoryCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "show <name>",
		Short: "Show one category by name (case and trailing dots are ignored)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := e.categories.GetByName(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printCategories(e, []models.Category{*c})
		},
	}
}

func addCategoryCmd(e *env) *cobra.Command {
	var description string

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a new category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := &models.Category{Name: args[0], Description: description}
			id, err := e.categories.Create(cmd.Context(), c)
			if err != nil {
				return err
			}
			fmt.Fprintf(e.out, "created category %d\n", id)
			return nil
		},
	}

	cmd.Flags().StringVar(&description, "description", "", "category description")

	return cmd
}

func deleteCategoriesCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>...",
		Short: "Delete categories by id",
		Long: `Deletes the given categories. A category still referenced by an
account cannot be deleted, and a batch fails as a whole.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}

			if len(ids) == 1 {
				if err := e.categories.Delete(cmd.Context(), ids[0]); err != nil {
					return err
				}
				fmt.Fprintln(e.out, "deleted 1 category")
				return nil
			}

			n, err := e.categories.DeleteBatch(cmd.Context(), ids)
			if err != nil {
				return err
			}
			fmt.Fprintf(e.out, "deleted %d categories\n", n)
			return nil
		},
	}
}
