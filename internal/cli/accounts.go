package cli

import (
	"fmt"

	"github.com/dmitrijs2005/passkeeper/internal/server/models"
	"github.com/spf13/cobra"
)

func accountsCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "accounts",
		Short: "Inspect and remove stored accounts",
	}

	cmd.AddCommand(searchAccountsCmd(e))
	cmd.AddCommand(filterAccountsCmd(e))
	cmd.AddCommand(deleteAccountsCmd(e))

	return cmd
}

func searchAccountsCmd(e *env) *cobra.Command {
	var search models.ItemSearchData

	cmd := &cobra.Command{
		Use:   "search [text]",
		Short: "Search accounts by name, url or notes",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				search.SearchString = args[0]
			}
			res, err := e.accounts.Search(cmd.Context(), &search)
			if err != nil {
				return fmt.Errorf("failed to search accounts: %w", err)
			}

			w := newTable(e.out)
			fmt.Fprintln(w, "ID\tNAME")
			for _, a := range res.Data {
				fmt.Fprintf(w, "%d\t%s\n", a.ID, a.Name)
			}
			if err := w.Flush(); err != nil {
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

func filterAccountsCmd(e *env) *cobra.Command {
	var filter models.AccountSearchFilter

	cmd := &cobra.Command{
		Use:   "filter",
		Short: "List accounts matching every given filter",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if filter.SearchFavorites && filter.UserID == 0 {
				return fmt.Errorf("--favorites requires --user")
			}

			res, err := e.accounts.Filter(cmd.Context(), &filter)
			if err != nil {
				return fmt.Errorf("failed to filter accounts: %w", err)
			}

			w := newTable(e.out)
			fmt.Fprintln(w, "ID\tNAME\tCLIENT\tCATEGORY\tLOGIN\tOWNER")
			for _, a := range res.Data {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n",
					a.ID, a.Name, a.ClientName, a.CategoryName, a.Login, a.UserLogin)
			}
			if err := w.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(e.out, "%d of %d\n", len(res.Data), res.Count)
			return nil
		},
	}

	cmd.Flags().Int64Var(&filter.CategoryID, "category", 0, "category id")
	cmd.Flags().Int64Var(&filter.ClientID, "client", 0, "client id")
	cmd.Flags().StringVar(&filter.TxtSearch, "text", "", "text matched against name, login, url and notes")
	cmd.Flags().Int64SliceVar(&filter.TagsID, "tag", nil, "tag id; repeat to match any of several tags")
	cmd.Flags().BoolVar(&filter.SearchFavorites, "favorites", false, "only favorites of --user")
	cmd.Flags().Int64Var(&filter.UserID, "user", 0, "user id for --favorites")
	cmd.Flags().IntVar(&filter.LimitStart, "offset", 0, "rows to skip")
	cmd.Flags().IntVar(&filter.LimitCount, "limit", 0, "maximum rows to return (0 = all)")

	return cmd
}

func deleteAccountsCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>...",
		Short: "Delete accounts by id",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}

			if len(ids) == 1 {
				if err := e.accounts.Delete(cmd.Context(), ids[0]); err != nil {
					return err
				}
				fmt.Fprintln(e.out, "deleted 1 account")
				return nil
			}

			n, err := e.accounts.DeleteBatch(cmd.Context(), ids)
			if err != nil {
				return err
			}
			fmt.Fprintf(e.out, "deleted %d accounts\n", n)
			return nil
		},
	}
}
