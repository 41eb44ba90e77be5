package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func statsCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show the number of stored accounts",
		Long:  `Counts current accounts plus their history snapshots.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			n, err := e.accounts.Total(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to count accounts: %w", err)
			}
			fmt.Fprintf(e.out, "stored accounts: %d\n", n)
			return nil
		},
	}
}
