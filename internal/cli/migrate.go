package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func migrateCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := e.rm.RunMigrations(cmd.Context(), e.db); err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			e.log.Info(cmd.Context(), "migrations applied")
			fmt.Fprintln(e.out, "database is up to date")
			return nil
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show the state of every migration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := e.rm.MigrationStatus(cmd.Context(), e.db); err != nil {
				return fmt.Errorf("migration status failed: %w", err)
			}
			return nil
		},
	})

	return cmd
}
