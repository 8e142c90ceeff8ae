package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/deep-platform/deep-api/migrations"
	"github.com/deep-platform/deep-api/pkg/database"
)

func newMigrateCmd(load configLoader) *cobra.Command {
	migrate := &cobra.Command{Use: "migrate", Short: "Manage the database schema"}

	migrate.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := openEnv(load)
			if err != nil {
				return err
			}
			defer e.Close()

			results, err := database.Migrate(cmd.Context(), e.db.DB, migrations.FS)
			for _, result := range results {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "applied %05d %s (%s)\n", result.Source.Version, result.Source.Path, result.Duration)
			}
			if err != nil {
				return err
			}
			if len(results) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "schema is up to date")
			}
			return nil
		},
	})

	migrate.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "List applied and pending migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := openEnv(load)
			if err != nil {
				return err
			}
			defer e.Close()

			statuses, err := database.MigrationStatus(cmd.Context(), e.db.DB, migrations.FS)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			_, _ = fmt.Fprintln(w, "VERSION\tSTATE\tAPPLIED AT\tFILE")
			for _, status := range statuses {
				appliedAt := "-"
				if !status.AppliedAt.IsZero() {
					appliedAt = status.AppliedAt.UTC().Format("2006-01-02 15:04:05")
				}
				_, _ = fmt.Fprintf(w, "%05d\t%s\t%s\t%s\n", status.Source.Version, status.State, appliedAt, status.Source.Path)
			}
			return w.Flush()
		},
	})

	return migrate
}
