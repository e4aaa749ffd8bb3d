package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"dashimport/internal/ingest/db"
)

func newMigrateCmd(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the embedded schema migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup(g)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			if err := db.Migrate(cmd.Context(), cfg, logger); err != nil {
				return withCode(exitFailure, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "schema up to date (%s)\n", cfg.Driver)
			return nil
		},
	}
}
