package main

import (
	"fmt"
	"os"

	"github.com/go-faster/errors"
	"github.com/spf13/cobra"

	"dashimport/internal/ingest/db"
	"dashimport/internal/verify"
)

type verifyOptions struct {
	out     string
	workers int
}

func newVerifyCmd(g *globalOptions) *cobra.Command {
	var opts verifyOptions

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Check the database for orphaned references and duplicate natural keys",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.workers < 1 {
				return usageErrorf("--workers must be at least 1")
			}
			cfg, logger, err := setup(g)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			conn, err := db.Open(cmd.Context(), cfg)
			if err != nil {
				return withCode(exitFailure, err)
			}
			defer conn.Close()

			results := verify.Run(cmd.Context(), conn, verify.Checks(), opts.workers, nil)

			if opts.out != "" {
				f, err := os.Create(opts.out)
				if err != nil {
					return withCode(exitFailure, errors.Wrap(err, "create output"))
				}
				werr := verify.WriteResultsCSV(f, results)
				if cerr := f.Close(); werr == nil {
					werr = cerr
				}
				if werr != nil {
					return withCode(exitFailure, werr)
				}
			}

			w := cmd.OutOrStdout()
			for _, r := range results {
				if r.OK() {
					continue
				}
				if r.Err != nil {
					fmt.Fprintf(w, "FAIL %-40s error: %v\n", r.Check.Name, r.Err)
					continue
				}
				fmt.Fprintf(w, "FAIL %-40s %d %s\n", r.Check.Name, r.Count, r.Check.Kind)
			}
			failed := verify.Failed(results)
			fmt.Fprintf(w, "%d checks, %d failed\n", len(results), failed)
			if failed > 0 {
				return withCode(exitFailure, errors.Errorf("%d verification checks failed", failed))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&opts.out, "out", "", "Also write all results to this CSV file")
	cmd.Flags().IntVar(&opts.workers, "workers", 4, "Number of checks to run in parallel")
	return cmd
}
