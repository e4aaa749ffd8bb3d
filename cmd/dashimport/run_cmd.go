package main

import (
	"os"

	"github.com/go-faster/errors"
	"github.com/spf13/cobra"

	"dashimport/internal/ingest/pipeline"
	"dashimport/internal/report"
)

type runOptions struct {
	report    string
	exclusive bool
}

func newRunCmd(g *globalOptions) *cobra.Command {
	var opts runOptions

	cmd := &cobra.Command{
		Use:   "run <root>",
		Short: "Import every bundle directory under root",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup(g)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			res, err := pipeline.RunWithConfig(cmd.Context(), pipeline.RunConfig{
				Config:    cfg,
				Exclusive: opts.exclusive,
				Logger:    logger,
			}, args[0])
			if err != nil {
				return withCode(exitFailure, err)
			}

			if opts.report != "" {
				if err := writeReport(opts.report, res.Warnings); err != nil {
					return withCode(exitFailure, err)
				}
			}
			if g.json {
				body, err := res.JSON()
				if err != nil {
					return withCode(exitFailure, err)
				}
				_, err = cmd.OutOrStdout().Write(append(body, '\n'))
				return err
			}
			return res.WriteSummary(cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&opts.report, "report", "", "Write warnings and skips to this CSV file")
	cmd.Flags().BoolVar(&opts.exclusive, "exclusive", false, "Hold a database lock so concurrent runs fail fast")
	return cmd
}

func writeReport(path string, warnings []string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "create report")
	}
	if err := report.WriteWarnings(f, warnings); err != nil {
		_ = f.Close()
		return errors.Wrap(err, "write report")
	}
	return f.Close()
}
