package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"dashimport/internal/ingest/config"
	"dashimport/internal/ingest/db"
	"dashimport/internal/ingest/normalize"
	"dashimport/internal/ingest/project"
	"dashimport/internal/ingest/store"
)

type projectOptions struct {
	slug string
	file string
	year int
}

func (o *projectOptions) bind(cmd *cobra.Command, withYear bool) {
	cmd.Flags().StringVar(&o.slug, "project", "", "Project slug (required)")
	cmd.Flags().StringVar(&o.file, "file", "", "Input file (required)")
	if withYear {
		cmd.Flags().IntVar(&o.year, "year", 0, "Fiscal year, e.g. 2026 (default: the current one)")
	}
}

func (o *projectOptions) check() error {
	o.slug = strings.TrimSpace(o.slug)
	if o.slug == "" {
		return usageErrorf("--project is required")
	}
	if strings.TrimSpace(o.file) == "" {
		return usageErrorf("--file is required")
	}
	if o.year < 0 {
		return usageErrorf("invalid --year %d", o.year)
	}
	return nil
}

type importFunc func(ctx context.Context, im *project.Importer, o *projectOptions) (*project.Result, error)

func newProjectCmd(g *globalOptions, use, short string, withYear bool, run importFunc) *cobra.Command {
	var opts projectOptions
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.check(); err != nil {
				return err
			}
			cfg, logger, err := setup(g)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()
			if withYear && opts.year == 0 {
				opts.year = normalize.FiscalYearOf(time.Now(), cfg.Import.FiscalYearStartMonth)
			}

			res, err := withImporter(cmd.Context(), cfg, logger, func(im *project.Importer) (*project.Result, error) {
				return run(cmd.Context(), im, &opts)
			})
			if err != nil {
				return withCode(exitFailure, err)
			}
			return printProjectResult(cmd.OutOrStdout(), use, res, g.json)
		},
	}
	opts.bind(cmd, withYear)
	return cmd
}

func newBudgetCmd(g *globalOptions) *cobra.Command {
	return newProjectCmd(g, "budget", "Replace a project's budget lines from a raw budget export", true,
		func(ctx context.Context, im *project.Importer, o *projectOptions) (*project.Result, error) {
			return im.BudgetFile(ctx, o.slug, o.file, o.year)
		})
}

func newStaffCmd(g *globalOptions) *cobra.Command {
	return newProjectCmd(g, "staff", "Replace a project's staff allocations from a raw hours export", true,
		func(ctx context.Context, im *project.Importer, o *projectOptions) (*project.Result, error) {
			return im.StaffFile(ctx, o.slug, o.file, o.year)
		})
}

func newCommsCmd(g *globalOptions) *cobra.Command {
	return newProjectCmd(g, "comms", "Import a Markdown comms brief into a project's comms profile", false,
		func(ctx context.Context, im *project.Importer, o *projectOptions) (*project.Result, error) {
			return im.CommsFile(ctx, o.slug, o.file)
		})
}

func withImporter(ctx context.Context, cfg *config.Config, logger *zap.Logger, fn func(*project.Importer) (*project.Result, error)) (*project.Result, error) {
	conn, err := db.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}
	defer conn.Close()
	return fn(project.NewImporter(store.New(conn), cfg.Import.FiscalYearStartMonth, logger))
}

func printProjectResult(w io.Writer, what string, res *project.Result, asJSON bool) error {
	if asJSON {
		body, err := sonic.Marshal(res)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(body))
		return err
	}
	fmt.Fprintf(w, "%s %s: %d inserted, %d replaced, %d skipped\n", what, res.Project, res.Inserted, res.Deleted, res.Skipped)
	if len(res.Scope) > 0 {
		fmt.Fprintf(w, "  scope: %s\n", strings.Join(res.Scope, ", "))
	}
	for _, msg := range res.Warnings {
		fmt.Fprintf(w, "  - %s\n", msg)
	}
	return nil
}
