package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-faster/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"dashimport/internal/ingest/config"
)

type globalOptions struct {
	verbose bool
	json    bool
}

func newRootCmd() *cobra.Command {
	var g globalOptions

	cmd := &cobra.Command{
		Use:           "dashimport",
		Short:         "Import dashboard spreadsheet exports into the program database",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().BoolVarP(&g.verbose, "verbose", "v", false, "Debug logging")
	cmd.PersistentFlags().BoolVar(&g.json, "json", false, "Print the result as JSON")

	cmd.AddCommand(newRunCmd(&g))
	cmd.AddCommand(newBudgetCmd(&g))
	cmd.AddCommand(newStaffCmd(&g))
	cmd.AddCommand(newCommsCmd(&g))
	cmd.AddCommand(newMigrateCmd(&g))
	cmd.AddCommand(newVerifyCmd(&g))
	return cmd
}

func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		code := exitCode(err)
		// cobra's own flag and argument errors are usage errors
		if code == exitFailure && isCobraUsage(err) {
			code = exitUsage
		}
		fmt.Fprintln(os.Stderr, "error:", err.Error())
		os.Exit(code)
	}
}

func isCobraUsage(err error) bool {
	msg := err.Error()
	for _, p := range []string{"unknown flag", "unknown shorthand flag", "unknown command", "accepts ", "requires at least", "flag needs an argument", "invalid argument"} {
		if strings.Contains(msg, p) {
			return true
		}
	}
	return false
}

// setup loads the configuration and builds the logger every subcommand uses.
func setup(g *globalOptions) (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, withCode(exitFailure, err)
	}
	logger, err := newLogger(cfg.LogLevel, g.verbose)
	if err != nil {
		return nil, nil, withCode(exitUsage, err)
	}
	return cfg, logger, nil
}

func newLogger(level string, verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid LOG_LEVEL %q", level)
	}
	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(lvl)
	zc.Encoding = "console"
	zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zc.DisableStacktrace = true
	return zc.Build()
}
