package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/caseflow/caseflow/pkg/config"
	"github.com/caseflow/caseflow/pkg/docstore"
	"github.com/caseflow/caseflow/pkg/registry"
	"github.com/caseflow/caseflow/pkg/telemetry"
)

var (
	// Global flags
	configPath string
	verbose    bool
	jsonOutput bool
)

// Execute runs the root command.
func Execute(ctx context.Context, version, commit, buildDate string) error {
	rootCmd := newRootCommand(version, commit, buildDate)
	return rootCmd.ExecuteContext(ctx)
}

func newRootCommand(version, commit, buildDate string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "caseflow",
		Short: "Caseflow - research workflow orchestrator",
		Long: `Caseflow turns approved planning documents into executable case specs
and runs each case's deliverables in a fixed, verifiable order.

The documents are the database: topic registries, case specs and topic
summaries live as markdown files under topics/, and every status change
is a document edit.`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildDate),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.FileName, "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output in JSON format")

	rootCmd.AddCommand(newTopicCommand(version))
	rootCmd.AddCommand(newScaffoldCommand(version))
	rootCmd.AddCommand(newRunCommand(version))
	rootCmd.AddCommand(newStatusCommand(version))
	rootCmd.AddCommand(newMarkCommand(version))
	rootCmd.AddCommand(newHistoryCommand(version))

	return rootCmd
}

// app bundles the collaborators every subcommand needs.
type app struct {
	cfg      *config.Config
	logger   zerolog.Logger
	store    *docstore.Store
	registry *registry.Registry
	metrics  *telemetry.Metrics
	tracer   *telemetry.Tracer
}

// newApp loads configuration and builds the shared stack. The returned
// cleanup flushes traces and optionally dumps metrics; call it on the way
// out of every subcommand.
func newApp(version string) (*app, func(), error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}

	tcfg := cfg.TelemetryConfigFor(version)
	if verbose {
		tcfg.Logging.Level = "debug"
	}
	if err := tcfg.Validate(); err != nil {
		return nil, nil, err
	}

	logger, err := telemetry.NewLogger(tcfg.Logging)
	if err != nil {
		return nil, nil, err
	}
	tracer, err := telemetry.NewTracer(tcfg.Tracing, tcfg.ServiceName, tcfg.ServiceVersion)
	if err != nil {
		return nil, nil, err
	}
	metrics, err := telemetry.NewMetrics(tcfg.Metrics)
	if err != nil {
		return nil, nil, err
	}

	store, err := docstore.New(cfg.Root, logger)
	if err != nil {
		return nil, nil, err
	}

	a := &app{
		cfg:      cfg,
		logger:   logger,
		store:    store,
		registry: registry.New(store, logger),
		metrics:  metrics,
		tracer:   tracer,
	}
	cleanup := func() {
		if tcfg.Metrics.DumpOnExit {
			if err := metrics.Dump(os.Stderr); err != nil {
				logger.Warn().Err(err).Msg("metrics dump failed")
			}
		}
		if err := tracer.Shutdown(context.Background()); err != nil {
			logger.Warn().Err(err).Msg("tracer shutdown failed")
		}
	}
	return a, cleanup, nil
}
