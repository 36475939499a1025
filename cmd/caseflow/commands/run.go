package commands

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/caseflow/caseflow/pkg/engine"
	"github.com/caseflow/caseflow/pkg/policy"
	"github.com/caseflow/caseflow/pkg/stores"
)

func newRunCommand(version string) *cobra.Command {
	var (
		confirm bool
		fresh   bool
	)

	cmd := &cobra.Command{
		Use:   "run <case>",
		Short: "Execute a case of the current topic",
		Long: `Execute one case end to end: check prerequisites, materialize the
stage scripts from the spec document, run every analysis stage, then every
visualization stage, then the verification stage, and on full success
generate the report and commit Complete into the topic documents.

The sequence is fail-fast. Any stage failure, missing artifact or failing
verification assertion aborts the run and leaves the registry untouched.`,
		Example: `  # Run case A2 of the current topic
  caseflow run A2

  # Acknowledge outstanding confirmation items
  caseflow run A2 --confirm

  # Start a fresh attempt on a case already in a terminal status
  caseflow run A2 --fresh`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			caseID := args[0]

			a, cleanup, err := newApp(version)
			if err != nil {
				return err
			}
			defer cleanup()

			policyEngine := policy.NewEngine(a.logger)
			if len(a.cfg.Policy.Paths) > 0 {
				if err := policyEngine.LoadPolicies(cmd.Context(), a.cfg.Policy.Paths); err != nil {
					return err
				}
			}

			opts := engine.RunnerOptions{
				Gate:    policy.NewGate(policyEngine),
				Metrics: a.metrics,
				Version: version,
			}

			if a.cfg.History.Enabled {
				dbPath := a.cfg.History.Path
				if !filepath.IsAbs(dbPath) {
					dbPath = filepath.Join(a.store.Root(), dbPath)
				}
				history, err := stores.NewSQLiteStore(dbPath)
				if err != nil {
					return err
				}
				if err := history.Init(cmd.Context()); err != nil {
					return err
				}
				defer history.Close()
				if err := history.Migrate(cmd.Context()); err != nil {
					return err
				}
				opts.Recorder = stores.NewRecorder(history)
			}

			launcher := engine.NewLocalLauncher(a.cfg.Interpreters, a.logger)
			runner := engine.NewRunner(a.store, a.registry, launcher, a.logger, opts)

			report, err := runner.Run(cmd.Context(), caseID, engine.RunOptions{
				Confirmed: confirm,
				Fresh:     fresh,
			})
			if err != nil {
				return err
			}

			fmt.Printf("Case %s complete (run %s)\n", report.CaseID, report.RunID)
			for _, stage := range report.Stages {
				fmt.Printf("  [%s] %s exit=%d %s\n",
					stage.Kind, stage.Script, stage.ExitCode, stage.Duration.Round(time.Millisecond))
			}
			if len(report.Passed) > 0 {
				fmt.Printf("  verification: %d assertions passed\n", len(report.Passed))
			}
			if report.ReportPath != "" {
				fmt.Printf("  report: %s\n", report.ReportPath)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&confirm, "confirm", false, "acknowledge outstanding confirmation items")
	cmd.Flags().BoolVar(&fresh, "fresh", false, "start a new attempt on a terminal case")

	return cmd
}
