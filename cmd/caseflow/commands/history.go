package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/caseflow/caseflow/pkg/stores"
)

func newHistoryCommand(version string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history <case>",
		Short: "Show recorded runs of a case",
		Long: `List every recorded run attempt of a case of the current topic, most
recent first, with its stage results and event log. Requires run history
to be enabled in the project configuration.`,
		Example: `  caseflow history A1
  caseflow history A1 --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			caseID := args[0]

			a, cleanup, err := newApp(version)
			if err != nil {
				return err
			}
			defer cleanup()

			if !a.cfg.History.Enabled {
				return fmt.Errorf("run history is disabled; enable history in %s", configPath)
			}

			topic, err := a.registry.CurrentTopic()
			if err != nil {
				return err
			}

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

			runs, err := history.ListRuns(cmd.Context(), topic.ID, caseID)
			if err != nil {
				return err
			}

			type runView struct {
				Run    stores.Run           `json:"run"`
				Stages []stores.StageResult `json:"stages"`
				Events []stores.Event       `json:"events"`
			}
			views := make([]runView, 0, len(runs))
			for _, run := range runs {
				stages, err := history.ListStageResults(cmd.Context(), run.ID)
				if err != nil {
					return err
				}
				events, err := history.ListEvents(cmd.Context(), run.ID)
				if err != nil {
					return err
				}
				views = append(views, runView{Run: run, Stages: stages, Events: events})
			}

			if jsonOutput {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(views)
			}

			if len(views) == 0 {
				fmt.Printf("No recorded runs for case %s.\n", caseID)
				return nil
			}
			for _, v := range views {
				fmt.Printf("%s [%s] started %s\n", v.Run.ID, v.Run.Status,
					v.Run.StartedAt.Format(time.RFC3339))
				if v.Run.Error != "" {
					fmt.Printf("  error: %s\n", v.Run.Error)
				}
				for _, stage := range v.Stages {
					fmt.Printf("  [%s] %s exit=%d %dms\n", stage.Kind, stage.Script, stage.ExitCode, stage.DurationMS)
				}
				for _, ev := range v.Events {
					fmt.Printf("  %-5s %s\n", ev.Level, ev.Message)
				}
			}
			return nil
		},
	}
	return cmd
}
