package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/caseflow/caseflow/pkg/engine"
	"github.com/caseflow/caseflow/pkg/workflow"
)

func newMarkCommand(version string) *cobra.Command {
	var status string

	cmd := &cobra.Command{
		Use:   "mark <case>",
		Short: "Mark a case of the current topic Blocked or Abandoned",
		Long: `Record a human decision about a case that will not complete: Blocked
for cases waiting on something external, Abandoned for cases that are
dropped. Complete is never set by hand; only a successful run commits it.`,
		Example: `  caseflow mark A3 --status blocked
  caseflow mark A3 --status abandoned`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			caseID := args[0]

			target := workflow.CaseStatus(capitalize(status))
			if target != workflow.CaseBlocked && target != workflow.CaseAbandoned {
				return fmt.Errorf("--status must be blocked or abandoned, got %q", status)
			}

			a, cleanup, err := newApp(version)
			if err != nil {
				return err
			}
			defer cleanup()

			topic, err := a.registry.CurrentTopic()
			if err != nil {
				return err
			}
			var title string
			found := false
			for _, row := range topic.Cases {
				if row.ID != caseID {
					continue
				}
				if row.Status.IsTerminal() {
					return workflow.NewInvalidTransitionError(topic.ID,
						fmt.Sprintf("case %s is already %s", caseID, row.Status))
				}
				title, found = row.Title, true
			}
			if !found {
				return workflow.NewInvalidTransitionError(topic.ID,
					fmt.Sprintf("case %s is not registered", caseID))
			}

			// The propagator records the decision in both shared documents:
			// the summary gets a results-free block, the registry the cell.
			propagator := engine.NewPropagator(a.store, a.registry, a.logger)
			c := &workflow.Case{ID: caseID, TopicID: topic.ID, Title: title}
			if err := propagator.Commit(c, target, nil); err != nil {
				return err
			}
			fmt.Printf("Case %s marked %s\n", caseID, target)
			return nil
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "target status: blocked or abandoned")
	_ = cmd.MarkFlagRequired("status")

	return cmd
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	if s[0] >= 'a' && s[0] <= 'z' {
		return string(s[0]-'a'+'A') + s[1:]
	}
	return s
}
