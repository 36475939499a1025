package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/caseflow/caseflow/pkg/registry"
	"github.com/caseflow/caseflow/pkg/scaffold"
	"github.com/caseflow/caseflow/pkg/workflow"
)

func newScaffoldCommand(version string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scaffold [topic]",
		Short: "Scaffold case specs from the topic's planning document",
		Long: `Parse the approved planning document of a topic in Planning status,
write one fully resolved case spec per case block, register the cases in
the topic registry, create the topic summary, archive the plan, and
transition the topic to Active.

Scaffolding is idempotent: spec documents with resolved content are never
overwritten, and an already archived plan stays archived.`,
		Example: `  # Scaffold the topic currently in Planning status
  caseflow scaffold

  # Scaffold a specific topic
  caseflow scaffold tidal-drift`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, cleanup, err := newApp(version)
			if err != nil {
				return err
			}
			defer cleanup()

			topicID := ""
			if len(args) == 1 {
				topicID = args[0]
			} else {
				// A Planning topic is the normal target; falling back to the
				// Active one makes a repeated scaffold a no-op instead of an
				// error.
				topic, err := a.registry.FindTopicByStatus(workflow.TopicPlanning)
				if errors.Is(err, registry.ErrNotFound) {
					topic, err = a.registry.FindTopicByStatus(workflow.TopicActive)
				}
				if errors.Is(err, registry.ErrNotFound) {
					return workflow.NewNoActiveTopicError(nil)
				}
				if err != nil {
					return err
				}
				topicID = topic.ID
			}

			scaffolder := scaffold.New(a.store, a.registry, a.logger)
			scaffolder.PlanName = a.cfg.PlanName
			result, err := scaffolder.Scaffold(topicID)
			if err != nil {
				return err
			}

			fmt.Printf("Topic %s is now Active\n", result.TopicID)
			for _, path := range result.Written {
				fmt.Printf("  wrote   %s\n", path)
			}
			for _, path := range result.Skipped {
				fmt.Printf("  skipped %s (already resolved)\n", path)
			}
			if result.SummaryCreated {
				fmt.Println("  created topic summary")
			}
			if result.PlanArchived {
				fmt.Println("  archived planning document")
			}
			return nil
		},
	}
	return cmd
}
