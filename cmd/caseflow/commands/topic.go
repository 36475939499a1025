package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/caseflow/caseflow/pkg/workflow"
)

func newTopicCommand(version string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "topic",
		Short: "Manage topic lifecycles",
	}
	cmd.AddCommand(newTopicNewCommand(version))
	cmd.AddCommand(newTopicCompleteCommand(version))
	return cmd
}

func newTopicNewCommand(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "new <topic>",
		Short: "Create a topic in Planning status",
		Long: `Create the topic directory with a fresh registry document in Planning
status. At most one topic may hold Planning or Active at a time.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, cleanup, err := newApp(version)
			if err != nil {
				return err
			}
			defer cleanup()

			if err := a.registry.CreateTopic(args[0]); err != nil {
				return err
			}
			fmt.Printf("Topic %s created in Planning status\n", args[0])
			return nil
		},
	}
}

func newTopicCompleteCommand(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "complete <topic>",
		Short: "Transition an Active topic to Complete",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, cleanup, err := newApp(version)
			if err != nil {
				return err
			}
			defer cleanup()

			if err := a.registry.Transition(args[0], workflow.TopicActive, workflow.TopicComplete); err != nil {
				return err
			}
			fmt.Printf("Topic %s is now Complete\n", args[0])
			return nil
		},
	}
}
