package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newStatusCommand(version string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show every topic and its case statuses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, cleanup, err := newApp(version)
			if err != nil {
				return err
			}
			defer cleanup()

			topics, err := a.registry.Topics()
			if err != nil {
				return err
			}

			if jsonOutput {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(topics)
			}

			if len(topics) == 0 {
				fmt.Println("No topics.")
				return nil
			}
			for _, topic := range topics {
				fmt.Printf("%s [%s]\n", topic.ID, topic.Status)
				for _, row := range topic.Cases {
					note := ""
					if row.ConfirmNote != "" {
						note = "  (pre-run: " + row.ConfirmNote + ")"
					}
					fmt.Printf("  %-8s %-12s %s%s\n", row.ID, row.Status, row.Title, note)
				}
			}
			return nil
		},
	}
	return cmd
}
