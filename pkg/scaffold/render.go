package scaffold

import (
	"fmt"
	"strings"

	"github.com/caseflow/caseflow/pkg/docstore"
	"github.com/caseflow/caseflow/pkg/workflow"
)

// PlaceholderMarker marks an unresolved spot in a spec document. A spec
// document containing this marker is not fully resolved and may be
// overwritten by a later scaffold; one without it never is.
const PlaceholderMarker = "[[TBD]]"

// RenderSpec produces the full case spec document for a parsed case block.
func RenderSpec(topicID string, block *CaseBlock) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Case %s: %s\n\n", block.ID, block.Title)
	fmt.Fprintf(&b, "Status: %s\n\n", workflow.CasePending)

	b.WriteString("## Intent\n\n")
	fmt.Fprintf(&b, "%s\n\n", block.Intent)

	b.WriteString("## Data context\n\n")
	if len(block.Requires) == 0 {
		b.WriteString("No prerequisite artifacts.\n\n")
	} else {
		for _, edge := range block.Requires {
			b.WriteString("- requires: " + edge.ArtifactPath)
			if edge.UpstreamCase != "" {
				source := edge.UpstreamCase
				if edge.UpstreamTopic != "" {
					source = edge.UpstreamTopic + "/" + edge.UpstreamCase
				}
				fmt.Fprintf(&b, " [from %s]", source)
			}
			if edge.Confirm {
				b.WriteString(" " + ConfirmMarker)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	b.WriteString("## Conventions\n\n")
	fmt.Fprintf(&b, "Base directory: %s\n", docstore.TopicDir(topicID))
	fmt.Fprintf(&b, "Scripts: %s/, %s/\n", docstore.SourceDir, docstore.TestsDir)
	fmt.Fprintf(&b, "Artifacts: %s/\n", docstore.OutputDir)
	fmt.Fprintf(&b, "Reports: %s/\n\n", docstore.ReportsDir)

	b.WriteString("## Planned outputs\n\n")
	for i, out := range block.Outputs {
		fmt.Fprintf(&b, "%d. %s\n", i+1, renderOutputLine(out))
	}
	b.WriteString("\n")

	for i, out := range block.Outputs {
		fmt.Fprintf(&b, "## %d. [%s] %s\n\n", i+1, out.Kind, out.Path)
		if i < len(block.Sections) {
			fmt.Fprintf(&b, "%s\n\n", strings.TrimRight(block.Sections[i].Body, "\n"))
		} else {
			fmt.Fprintf(&b, "%s\n\n", PlaceholderMarker)
		}
	}

	fmt.Fprintf(&b, "## %d. Commit status\n\n", len(block.Outputs)+1)
	b.WriteString("On full success, record the final case status in the topic registry\n")
	b.WriteString("and append the results block to the topic summary document. No status\n")
	b.WriteString("is committed on any failed run.\n")

	return b.String()
}

func renderOutputLine(d workflow.Deliverable) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s", d.Kind, d.Path)
	if len(d.Outputs) > 0 {
		fmt.Fprintf(&b, " -> %s", strings.Join(d.Outputs, ", "))
	}
	if d.Purpose != "" {
		fmt.Fprintf(&b, " : %s", d.Purpose)
	}
	return b.String()
}

// RenderSummaryHeader produces the header-only topic summary document.
func RenderSummaryHeader(topicID string) string {
	return fmt.Sprintf("# Topic summary: %s\n", topicID)
}
