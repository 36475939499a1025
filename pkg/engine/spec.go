package engine

import (
	"fmt"
	"strings"

	"github.com/caseflow/caseflow/pkg/scaffold"
	"github.com/caseflow/caseflow/pkg/workflow"
)

// ParseSpec parses a case spec document into an executable Case. The spec
// grammar is the one the scaffolder writes; any structural mismatch or
// unresolved placeholder is a hard parse error, never a guess.
func ParseSpec(content, topicID, caseID string) (*workflow.Case, error) {
	c := &workflow.Case{ID: caseID, TopicID: topicID}

	sections, err := splitSections(content, c)
	if err != nil {
		return nil, err
	}

	sawCommit := false
	for _, sec := range sections {
		switch {
		case sec.name == "Intent":
			c.Intent = strings.TrimSpace(sec.body)
		case sec.name == "Data context":
			if err := parseDataContext(sec.body, c); err != nil {
				return nil, err
			}
		case sec.name == "Conventions":
			// informational only
		case sec.name == "Planned outputs":
			if err := parsePlannedOutputs(sec.body, c); err != nil {
				return nil, err
			}
		case strings.HasSuffix(sec.name, "Commit status"):
			sawCommit = true
		default:
			if err := attachSectionContent(sec, c); err != nil {
				return nil, err
			}
		}
	}

	if c.Intent == "" {
		return nil, workflow.NewParseError(caseID, "spec missing Intent section")
	}
	if len(c.Deliverables) == 0 {
		return nil, workflow.NewParseError(caseID, "spec missing Planned outputs")
	}
	if !sawCommit {
		return nil, workflow.NewParseError(caseID, "spec missing commit status section")
	}
	for i := range c.Deliverables {
		d := &c.Deliverables[i]
		if d.Kind.IsStage() && d.Content == "" {
			return nil, workflow.NewParseError(d.Section,
				fmt.Sprintf("stage deliverable %s has no source content", d.Path))
		}
	}
	return c, nil
}

type specSection struct {
	name string
	body string
}

// splitSections cuts the document at "## " headings and extracts the title
// line and status field on the way.
func splitSections(content string, c *workflow.Case) ([]specSection, error) {
	lines := strings.Split(content, "\n")
	var sections []specSection
	var current *specSection

	for _, line := range lines {
		switch {
		case strings.HasPrefix(line, "# Case "):
			rest := strings.TrimPrefix(line, "# Case ")
			id, title, found := strings.Cut(rest, ": ")
			if !found {
				return nil, workflow.NewParseError(line, "malformed spec title")
			}
			if strings.TrimSpace(id) != c.ID {
				return nil, workflow.NewParseError(line,
					fmt.Sprintf("spec document names case %s, expected %s", strings.TrimSpace(id), c.ID))
			}
			c.Title = strings.TrimSpace(title)
		case strings.HasPrefix(line, "Status: ") && current == nil:
			st := workflow.CaseStatus(strings.TrimSpace(strings.TrimPrefix(line, "Status: ")))
			if err := st.Validate(); err != nil {
				return nil, workflow.NewParseError(line, err.Error())
			}
			c.Status = st
		case strings.HasPrefix(line, "## "):
			if current != nil {
				sections = append(sections, *current)
			}
			current = &specSection{name: strings.TrimSpace(strings.TrimPrefix(line, "## "))}
		case current != nil:
			current.body += line + "\n"
		}
	}
	if current != nil {
		sections = append(sections, *current)
	}
	if c.Title == "" {
		return nil, workflow.NewParseError(c.ID, "spec missing title line")
	}
	if c.Status == "" {
		return nil, workflow.NewParseError(c.ID, "spec missing Status field")
	}
	return sections, nil
}

func parseDataContext(body string, c *workflow.Case) error {
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "- requires: ") {
			continue
		}
		edge, err := scaffold.ParseRequireLine("Data context", strings.TrimPrefix(line, "- requires: "))
		if err != nil {
			return err
		}
		c.Prerequisites = append(c.Prerequisites, edge)
		if edge.Confirm {
			c.Confirmations = append(c.Confirmations, workflow.ConfirmationItem{
				CaseID: c.ID,
				Text:   "confirm prerequisite " + edge.ArtifactPath,
			})
		}
	}
	return nil
}

func parsePlannedOutputs(body string, c *workflow.Case) error {
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		// numbered entries: "1. [kind] ..."
		_, entry, found := strings.Cut(line, ". ")
		if !found {
			return workflow.NewParseError("Planned outputs", "entry is not numbered: "+line)
		}
		d, err := scaffold.ParseOutputLine("Planned outputs", entry)
		if err != nil {
			return err
		}
		c.Deliverables = append(c.Deliverables, d)
	}
	return nil
}

// attachSectionContent binds a numbered deliverable section to its planned
// output. The section heading reads "<n>. [<kind>] <path>".
func attachSectionContent(sec specSection, c *workflow.Case) error {
	_, rest, found := strings.Cut(sec.name, ". ")
	if !found || !strings.HasPrefix(rest, "[") {
		return workflow.NewParseError(sec.name, "unrecognized spec section")
	}
	kindToken, path, found := strings.Cut(rest[1:], "] ")
	if !found {
		return workflow.NewParseError(sec.name, "malformed deliverable section heading")
	}
	kind := workflow.DeliverableKind(kindToken)
	path = strings.TrimSpace(path)

	body := strings.Trim(sec.body, "\n")
	if strings.Contains(body, scaffold.PlaceholderMarker) {
		return workflow.NewParseError(sec.name, "spec is not fully resolved: placeholder remains")
	}
	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, scaffold.ConfirmMarker) {
			c.Confirmations = append(c.Confirmations, workflow.ConfirmationItem{
				CaseID: c.ID,
				Text:   strings.TrimSpace(strings.TrimPrefix(trimmed, scaffold.ConfirmMarker)),
			})
		}
	}

	for i := range c.Deliverables {
		d := &c.Deliverables[i]
		if d.Kind == kind && d.Path == path {
			d.Section = sec.name
			d.Content = extractContent(body)
			return nil
		}
	}
	return workflow.NewParseError(sec.name, "section does not match any planned output")
}

// extractContent returns the inside of the first fenced code block, or the
// raw body when no fence is present (report templates are written bare).
func extractContent(body string) string {
	lines := strings.Split(body, "\n")
	start := -1
	for i, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			start = i
			break
		}
	}
	if start < 0 {
		return body
	}
	for j := start + 1; j < len(lines); j++ {
		if strings.TrimSpace(lines[j]) == "```" {
			return strings.Join(lines[start+1:j], "\n") + "\n"
		}
	}
	return body
}
