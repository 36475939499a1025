package registry

import (
	"fmt"
	"strings"

	"github.com/caseflow/caseflow/pkg/workflow"
)

// Document is the parsed form of a topic registry document. It renders
// back to a canonical byte-stable layout so that rewriting an unchanged
// document is a no-op at the byte level.
type Document struct {
	// TopicID is the topic identifier from the title line.
	TopicID string

	// Status is the topic's lifecycle status line.
	Status workflow.TopicStatus

	// Cases holds the case table rows in document order.
	Cases []workflow.CaseRow
}

const (
	titlePrefix   = "# Topic registry: "
	statusPrefix  = "Status: "
	refsHeading   = "## Case references"
	confirmPrefix = "Pre-run: "
)

// ParseDocument parses a registry document. Structural mismatches fail
// loudly; the registry is never guessed at.
func ParseDocument(content string) (*Document, error) {
	lines := strings.Split(content, "\n")
	doc := &Document{}
	// Rows are resolved by index; appends reallocate doc.Cases, so a
	// pointer taken during table parsing would go stale.
	rows := map[string]int{}

	section := ""
	for i := 0; i < len(lines); i++ {
		line := strings.TrimRight(lines[i], " \t")
		switch {
		case strings.HasPrefix(line, titlePrefix):
			doc.TopicID = strings.TrimSpace(strings.TrimPrefix(line, titlePrefix))
		case strings.HasPrefix(line, statusPrefix):
			st := workflow.TopicStatus(strings.TrimSpace(strings.TrimPrefix(line, statusPrefix)))
			if err := st.Validate(); err != nil {
				return nil, workflow.NewParseError("Status", err.Error())
			}
			doc.Status = st
		case strings.HasPrefix(line, "| Case "), strings.HasPrefix(line, "|---"), strings.HasPrefix(line, "|-"):
			// table header and separator
		case strings.HasPrefix(line, "| "):
			row, err := parseTableRow(line)
			if err != nil {
				return nil, err
			}
			doc.Cases = append(doc.Cases, row)
			rows[row.ID] = len(doc.Cases) - 1
		case line == refsHeading:
			section = "refs"
		case section == "refs" && strings.HasPrefix(line, "- "):
			id, specPath, err := parseReference(line)
			if err != nil {
				return nil, err
			}
			if idx, ok := rows[id]; ok {
				doc.Cases[idx].SpecPath = specPath
			}
			// An indented Pre-run line belongs to this reference.
			if i+1 < len(lines) {
				next := strings.TrimSpace(lines[i+1])
				if strings.HasPrefix(next, confirmPrefix) {
					if idx, ok := rows[id]; ok {
						doc.Cases[idx].ConfirmNote = strings.TrimPrefix(next, confirmPrefix)
					}
					i++
				}
			}
		}
	}

	if doc.TopicID == "" {
		return nil, workflow.NewParseError("registry", "missing topic registry title line")
	}
	if doc.Status == "" {
		return nil, workflow.NewParseError("registry", "missing Status line")
	}
	return doc, nil
}

func parseTableRow(line string) (workflow.CaseRow, error) {
	cells := strings.Split(strings.Trim(line, "|"), "|")
	if len(cells) != 3 {
		return workflow.CaseRow{}, workflow.NewParseError(line, "case table row must have 3 cells")
	}
	row := workflow.CaseRow{
		ID:     strings.TrimSpace(cells[0]),
		Status: workflow.CaseStatus(strings.TrimSpace(cells[1])),
		Title:  strings.TrimSpace(cells[2]),
	}
	if row.ID == "" {
		return workflow.CaseRow{}, workflow.NewParseError(line, "empty case identifier")
	}
	if err := row.Status.Validate(); err != nil {
		return workflow.CaseRow{}, workflow.NewParseError(line, err.Error())
	}
	return row, nil
}

func parseReference(line string) (id, specPath string, err error) {
	// "- A1: [spec](cases/A1.md)"
	rest := strings.TrimPrefix(line, "- ")
	id, link, found := strings.Cut(rest, ": ")
	if !found {
		return "", "", workflow.NewParseError(line, "malformed case reference")
	}
	link = strings.TrimSpace(link)
	if !strings.HasPrefix(link, "[spec](") || !strings.HasSuffix(link, ")") {
		return "", "", workflow.NewParseError(line, "case reference must link its spec document")
	}
	return strings.TrimSpace(id), strings.TrimSuffix(strings.TrimPrefix(link, "[spec]("), ")"), nil
}

// Render produces the canonical document text.
func (d *Document) Render() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s%s\n\n", titlePrefix, d.TopicID)
	fmt.Fprintf(&b, "%s%s\n", statusPrefix, d.Status)

	if len(d.Cases) > 0 {
		b.WriteString("\n| Case | Status | Title |\n")
		b.WriteString("|------|--------|-------|\n")
		for _, row := range d.Cases {
			fmt.Fprintf(&b, "| %s | %s | %s |\n", row.ID, row.Status, row.Title)
		}
		fmt.Fprintf(&b, "\n%s\n", refsHeading)
		for _, row := range d.Cases {
			fmt.Fprintf(&b, "\n- %s: [spec](%s)\n", row.ID, row.SpecPath)
			if row.ConfirmNote != "" {
				fmt.Fprintf(&b, "  %s%s\n", confirmPrefix, row.ConfirmNote)
			}
		}
	}
	return b.String()
}

// Row returns the case row with the given ID, or nil.
func (d *Document) Row(caseID string) *workflow.CaseRow {
	for i := range d.Cases {
		if d.Cases[i].ID == caseID {
			return &d.Cases[i]
		}
	}
	return nil
}
