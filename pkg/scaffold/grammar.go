package scaffold

import (
	"strings"

	"github.com/caseflow/caseflow/pkg/workflow"
)

// CaseBlock is one typed case block from a planning document. A block is
// delimited by a "## Case" heading and extends to the next same-level
// heading or to a "---" section divider, whichever comes first.
type CaseBlock struct {
	// ID is the case identifier from the block heading.
	ID string

	// Title is the case title from the block heading.
	Title string

	// Intent is the mandatory one-line intent field.
	Intent string

	// Requires lists prerequisite artifact edges.
	Requires []workflow.PrerequisiteEdge

	// Outputs lists the planned deliverables in declared order.
	Outputs []workflow.Deliverable

	// Sections holds the body sections in order. Section k supplies the
	// content of planned output k.
	Sections []Section

	// Confirmations lists "[confirm before running]" flagged items.
	Confirmations []string
}

// Section is a "###"-level body section of a case block.
type Section struct {
	// Heading is the section heading text without the marker.
	Heading string

	// Body is the raw section body, fenced code blocks included.
	Body string
}

const (
	caseHeadingPrefix = "## Case "
	sectionPrefix     = "### "
	divider           = "---"
	intentPrefix      = "Intent: "
	requiresHeading   = "Requires:"
	outputsHeading    = "Outputs:"

	// ConfirmMarker flags an item that requires human resolution before a
	// run. It appears on prerequisite lines and standalone in block bodies.
	ConfirmMarker = "[confirm before running]"
)

// ParseAll parses every case block of a planning document, in order.
// Any structural mismatch aborts the whole parse.
func ParseAll(content string) ([]CaseBlock, error) {
	lines := strings.Split(content, "\n")
	var blocks []CaseBlock
	seen := map[string]bool{}

	for i := 0; i < len(lines); i++ {
		if !strings.HasPrefix(lines[i], caseHeadingPrefix) {
			continue
		}
		end := blockEnd(lines, i+1)
		block, err := parseBlock(lines[i], lines[i+1:end])
		if err != nil {
			return nil, err
		}
		if seen[block.ID] {
			return nil, workflow.NewParseError(lines[i], "duplicate case identifier "+block.ID)
		}
		seen[block.ID] = true
		blocks = append(blocks, *block)
		i = end - 1
	}
	return blocks, nil
}

// blockEnd returns the index of the first line after start that terminates
// a case block: a same-level heading or a section divider.
func blockEnd(lines []string, start int) int {
	for i := start; i < len(lines); i++ {
		trimmed := strings.TrimSpace(lines[i])
		if strings.HasPrefix(lines[i], "## ") || trimmed == divider {
			return i
		}
	}
	return len(lines)
}

func parseBlock(heading string, body []string) (*CaseBlock, error) {
	id, title, err := parseHeading(heading)
	if err != nil {
		return nil, err
	}
	block := &CaseBlock{ID: id, Title: title}

	if len(strings.TrimSpace(strings.Join(body, ""))) == 0 {
		return nil, workflow.NewParseError(heading, "truncated block: no body")
	}

	i := 0
	for ; i < len(body); i++ {
		line := strings.TrimRight(body[i], " \t")
		switch {
		case strings.TrimSpace(line) == "":
		case strings.HasPrefix(line, intentPrefix):
			if block.Intent != "" {
				return nil, workflow.NewParseError(heading, "duplicate Intent field")
			}
			block.Intent = strings.TrimSpace(strings.TrimPrefix(line, intentPrefix))
		case line == requiresHeading:
			i, err = parseRequires(heading, body, i+1, block)
			if err != nil {
				return nil, err
			}
		case line == outputsHeading:
			i, err = parseOutputs(heading, body, i+1, block)
			if err != nil {
				return nil, err
			}
		case strings.HasPrefix(line, sectionPrefix):
			i = parseSections(body, i, block)
		case strings.HasPrefix(strings.TrimSpace(line), ConfirmMarker):
			block.Confirmations = append(block.Confirmations,
				strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), ConfirmMarker)))
		default:
			return nil, workflow.NewParseError(heading, "unexpected content before sections: "+strings.TrimSpace(line))
		}
	}

	if block.Intent == "" {
		return nil, workflow.NewParseError(heading, "missing Intent field")
	}
	if len(block.Outputs) == 0 {
		return nil, workflow.NewParseError(heading, "missing or empty Outputs list")
	}
	if len(block.Sections) > len(block.Outputs) {
		return nil, workflow.NewParseError(heading, "more body sections than planned outputs")
	}
	return block, nil
}

func parseHeading(heading string) (id, title string, err error) {
	rest := strings.TrimPrefix(heading, caseHeadingPrefix)
	id, title, found := strings.Cut(rest, ": ")
	id = strings.TrimSpace(id)
	title = strings.TrimSpace(title)
	if !found || id == "" || title == "" {
		return "", "", workflow.NewParseError(heading, `case heading must read "## Case <ID>: <Title>"`)
	}
	return id, title, nil
}

func parseRequires(heading string, body []string, start int, block *CaseBlock) (int, error) {
	i := start
	for ; i < len(body); i++ {
		line := strings.TrimSpace(body[i])
		if !strings.HasPrefix(line, "- ") {
			break
		}
		edge, err := ParseRequireLine(heading, strings.TrimPrefix(line, "- "))
		if err != nil {
			return 0, err
		}
		block.Requires = append(block.Requires, edge)
		if edge.Confirm {
			block.Confirmations = append(block.Confirmations,
				"confirm prerequisite "+edge.ArtifactPath)
		}
	}
	return i - 1, nil
}

// ParseRequireLine parses a single prerequisite entry:
// "<path> [from <topic>/<case>] [confirm before running]".
func ParseRequireLine(heading, entry string) (workflow.PrerequisiteEdge, error) {
	edge := workflow.PrerequisiteEdge{}
	entry = strings.TrimSpace(entry)
	if strings.HasSuffix(entry, ConfirmMarker) {
		edge.Confirm = true
		entry = strings.TrimSpace(strings.TrimSuffix(entry, ConfirmMarker))
	}
	if idx := strings.Index(entry, " [from "); idx >= 0 {
		from := entry[idx+len(" [from "):]
		if !strings.HasSuffix(from, "]") {
			return edge, workflow.NewParseError(heading, "malformed prerequisite source: "+entry)
		}
		from = strings.TrimSuffix(from, "]")
		topic, caseID, found := strings.Cut(from, "/")
		if found {
			edge.UpstreamTopic, edge.UpstreamCase = topic, caseID
		} else {
			edge.UpstreamCase = from
		}
		entry = strings.TrimSpace(entry[:idx])
	}
	if entry == "" {
		return edge, workflow.NewParseError(heading, "prerequisite entry missing artifact path")
	}
	edge.ArtifactPath = entry
	return edge, nil
}

func parseOutputs(heading string, body []string, start int, block *CaseBlock) (int, error) {
	i := start
	for ; i < len(body); i++ {
		line := strings.TrimSpace(body[i])
		if !strings.HasPrefix(line, "- ") {
			break
		}
		out, err := ParseOutputLine(heading, strings.TrimPrefix(line, "- "))
		if err != nil {
			return 0, err
		}
		block.Outputs = append(block.Outputs, out)
	}
	return i - 1, nil
}

// ParseOutputLine parses a single planned-output entry:
// "[<kind>] <script> -> <artifact>[, <artifact>...] : <purpose>" for stage
// kinds, "[<kind>] <path> : <purpose>" for results and report documents.
func ParseOutputLine(heading, entry string) (workflow.Deliverable, error) {
	var d workflow.Deliverable
	entry = strings.TrimSpace(entry)
	if !strings.HasPrefix(entry, "[") {
		return d, workflow.NewParseError(heading, "planned output missing kind token: "+entry)
	}
	kind, rest, found := strings.Cut(entry[1:], "] ")
	if !found {
		return d, workflow.NewParseError(heading, "planned output missing kind token: "+entry)
	}
	d.Kind = workflow.DeliverableKind(kind)
	if err := d.Kind.Validate(); err != nil {
		return d, workflow.NewParseError(heading, err.Error())
	}

	if idx := strings.LastIndex(rest, " : "); idx >= 0 {
		d.Purpose = strings.TrimSpace(rest[idx+3:])
		rest = strings.TrimSpace(rest[:idx])
	}

	if d.Kind.IsStage() {
		script, outputs, found := strings.Cut(rest, " -> ")
		if !found {
			return d, workflow.NewParseError(heading,
				"stage output must declare produced artifacts with ->: "+entry)
		}
		d.Path = strings.TrimSpace(script)
		for _, artifact := range strings.Split(outputs, ",") {
			d.Outputs = append(d.Outputs, strings.TrimSpace(artifact))
		}
	} else {
		if strings.Contains(rest, " -> ") {
			return d, workflow.NewParseError(heading,
				"document output must not declare -> artifacts: "+entry)
		}
		d.Path = strings.TrimSpace(rest)
	}
	if d.Path == "" {
		return d, workflow.NewParseError(heading, "planned output missing path: "+entry)
	}
	return d, nil
}

func parseSections(body []string, start int, block *CaseBlock) int {
	heading := strings.TrimSpace(strings.TrimPrefix(body[start], sectionPrefix))
	var content []string
	i := start + 1
	for ; i < len(body); i++ {
		if strings.HasPrefix(body[i], sectionPrefix) {
			break
		}
		line := strings.TrimSpace(body[i])
		if strings.HasPrefix(line, ConfirmMarker) {
			block.Confirmations = append(block.Confirmations,
				strings.TrimSpace(strings.TrimPrefix(line, ConfirmMarker)))
			continue
		}
		content = append(content, body[i])
	}
	block.Sections = append(block.Sections, Section{
		Heading: heading,
		Body:    strings.Trim(strings.Join(content, "\n"), "\n"),
	})
	if i < len(body) {
		return parseSections(body, i, block)
	}
	return i - 1
}
