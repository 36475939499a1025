package registry

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/caseflow/caseflow/pkg/workflow"
)

func TestRenderParseRoundTrip(t *testing.T) {
	doc := &Document{
		TopicID: "tidal-drift",
		Status:  workflow.TopicActive,
		Cases: []workflow.CaseRow{
			{ID: "A1", Status: workflow.CaseComplete, Title: "Baseline fit", SpecPath: "cases/A1.md"},
			{ID: "A2", Status: workflow.CasePending, Title: "Drift model", SpecPath: "cases/A2.md",
				ConfirmNote: "confirm sampling window"},
		},
	}

	parsed, err := ParseDocument(doc.Render())
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if diff := cmp.Diff(doc, parsed); diff != "" {
		t.Errorf("Round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestParseKeepsEveryCaseReference(t *testing.T) {
	doc := &Document{
		TopicID: "t",
		Status:  workflow.TopicActive,
		Cases: []workflow.CaseRow{
			{ID: "A1", Status: workflow.CasePending, Title: "One", SpecPath: "cases/A1.md",
				ConfirmNote: "confirm upstream data"},
			{ID: "A2", Status: workflow.CasePending, Title: "Two", SpecPath: "cases/A2.md"},
			{ID: "A3", Status: workflow.CasePending, Title: "Three", SpecPath: "cases/A3.md"},
		},
	}

	parsed, err := ParseDocument(doc.Render())
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	// Every row keeps its spec link and note, not just the final one.
	for i, row := range parsed.Cases {
		if row.SpecPath != doc.Cases[i].SpecPath {
			t.Errorf("Case %s: expected spec path %q, got %q", row.ID, doc.Cases[i].SpecPath, row.SpecPath)
		}
	}
	if parsed.Cases[0].ConfirmNote != "confirm upstream data" {
		t.Errorf("Expected confirm note on first row, got %q", parsed.Cases[0].ConfirmNote)
	}
}

func TestRenderIsByteStable(t *testing.T) {
	doc := &Document{
		TopicID: "t",
		Status:  workflow.TopicPlanning,
		Cases: []workflow.CaseRow{
			{ID: "A1", Status: workflow.CasePending, Title: "One", SpecPath: "cases/A1.md"},
		},
	}

	first := doc.Render()
	parsed, err := ParseDocument(first)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if second := parsed.Render(); second != first {
		t.Errorf("Expected byte-stable render.\nfirst:\n%s\nsecond:\n%s", first, second)
	}
}

func TestParseDocumentRejectsMalformedContent(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"missing title", "Status: Active\n"},
		{"missing status", "# Topic registry: t\n"},
		{"bad status", "# Topic registry: t\n\nStatus: Finished\n"},
		{"bad case status", "# Topic registry: t\n\nStatus: Active\n\n| Case | Status | Title |\n|---|---|---|\n| A1 | Done | X |\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseDocument(tt.content)
			if err == nil {
				t.Fatal("Expected parse error, got nil")
			}
			if !workflow.IsCode(err, workflow.CodeParse) {
				t.Errorf("Expected PARSE_ERROR, got: %v", err)
			}
		})
	}
}

func TestRowLookup(t *testing.T) {
	doc := &Document{
		TopicID: "t",
		Status:  workflow.TopicActive,
		Cases: []workflow.CaseRow{
			{ID: "A1", Status: workflow.CasePending, Title: "One"},
		},
	}
	if doc.Row("A1") == nil {
		t.Error("Expected to find row A1")
	}
	if doc.Row("A9") != nil {
		t.Error("Expected nil for unknown case")
	}
}
