package engine

import (
	"strings"
	"testing"
	"time"

	"github.com/caseflow/caseflow/pkg/workflow"
)

func reportCase() *workflow.Case {
	return &workflow.Case{
		ID:      "A1",
		TopicID: "t1",
		Title:   "Baseline fit",
		Deliverables: []workflow.Deliverable{
			{Kind: workflow.KindResults, Path: "output/case-a1-results.json"},
		},
	}
}

func TestGenerateReportIsDeterministic(t *testing.T) {
	in := ReportInput{
		Case:     reportCase(),
		Template: "Period is {{ round(period, 2) }} for case {{ case['id'] }} (raw {{ results['case-a1-results']['period'] }}).",
		Results: map[string]interface{}{
			"case-a1-results": map[string]interface{}{"period": 1.2345},
		},
		Now:     time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Version: "test",
	}

	want := "# Report: Case A1: Baseline fit\n" +
		"\n" +
		"Version: caseflow test\n" +
		"Date: 2026-01-02\n" +
		"\n" +
		"Period is 1.23 for case A1 (raw 1.2345).\n" +
		"\n" +
		"---\n" +
		"Generated by caseflow test at 2026-01-02T03:04:05Z.\n"

	first, err := GenerateReport(in)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if first != want {
		t.Errorf("Unexpected report:\n%s\nwant:\n%s", first, want)
	}

	second, err := GenerateReport(in)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if second != first {
		t.Error("Expected byte-identical reports with a fixed clock")
	}
}

func TestGenerateReportRejectsUnknownNames(t *testing.T) {
	in := ReportInput{
		Case:     reportCase(),
		Template: "Value is {{ no_such_key }}.",
		Results:  map[string]interface{}{},
		Now:      time.Now(),
		Version:  "test",
	}

	_, err := GenerateReport(in)
	if !workflow.IsCode(err, workflow.CodeParse) {
		t.Fatalf("Expected PARSE_ERROR, got: %v", err)
	}
	if !strings.Contains(err.Error(), "no_such_key") {
		t.Errorf("Expected expression named in error, got: %v", err)
	}
}

func TestGenerateReportRejectsStrayBraces(t *testing.T) {
	in := ReportInput{
		Case:     reportCase(),
		Template: "Broken {{ placeholder without close.",
		Results:  map[string]interface{}{},
		Now:      time.Now(),
		Version:  "test",
	}

	_, err := GenerateReport(in)
	if !workflow.IsCode(err, workflow.CodeParse) {
		t.Fatalf("Expected PARSE_ERROR, got: %v", err)
	}
	if !strings.Contains(err.Error(), "unresolved placeholder") {
		t.Errorf("Expected unresolved placeholder diagnostic, got: %v", err)
	}
}

func TestGenerateReportRejectsNonScalarResults(t *testing.T) {
	in := ReportInput{
		Case:     reportCase(),
		Template: "All of it: {{ results }}.",
		Results: map[string]interface{}{
			"case-a1-results": map[string]interface{}{"period": 1.0},
		},
		Now:     time.Now(),
		Version: "test",
	}

	_, err := GenerateReport(in)
	if !workflow.IsCode(err, workflow.CodeParse) {
		t.Fatalf("Expected PARSE_ERROR, got: %v", err)
	}
	if !strings.Contains(err.Error(), "non-scalar") {
		t.Errorf("Expected non-scalar diagnostic, got: %v", err)
	}
}

func TestRoundBuiltin(t *testing.T) {
	tests := []struct {
		expr string
		want string
	}{
		{"round(1.2345, 2)", "1.23"},
		{"round(1.235, 0)", "1"},
		{"round(2.5)", "3"},
		{"round(-1.25, 1)", "-1.3"},
	}
	c := reportCase()
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			got, err := GenerateReport(ReportInput{
				Case:     c,
				Template: "{{ " + tt.expr + " }}",
				Results:  map[string]interface{}{},
				Now:      time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC),
				Version:  "test",
			})
			if err != nil {
				t.Fatalf("Expected no error, got: %v", err)
			}
			if !strings.Contains(got, "\n"+tt.want+"\n") {
				t.Errorf("Expected body %q, got:\n%s", tt.want, got)
			}
		})
	}
}
