package scaffold

import (
	"strings"
	"testing"

	"github.com/caseflow/caseflow/pkg/workflow"
)

const samplePlan = `# Plan: tidal drift

Some framing prose the parser ignores.

## Case A1: Baseline period fit

Intent: Establish the baseline oscillation period from the calibration run.

Outputs:
- [analysis] src/case-a1-analysis.py -> output/case-a1-results.json : fit the baseline period
- [results] output/case-a1-results.json : structured fit results
- [verification] tests/test_case_a1.py -> output/case-a1-verdict.json : assert fit quality
- [report] reports/case-a1.md : baseline findings

### Analysis script

` + "```python\nimport json\nprint(\"fit\")\n```" + `

### Results

Top-level keys: period, amplitude.

### Verification script

` + "```python\nimport json\nprint(\"verify\")\n```" + `

### Report

The baseline period is {{ period }}.

---

## Case A2: Drift model

Intent: Model the period drift against the baseline.

Requires:
- output/case-a1-results.json [from A1]
- topics/older-topic/output/calib.json [from older-topic/C3] [confirm before running]

Outputs:
- [analysis] src/case-a2-analysis.py -> output/case-a2-results.json : fit the drift model

### Analysis script

[confirm before running] drift window start date is assumed, not confirmed

` + "```python\nprint(\"drift\")\n```" + `
`

func TestParseAllParsesTypedBlocks(t *testing.T) {
	blocks, err := ParseAll(samplePlan)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(blocks) != 2 {
		t.Fatalf("Expected 2 blocks, got %d", len(blocks))
	}

	a1 := blocks[0]
	if a1.ID != "A1" || a1.Title != "Baseline period fit" {
		t.Errorf("Unexpected heading parse: %+v", a1)
	}
	if a1.Intent == "" {
		t.Error("Expected Intent to be captured")
	}
	if len(a1.Outputs) != 4 {
		t.Fatalf("Expected 4 outputs, got %d", len(a1.Outputs))
	}
	if a1.Outputs[0].Kind != workflow.KindAnalysis ||
		a1.Outputs[0].Path != "src/case-a1-analysis.py" {
		t.Errorf("Unexpected first output: %+v", a1.Outputs[0])
	}
	if len(a1.Outputs[0].Outputs) != 1 || a1.Outputs[0].Outputs[0] != "output/case-a1-results.json" {
		t.Errorf("Unexpected declared artifacts: %v", a1.Outputs[0].Outputs)
	}
	if len(a1.Sections) != 4 {
		t.Errorf("Expected 4 sections, got %d", len(a1.Sections))
	}

	a2 := blocks[1]
	if len(a2.Requires) != 2 {
		t.Fatalf("Expected 2 prerequisite edges, got %d", len(a2.Requires))
	}
	first := a2.Requires[0]
	if first.ArtifactPath != "output/case-a1-results.json" || first.UpstreamCase != "A1" {
		t.Errorf("Unexpected edge: %+v", first)
	}
	second := a2.Requires[1]
	if second.UpstreamTopic != "older-topic" || second.UpstreamCase != "C3" {
		t.Errorf("Unexpected cross-topic edge: %+v", second)
	}
	if !second.Confirm {
		t.Error("Expected confirm flag on second edge")
	}
	// One from the flagged edge, one from the flagged body line.
	if len(a2.Confirmations) != 2 {
		t.Errorf("Expected 2 confirmation items, got %d: %v", len(a2.Confirmations), a2.Confirmations)
	}
}

func TestParseAllRejectsDuplicateIDs(t *testing.T) {
	plan := `## Case A1: One

Intent: First.

Outputs:
- [analysis] src/a.py -> output/a.json : a

---

## Case A1: Two

Intent: Second.

Outputs:
- [analysis] src/b.py -> output/b.json : b
`
	_, err := ParseAll(plan)
	if !workflow.IsCode(err, workflow.CodeParse) {
		t.Errorf("Expected PARSE_ERROR for duplicate case ID, got: %v", err)
	}
}

func TestParseBlockStructuralErrors(t *testing.T) {
	tests := []struct {
		name string
		plan string
		want string
	}{
		{
			"missing intent",
			"## Case A1: One\n\nOutputs:\n- [analysis] src/a.py -> output/a.json : a\n",
			"Intent",
		},
		{
			"empty outputs",
			"## Case A1: One\n\nIntent: Something.\n",
			"Outputs",
		},
		{
			"truncated block",
			"## Case A1: One\n",
			"truncated",
		},
		{
			"stage without artifacts",
			"## Case A1: One\n\nIntent: X.\n\nOutputs:\n- [analysis] src/a.py : no arrow\n",
			"->",
		},
		{
			"document with artifacts",
			"## Case A1: One\n\nIntent: X.\n\nOutputs:\n- [results] output/a.json -> output/b.json : bad\n",
			"->",
		},
		{
			"unknown kind",
			"## Case A1: One\n\nIntent: X.\n\nOutputs:\n- [simulation] src/a.py -> output/a.json : bad\n",
			"invalid deliverable kind",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseAll(tt.plan)
			if err == nil {
				t.Fatal("Expected parse error, got nil")
			}
			if !workflow.IsCode(err, workflow.CodeParse) {
				t.Fatalf("Expected PARSE_ERROR, got: %v", err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Expected error mentioning %q, got: %v", tt.want, err)
			}
		})
	}
}

func TestParseErrorNamesOffendingHeading(t *testing.T) {
	plan := "## Case A7: Broken\n\nOutputs:\n- [analysis] src/a.py -> output/a.json : a\n"
	_, err := ParseAll(plan)
	if err == nil {
		t.Fatal("Expected parse error, got nil")
	}
	if !strings.Contains(err.Error(), "A7") {
		t.Errorf("Expected error to name the offending heading, got: %v", err)
	}
}
