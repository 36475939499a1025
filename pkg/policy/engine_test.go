package policy

import (
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func cleanInput() *RunInput {
	return &RunInput{
		Case: RunCase{ID: "A1", Topic: "t1", Title: "Baseline fit"},
		Stages: []RunStage{
			{Kind: "analysis", Script: "src/case-a1-analysis.py"},
			{Kind: "verification", Script: "tests/test_case_a1.py"},
		},
	}
}

func TestEvaluateRunAllowsCleanInput(t *testing.T) {
	engine := NewEngine(zerolog.Nop())

	result, err := engine.EvaluateRun(context.Background(), cleanInput())
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if !result.Allowed {
		t.Errorf("Expected clean input to be allowed, got violations: %+v", result.Violations)
	}
}

func TestConfirmationGateBlocksUnconfirmedRuns(t *testing.T) {
	engine := NewEngine(zerolog.Nop())
	input := cleanInput()
	input.Confirmations = []string{"sampling window is assumed"}

	result, err := engine.EvaluateRun(context.Background(), input)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if result.Allowed {
		t.Fatal("Expected unconfirmed run to be blocked")
	}
	if len(result.Violations) != 1 ||
		!strings.Contains(result.Violations[0].Message, "sampling window is assumed") {
		t.Errorf("Unexpected violations: %+v", result.Violations)
	}

	input.Confirmed = true
	result, err = engine.EvaluateRun(context.Background(), input)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if !result.Allowed {
		t.Errorf("Expected confirmed run to be allowed, got: %+v", result.Violations)
	}
}

func TestScriptLocationPolicy(t *testing.T) {
	engine := NewEngine(zerolog.Nop())
	input := cleanInput()
	input.Stages = append(input.Stages, RunStage{Kind: "analysis", Script: "scratch/hack.py"})

	result, err := engine.EvaluateRun(context.Background(), input)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if result.Allowed {
		t.Fatal("Expected stray script location to be blocked")
	}
	if len(result.Violations) != 1 ||
		!strings.Contains(result.Violations[0].Message, "scratch/hack.py") {
		t.Errorf("Unexpected violations: %+v", result.Violations)
	}
}

func TestEvaluateRunCollectsWarningsWithoutBlocking(t *testing.T) {
	engine := NewEngine(zerolog.Nop())
	engine.policies["visualization-note"] = &Policy{
		Name:     "visualization-note",
		Severity: SeverityWarning,
		Enabled:  true,
		Rego: `package caseflow.policies.viz

import rego.v1

deny contains violation if {
	some stage in input.stages
	stage.kind == "visualization"
	violation := {
		"message": sprintf("visualization stage %s present", [stage.script]),
		"severity": "warning",
	}
}`,
	}
	input := cleanInput()
	input.Stages = append(input.Stages, RunStage{Kind: "visualization", Script: "src/plot.py"})

	result, err := engine.EvaluateRun(context.Background(), input)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if !result.Allowed {
		t.Errorf("Expected warnings not to block, got: %+v", result.Violations)
	}
	if len(result.Warnings) != 1 {
		t.Errorf("Expected 1 warning, got: %+v", result.Warnings)
	}
}

func TestDisabledPoliciesAreSkipped(t *testing.T) {
	engine := NewEngine(zerolog.Nop())
	for _, p := range engine.policies {
		p.Enabled = false
	}
	input := cleanInput()
	input.Confirmations = []string{"anything"}

	result, err := engine.EvaluateRun(context.Background(), input)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if !result.Allowed {
		t.Errorf("Expected disabled policies to be skipped, got: %+v", result.Violations)
	}
}
