package workflow

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestErrorExitCodes(t *testing.T) {
	tests := []struct {
		err  error
		code int
	}{
		{nil, 0},
		{fmt.Errorf("plain error"), 1},
		{NewNoActiveTopicError(nil), 10},
		{NewMissingSpecError("A1", "topics/t/cases/A1.md"), 11},
		{NewParseError("## Case A1", "missing Intent"), 12},
		{NewWrongPhaseError("t", TopicActive, TopicPlanning), 13},
		{NewInvalidTransitionError("t", "bad"), 14},
		{NewMissingPrerequisiteError("A2", PrerequisiteEdge{ArtifactPath: "output/r.json"}), 15},
		{NewStageExecutionError("A1", "src/a.py", 2, "boom", nil), 16},
		{NewMissingOutputArtifactError("A1", "src/a.py", "output/r.json"), 17},
		{NewVerificationFailureError("A1", 3, []string{"x"}), 18},
		{NewPolicyDeniedError("A1", []string{"unconfirmed"}), 19},
	}

	for _, tt := range tests {
		if got := ExitCodeFor(tt.err); got != tt.code {
			t.Errorf("ExitCodeFor(%v): expected %d, got %d", tt.err, tt.code, got)
		}
	}
}

func TestErrorIsMatchesByCode(t *testing.T) {
	err := NewStageExecutionError("A1", "src/a.py", 2, "output", nil)
	if !errors.Is(err, &Error{Code: CodeStageExecution}) {
		t.Error("Expected errors.Is to match on code")
	}
	if errors.Is(err, &Error{Code: CodeParse}) {
		t.Error("Expected errors.Is to not match a different code")
	}
}

func TestErrorWrapping(t *testing.T) {
	cause := fmt.Errorf("underlying")
	err := NewStageExecutionError("A1", "src/a.py", -1, "", cause)
	wrapped := fmt.Errorf("running case: %w", err)

	if CodeOf(wrapped) != CodeStageExecution {
		t.Errorf("Expected CodeOf to see through wrapping, got %s", CodeOf(wrapped))
	}
	if !errors.Is(wrapped, cause) {
		t.Error("Expected the cause to survive in the chain")
	}
	if ExitCodeFor(wrapped) != 16 {
		t.Errorf("Expected exit code 16, got %d", ExitCodeFor(wrapped))
	}
}

func TestErrorMessageCarriesDiagnostics(t *testing.T) {
	err := NewStageExecutionError("A1", "src/a.py", 2, "Traceback ...", nil)
	msg := err.Error()
	for _, want := range []string{"STAGE_EXECUTION", "A1", "src/a.py", "exit=2"} {
		if !strings.Contains(msg, want) {
			t.Errorf("Expected error message to contain %q, got: %s", want, msg)
		}
	}
}
