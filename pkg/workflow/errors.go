package workflow

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCode identifies a class of workflow failure. Every orchestrator
// error carries exactly one code, and each code maps to a distinct CLI
// exit code so callers can tell failure kinds apart.
type ErrorCode string

const (
	// CodeNoActiveTopic indicates no topic is in Planning or Active status.
	CodeNoActiveTopic ErrorCode = "NO_ACTIVE_TOPIC"

	// CodeMissingSpec indicates a case spec document is absent.
	CodeMissingSpec ErrorCode = "MISSING_SPEC"

	// CodeParse indicates a malformed planning-document case block or spec
	// document.
	CodeParse ErrorCode = "PARSE_ERROR"

	// CodeWrongPhase indicates an operation requested on a topic in the
	// wrong lifecycle phase.
	CodeWrongPhase ErrorCode = "WRONG_PHASE"

	// CodeInvalidTransition indicates a registry invariant violation.
	CodeInvalidTransition ErrorCode = "INVALID_TRANSITION"

	// CodeMissingPrerequisite indicates an unsatisfied prerequisite edge.
	CodeMissingPrerequisite ErrorCode = "MISSING_PREREQUISITE"

	// CodeStageExecution indicates a stage process terminated non-zero.
	CodeStageExecution ErrorCode = "STAGE_EXECUTION"

	// CodeMissingOutputArtifact indicates a stage exited zero but a declared
	// output artifact is absent.
	CodeMissingOutputArtifact ErrorCode = "MISSING_OUTPUT_ARTIFACT"

	// CodeVerificationFailure indicates failing verification assertions.
	CodeVerificationFailure ErrorCode = "VERIFICATION_FAILURE"

	// CodePolicyDenied indicates the pre-run policy gate denied execution.
	CodePolicyDenied ErrorCode = "POLICY_DENIED"
)

// exitCodes maps error codes to CLI exit codes. Zero is reserved for
// success and one for unclassified errors.
var exitCodes = map[ErrorCode]int{
	CodeNoActiveTopic:         10,
	CodeMissingSpec:           11,
	CodeParse:                 12,
	CodeWrongPhase:            13,
	CodeInvalidTransition:     14,
	CodeMissingPrerequisite:   15,
	CodeStageExecution:        16,
	CodeMissingOutputArtifact: 17,
	CodeVerificationFailure:   18,
	CodePolicyDenied:          19,
}

// Error is a classified workflow error with full diagnostic context.
// Nothing is swallowed: stage output, artifact paths and upstream case
// references survive to the operator.
type Error struct {
	// Code classifies the failure.
	Code ErrorCode `json:"code"`

	// Message is the human-readable error message.
	Message string `json:"message"`

	// TopicID is the topic involved, if applicable.
	TopicID string `json:"topic_id,omitempty"`

	// CaseID is the case involved, if applicable.
	CaseID string `json:"case_id,omitempty"`

	// Stage names the failing stage deliverable, if applicable.
	Stage string `json:"stage,omitempty"`

	// ExitStatus is the stage process exit code for stage failures.
	ExitStatus int `json:"exit_status,omitempty"`

	// Output is the full captured diagnostic text of a failed stage.
	Output string `json:"output,omitempty"`

	// Artifact is the missing or offending artifact path, if applicable.
	Artifact string `json:"artifact,omitempty"`

	// Upstream names the case/topic expected to have produced a missing
	// prerequisite artifact.
	Upstream string `json:"upstream,omitempty"`

	// Assertions lists failing verification assertion names.
	Assertions []string `json:"assertions,omitempty"`

	// Err is the underlying cause, if any.
	Err error `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s", e.Code, e.Message)
	if e.CaseID != "" {
		fmt.Fprintf(&b, " (case=%s)", e.CaseID)
	}
	if e.Stage != "" {
		fmt.Fprintf(&b, " (stage=%s, exit=%d)", e.Stage, e.ExitStatus)
	}
	if e.Artifact != "" {
		fmt.Fprintf(&b, " (artifact=%s)", e.Artifact)
	}
	if e.Upstream != "" {
		fmt.Fprintf(&b, " (expected from %s)", e.Upstream)
	}
	if len(e.Assertions) > 0 {
		fmt.Fprintf(&b, " (failing: %s)", strings.Join(e.Assertions, ", "))
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

// Unwrap returns the underlying error for error chain inspection.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is implements error equality for errors.Is: two workflow errors match
// when their codes match.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// ExitCode returns the CLI exit code for the error's class.
func (e *Error) ExitCode() int {
	if code, ok := exitCodes[e.Code]; ok {
		return code
	}
	return 1
}

// ExitCodeFor returns the CLI exit code for any error: 0 for nil, the
// class exit code for workflow errors, 1 otherwise.
func ExitCodeFor(err error) int {
	if err == nil {
		return 0
	}
	var e *Error
	if errors.As(err, &e) {
		return e.ExitCode()
	}
	return 1
}

// CodeOf returns the error code of a workflow error, or "" for other errors.
func CodeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// IsCode reports whether err is a workflow error with the given code.
func IsCode(err error, code ErrorCode) bool {
	return CodeOf(err) == code
}

// NewNoActiveTopicError reports that no topic is in Planning or Active
// status. statuses carries every topic's current status for diagnostics.
func NewNoActiveTopicError(statuses map[string]TopicStatus) *Error {
	parts := make([]string, 0, len(statuses))
	for id, st := range statuses {
		parts = append(parts, fmt.Sprintf("%s=%s", id, st))
	}
	msg := "no topic in Planning or Active status"
	if len(parts) > 0 {
		msg = fmt.Sprintf("%s (topics: %s)", msg, strings.Join(parts, ", "))
	}
	return &Error{Code: CodeNoActiveTopic, Message: msg}
}

// NewMissingSpecError reports an absent case spec document.
func NewMissingSpecError(caseID, specPath string) *Error {
	return &Error{
		Code:     CodeMissingSpec,
		Message:  fmt.Sprintf("spec document not found at %s", specPath),
		CaseID:   caseID,
		Artifact: specPath,
	}
}

// NewParseError reports a malformed document, naming the offending heading
// or field.
func NewParseError(heading, detail string) *Error {
	return &Error{
		Code:    CodeParse,
		Message: fmt.Sprintf("malformed block %q: %s", heading, detail),
	}
}

// NewWrongPhaseError reports an operation on a topic in the wrong phase.
func NewWrongPhaseError(topicID string, got, want TopicStatus) *Error {
	return &Error{
		Code:    CodeWrongPhase,
		Message: fmt.Sprintf("topic is %s, operation requires %s", got, want),
		TopicID: topicID,
	}
}

// NewInvalidTransitionError reports a registry invariant violation.
func NewInvalidTransitionError(topicID, detail string) *Error {
	return &Error{
		Code:    CodeInvalidTransition,
		Message: detail,
		TopicID: topicID,
	}
}

// NewMissingPrerequisiteError reports the first unsatisfied prerequisite
// edge, naming the absent artifact and where it was expected from.
func NewMissingPrerequisiteError(caseID string, edge PrerequisiteEdge) *Error {
	upstream := edge.UpstreamCase
	if edge.UpstreamTopic != "" {
		upstream = edge.UpstreamTopic + "/" + edge.UpstreamCase
	}
	return &Error{
		Code:     CodeMissingPrerequisite,
		Message:  fmt.Sprintf("prerequisite artifact %s is not present", edge.ArtifactPath),
		CaseID:   caseID,
		Artifact: edge.ArtifactPath,
		Upstream: upstream,
	}
}

// NewStageExecutionError reports a stage process that terminated non-zero,
// with its full captured output.
func NewStageExecutionError(caseID, stage string, exitStatus int, output string, err error) *Error {
	return &Error{
		Code:       CodeStageExecution,
		Message:    fmt.Sprintf("stage %s exited with code %d", stage, exitStatus),
		CaseID:     caseID,
		Stage:      stage,
		ExitStatus: exitStatus,
		Output:     output,
		Err:        err,
	}
}

// NewMissingOutputArtifactError reports a stage that exited zero without
// producing a declared output artifact.
func NewMissingOutputArtifactError(caseID, stage, artifact string) *Error {
	return &Error{
		Code:     CodeMissingOutputArtifact,
		Message:  fmt.Sprintf("stage %s exited zero but declared artifact %s is absent", stage, artifact),
		CaseID:   caseID,
		Stage:    stage,
		Artifact: artifact,
	}
}

// NewVerificationFailureError reports failing verification assertions.
func NewVerificationFailureError(caseID string, passed int, failing []string) *Error {
	return &Error{
		Code:       CodeVerificationFailure,
		Message:    fmt.Sprintf("verification reported %d passed / %d failed", passed, len(failing)),
		CaseID:     caseID,
		Assertions: failing,
	}
}

// NewPolicyDeniedError reports that the pre-run policy gate denied the run.
func NewPolicyDeniedError(caseID string, violations []string) *Error {
	return &Error{
		Code:       CodePolicyDenied,
		Message:    fmt.Sprintf("policy denied run: %s", strings.Join(violations, "; ")),
		CaseID:     caseID,
		Assertions: violations,
	}
}
