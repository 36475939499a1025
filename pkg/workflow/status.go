package workflow

import "fmt"

// TopicStatus represents the lifecycle phase of a topic.
type TopicStatus string

const (
	// TopicPlanning indicates the topic has an approved plan awaiting scaffolding.
	TopicPlanning TopicStatus = "Planning"

	// TopicActive indicates the topic's cases are scaffolded and executable.
	TopicActive TopicStatus = "Active"

	// TopicComplete indicates all work on the topic has concluded.
	TopicComplete TopicStatus = "Complete"
)

// Validate checks if the topic status is valid.
func (s TopicStatus) Validate() error {
	switch s {
	case TopicPlanning, TopicActive, TopicComplete:
		return nil
	default:
		return fmt.Errorf("invalid topic status: %s", s)
	}
}

// CanTransitionTo reports whether the status may advance to next. Topic
// status only moves forward: Planning -> Active -> Complete.
func (s TopicStatus) CanTransitionTo(next TopicStatus) bool {
	switch s {
	case TopicPlanning:
		return next == TopicActive
	case TopicActive:
		return next == TopicComplete
	default:
		return false
	}
}

// CaseStatus represents the lifecycle status of a case.
type CaseStatus string

const (
	// CaseUnscaffolded indicates the case exists only as a planning block.
	CaseUnscaffolded CaseStatus = "Unscaffolded"

	// CasePending indicates the case spec is fully resolved and runnable.
	CasePending CaseStatus = "Pending"

	// CaseRunning indicates the execution engine is running the case.
	CaseRunning CaseStatus = "Running"

	// CaseComplete indicates all deliverables were produced and verified.
	CaseComplete CaseStatus = "Complete"

	// CaseBlocked indicates the case cannot proceed and awaits human input.
	CaseBlocked CaseStatus = "Blocked"

	// CaseAbandoned indicates work on the case was given up.
	CaseAbandoned CaseStatus = "Abandoned"
)

// Validate checks if the case status is valid.
func (s CaseStatus) Validate() error {
	switch s {
	case CaseUnscaffolded, CasePending, CaseRunning, CaseComplete, CaseBlocked, CaseAbandoned:
		return nil
	default:
		return fmt.Errorf("invalid case status: %s", s)
	}
}

// IsTerminal returns true if the case status represents a final state.
// Terminal cases are never re-entered into Running by the orchestrator;
// a human re-trigger is a fresh logical attempt.
func (s CaseStatus) IsTerminal() bool {
	return s == CaseComplete || s == CaseBlocked || s == CaseAbandoned
}

// DeliverableKind classifies a deliverable produced by a case.
type DeliverableKind string

const (
	// KindAnalysis is an analysis stage script producing a results artifact.
	KindAnalysis DeliverableKind = "analysis"

	// KindVisualization is a visualization stage script producing figures.
	KindVisualization DeliverableKind = "visualization"

	// KindVerification is a verification stage script producing a verdict.
	KindVerification DeliverableKind = "verification"

	// KindResults is a structured results artifact written by an analysis stage.
	KindResults DeliverableKind = "results"

	// KindReport is the report document generated from the results artifact.
	KindReport DeliverableKind = "report"
)

// Validate checks if the deliverable kind is valid.
func (k DeliverableKind) Validate() error {
	switch k {
	case KindAnalysis, KindVisualization, KindVerification, KindResults, KindReport:
		return nil
	default:
		return fmt.Errorf("invalid deliverable kind: %s", k)
	}
}

// IsStage returns true if the deliverable is executed as an external process.
func (k DeliverableKind) IsStage() bool {
	return k == KindAnalysis || k == KindVisualization || k == KindVerification
}
