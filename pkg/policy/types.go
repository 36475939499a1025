package policy

import (
	"time"
)

// Severity represents the severity level of a policy violation.
type Severity string

const (
	// SeverityInfo is for informational messages.
	SeverityInfo Severity = "info"

	// SeverityWarning is for warnings that should be reviewed but do not
	// block a run.
	SeverityWarning Severity = "warning"

	// SeverityError is for violations that block the run.
	SeverityError Severity = "error"
)

// Policy is a policy rule with its Rego code.
type Policy struct {
	// Name is the unique name of the policy.
	Name string `json:"name"`

	// Description provides a human-readable description.
	Description string `json:"description"`

	// Rego contains the Rego policy code.
	Rego string `json:"rego"`

	// Severity is the default severity for violations.
	Severity Severity `json:"severity"`

	// Enabled indicates if the policy is active.
	Enabled bool `json:"enabled"`
}

// Violation is a single policy violation.
type Violation struct {
	// Policy is the name of the violated policy.
	Policy string `json:"policy"`

	// Message is the human-readable violation message.
	Message string `json:"message"`

	// Severity is the violation severity level.
	Severity Severity `json:"severity"`
}

// Result is the outcome of a pre-run policy evaluation.
type Result struct {
	// Allowed indicates whether the run may proceed.
	Allowed bool `json:"allowed"`

	// Violations lists blocking violations.
	Violations []Violation `json:"violations,omitempty"`

	// Warnings lists non-blocking violations.
	Warnings []Violation `json:"warnings,omitempty"`

	// EvaluatedAt is when the evaluation happened.
	EvaluatedAt time.Time `json:"evaluated_at"`
}

// RunInput is the input document policies evaluate for one run attempt.
type RunInput struct {
	// Case identifies the case about to run.
	Case RunCase `json:"case"`

	// Confirmations lists outstanding confirmation items from the spec.
	Confirmations []string `json:"confirmations"`

	// Confirmed is set when the operator acknowledged the confirmations.
	Confirmed bool `json:"confirmed"`

	// Stages lists the stage scripts about to execute.
	Stages []RunStage `json:"stages"`
}

// RunCase identifies the case under evaluation.
type RunCase struct {
	ID    string `json:"id"`
	Topic string `json:"topic"`
	Title string `json:"title"`
}

// RunStage is one stage script in the input document.
type RunStage struct {
	Kind   string `json:"kind"`
	Script string `json:"script"`
}
