package policy

// BuiltinPolicies returns the policies compiled into the binary.
func BuiltinPolicies() []Policy {
	return []Policy{
		confirmationGatePolicy(),
		scriptLocationPolicy(),
	}
}

// confirmationGatePolicy blocks runs with outstanding confirmation items
// unless the operator explicitly confirmed.
func confirmationGatePolicy() Policy {
	return Policy{
		Name:        "confirmation-gate",
		Description: "Blocks runs with unresolved confirmation items unless confirmed",
		Severity:    SeverityError,
		Enabled:     true,
		Rego: `package caseflow.policies.confirmations

import rego.v1

deny contains violation if {
	count(input.confirmations) > 0
	not input.confirmed

	some item in input.confirmations
	violation := {
		"message": sprintf("unresolved confirmation: %s", [item]),
		"severity": "error",
	}
}`,
	}
}

// scriptLocationPolicy keeps stage scripts inside the source and tests
// directories of the topic.
func scriptLocationPolicy() Policy {
	return Policy{
		Name:        "script-location",
		Description: "Requires stage scripts to live under src/ or tests/",
		Severity:    SeverityError,
		Enabled:     true,
		Rego: `package caseflow.policies.scripts

import rego.v1

deny contains violation if {
	some stage in input.stages
	not startswith(stage.script, "src/")
	not startswith(stage.script, "tests/")

	violation := {
		"message": sprintf("stage script %s is outside src/ and tests/", [stage.script]),
		"severity": "error",
	}
}`,
	}
}
