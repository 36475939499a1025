package engine

import (
	"encoding/json"
	"fmt"
)

// Verdict is the machine-readable result a verification stage writes as
// its first declared artifact.
type Verdict struct {
	Passed []string          `json:"passed"`
	Failed []FailedAssertion `json:"failed"`
}

// FailedAssertion names one failed verification assertion.
type FailedAssertion struct {
	Name   string `json:"name"`
	Detail string `json:"detail"`
}

// ParseVerdict decodes a verification verdict artifact.
func ParseVerdict(data []byte) (*Verdict, error) {
	var v Verdict
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("decoding verification verdict: %w", err)
	}
	return &v, nil
}

// Ok reports whether every assertion passed.
func (v *Verdict) Ok() bool {
	return len(v.Failed) == 0
}

// FailedNames returns the names of failed assertions with their detail,
// formatted for the failure error.
func (v *Verdict) FailedNames() []string {
	names := make([]string, 0, len(v.Failed))
	for _, f := range v.Failed {
		if f.Detail != "" {
			names = append(names, f.Name+": "+f.Detail)
			continue
		}
		names = append(names, f.Name)
	}
	return names
}
