package policy

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/open-policy-agent/opa/rego"
	"github.com/rs/zerolog"
)

// Engine compiles and evaluates Rego policies.
type Engine struct {
	mu       sync.RWMutex
	policies map[string]*Policy
	logger   zerolog.Logger
}

// NewEngine creates a policy engine with the built-in policies loaded.
func NewEngine(logger zerolog.Logger) *Engine {
	e := &Engine{
		policies: make(map[string]*Policy),
		logger:   logger.With().Str("component", "policy-engine").Logger(),
	}
	for _, p := range BuiltinPolicies() {
		p := p
		e.policies[p.Name] = &p
	}
	return e
}

// LoadPolicies loads additional .rego policy files from the given paths.
func (e *Engine) LoadPolicies(ctx context.Context, paths []string) error {
	loader := NewLoader(e.logger)
	policies, err := loader.LoadFromPaths(paths)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	for i := range policies {
		e.policies[policies[i].Name] = &policies[i]
	}
	e.logger.Info().Int("count", len(policies)).Msg("policies loaded")
	return nil
}

// EvaluateRun evaluates every enabled policy against one run input. Error
// severity violations block the run; warnings are reported but do not.
func (e *Engine) EvaluateRun(ctx context.Context, input *RunInput) (*Result, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	result := &Result{Allowed: true, EvaluatedAt: time.Now()}

	for _, p := range e.policies {
		if !p.Enabled {
			continue
		}
		violations, err := e.evaluatePolicy(ctx, p, input)
		if err != nil {
			return nil, fmt.Errorf("evaluating policy %s: %w", p.Name, err)
		}
		for _, v := range violations {
			if v.Severity == SeverityError {
				result.Allowed = false
				result.Violations = append(result.Violations, v)
				continue
			}
			result.Warnings = append(result.Warnings, v)
		}
	}

	e.logger.Debug().Bool("allowed", result.Allowed).
		Int("violations", len(result.Violations)).
		Msg("run policy evaluation completed")
	return result, nil
}

// evaluatePolicy queries one policy's deny set.
func (e *Engine) evaluatePolicy(ctx context.Context, p *Policy, input *RunInput) ([]Violation, error) {
	query := fmt.Sprintf("data.%s.deny", extractPackageName(p.Rego))

	r := rego.New(
		rego.Module(p.Name, p.Rego),
		rego.Query(query),
		rego.Input(input),
	)
	results, err := r.Eval(ctx)
	if err != nil {
		return nil, err
	}

	var violations []Violation
	for _, result := range results {
		for _, expr := range result.Expressions {
			denySet, ok := expr.Value.([]interface{})
			if !ok {
				continue
			}
			for _, d := range denySet {
				violations = append(violations, makeViolation(p, d))
			}
		}
	}
	return violations, nil
}

func extractPackageName(code string) string {
	for _, line := range strings.Split(code, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "package ") {
			parts := strings.Fields(trimmed)
			if len(parts) >= 2 {
				return parts[1]
			}
		}
	}
	return "caseflow.policies"
}

func makeViolation(p *Policy, result interface{}) Violation {
	v := Violation{Policy: p.Name, Severity: p.Severity}
	switch val := result.(type) {
	case string:
		v.Message = val
	case map[string]interface{}:
		if msg, ok := val["message"].(string); ok {
			v.Message = msg
		}
		if sev, ok := val["severity"].(string); ok {
			v.Severity = Severity(sev)
		}
	default:
		v.Message = fmt.Sprintf("%v", result)
	}
	return v
}
