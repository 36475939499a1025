package policy

import (
	"context"

	"github.com/caseflow/caseflow/pkg/workflow"
)

// Gate adapts the policy engine to the runner's pre-run check.
type Gate struct {
	engine *Engine
}

// NewGate creates a pre-run gate over a policy engine.
func NewGate(engine *Engine) *Gate {
	return &Gate{engine: engine}
}

// CheckRun evaluates the run policies for a case. A blocked run returns a
// policy-denied error listing every violation.
func (g *Gate) CheckRun(ctx context.Context, c *workflow.Case, confirmed bool) error {
	input := &RunInput{
		Case:      RunCase{ID: c.ID, Topic: c.TopicID, Title: c.Title},
		Confirmed: confirmed,
	}
	for _, item := range c.Confirmations {
		input.Confirmations = append(input.Confirmations, item.Text)
	}
	for _, idx := range c.StageOrder() {
		d := c.Deliverables[idx]
		input.Stages = append(input.Stages, RunStage{
			Kind:   string(d.Kind),
			Script: d.Path,
		})
	}

	result, err := g.engine.EvaluateRun(ctx, input)
	if err != nil {
		return err
	}
	if result.Allowed {
		return nil
	}
	messages := make([]string, 0, len(result.Violations))
	for _, v := range result.Violations {
		messages = append(messages, v.Message)
	}
	return workflow.NewPolicyDeniedError(c.ID, messages)
}
