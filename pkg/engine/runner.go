package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/caseflow/caseflow/pkg/docstore"
	"github.com/caseflow/caseflow/pkg/registry"
	"github.com/caseflow/caseflow/pkg/workflow"
)

// RunOptions controls one run attempt.
type RunOptions struct {
	// Confirmed acknowledges the case's outstanding confirmation items.
	Confirmed bool

	// Fresh permits a new run attempt on a case already in a terminal
	// status. Without it, terminal cases are refused.
	Fresh bool
}

// StageResult is the summary of one executed stage.
type StageResult struct {
	Script   string
	Kind     workflow.DeliverableKind
	ExitCode int
	Duration time.Duration
}

// RunReport is returned on a fully successful run.
type RunReport struct {
	RunID      string
	TopicID    string
	CaseID     string
	Stages     []StageResult
	Passed     []string
	ReportPath string
}

// Runner drives one case through the full execution sequence. Exactly one
// case runs at a time; the runner holds no cross-run state.
type Runner struct {
	store      *docstore.Store
	registry   *registry.Registry
	resolver   *Resolver
	launcher   StageLauncher
	propagator *Propagator
	gate       PreRunGate
	recorder   Recorder
	metrics    RunMetrics
	logger     zerolog.Logger

	// Now is the run clock, replaceable for deterministic output.
	Now func() time.Time

	// Version is stamped into generated report footers.
	Version string
}

// RunnerOptions carries the optional collaborators.
type RunnerOptions struct {
	Gate     PreRunGate
	Recorder Recorder
	Metrics  RunMetrics
	Version  string
}

// NewRunner creates a runner over the given store, registry and launcher.
func NewRunner(store *docstore.Store, reg *registry.Registry, launcher StageLauncher, logger zerolog.Logger, opts RunnerOptions) *Runner {
	version := opts.Version
	if version == "" {
		version = "dev"
	}
	return &Runner{
		store:      store,
		registry:   reg,
		resolver:   NewResolver(store, logger),
		launcher:   launcher,
		propagator: NewPropagator(store, reg, logger),
		gate:       opts.Gate,
		recorder:   opts.Recorder,
		metrics:    opts.Metrics,
		logger:     logger.With().Str("component", "runner").Logger(),
		Now:        time.Now,
		Version:    version,
	}
}

// Run executes one case of the current topic to completion. The sequence
// is fail-fast: resolve topic and spec, gate, check prerequisites,
// materialize stage sources, run stages in order with artifact checks,
// gate on the verification verdict, generate the report, then commit the
// terminal status. No status reaches a shared document on any failure;
// the case's registry cell stays exactly as it was.
func (r *Runner) Run(ctx context.Context, caseID string, opts RunOptions) (*RunReport, error) {
	tracer := otel.Tracer("caseflow/engine")
	ctx, span := tracer.Start(ctx, "case.run",
		trace.WithAttributes(attribute.String("case.id", caseID)))
	defer span.End()

	// The current topic is Active when one exists, else Planning. A
	// Planning topic is runnable (a scaffold may have stopped short of its
	// final transition); missing specs surface naturally below.
	topic, err := r.registry.CurrentTopic()
	if err != nil {
		return nil, err
	}

	for _, row := range topic.Cases {
		if row.ID == caseID && row.Status.IsTerminal() && !opts.Fresh {
			return nil, workflow.NewInvalidTransitionError(topic.ID,
				fmt.Sprintf("case %s is %s; terminal cases are not re-run without --fresh", caseID, row.Status))
		}
	}

	specPath := docstore.CaseSpecPath(topic.ID, caseID)
	if !r.store.Exists(specPath) {
		return nil, workflow.NewMissingSpecError(caseID, specPath)
	}
	content, err := r.store.Read(specPath)
	if err != nil {
		return nil, err
	}
	c, err := ParseSpec(content, topic.ID, caseID)
	if err != nil {
		return nil, err
	}

	if r.gate != nil {
		if err := r.gate.CheckRun(ctx, c, opts.Confirmed); err != nil {
			return nil, err
		}
	}
	if err := r.resolver.CheckPrerequisites(c); err != nil {
		return nil, err
	}

	// Running is held in memory only. The registry cell is written solely
	// by the propagator on success, so a failed run leaves it untouched.
	c.Status = workflow.CaseRunning

	runID := uuid.NewString()
	started := r.Now()
	span.SetAttributes(attribute.String("run.id", runID))
	r.record(func() error {
		return r.recorder.RunStarted(ctx, RunRecord{
			ID: runID, TopicID: topic.ID, CaseID: caseID, StartedAt: started,
		})
	})
	r.logger.Info().Str("run_id", runID).Str("topic_id", topic.ID).
		Str("case_id", caseID).Msg("run started")

	report, err := r.execute(ctx, tracer, runID, c)
	status := "complete"
	detail := ""
	if err != nil {
		status, detail = "failed", err.Error()
	}
	r.record(func() error {
		return r.recorder.RunFinished(ctx, runID, status, detail, r.Now())
	})
	if r.metrics != nil {
		r.metrics.RunFinished(status, r.Now().Sub(started))
	}
	if err != nil {
		r.logger.Error().Str("run_id", runID).Err(err).Msg("run failed")
		return nil, err
	}
	r.logger.Info().Str("run_id", runID).Msg("run complete")
	return report, nil
}

func (r *Runner) execute(ctx context.Context, tracer trace.Tracer, runID string, c *workflow.Case) (*RunReport, error) {
	report := &RunReport{RunID: runID, TopicID: c.TopicID, CaseID: c.ID}

	// Materialize every stage source exactly as the spec declares it,
	// in declared order, before any stage runs.
	for _, d := range c.Deliverables {
		if !d.Kind.IsStage() {
			continue
		}
		if err := r.store.Write(docstore.InTopic(c.TopicID, d.Path), d.Content); err != nil {
			return nil, err
		}
	}

	topicDir := r.store.Abs(docstore.TopicDir(c.TopicID))
	var verdict *Verdict
	for seq, idx := range c.StageOrder() {
		d := &c.Deliverables[idx]
		stageCtx, stageSpan := tracer.Start(ctx, "case.stage",
			trace.WithAttributes(
				attribute.String("stage.kind", string(d.Kind)),
				attribute.String("stage.script", d.Path)))

		outcome, err := r.launcher.Launch(stageCtx, StageCommand{
			Script: r.store.Abs(docstore.InTopic(c.TopicID, d.Path)),
			Dir:    topicDir,
		})
		stageSpan.End()
		if err != nil {
			return nil, workflow.NewStageExecutionError(c.ID, d.Path, -1, "", err)
		}

		report.Stages = append(report.Stages, StageResult{
			Script: d.Path, Kind: d.Kind,
			ExitCode: outcome.ExitCode, Duration: outcome.Duration,
		})
		r.record(func() error {
			return r.recorder.StageFinished(ctx, StageRecord{
				RunID: runID, Seq: seq, Kind: string(d.Kind), Script: d.Path,
				ExitCode: outcome.ExitCode, Duration: outcome.Duration,
				Output: outcome.Output(),
			})
		})
		if r.metrics != nil {
			r.metrics.StageFinished(string(d.Kind), outcome.Duration, outcome.ExitCode)
		}

		if outcome.ExitCode != 0 {
			return nil, workflow.NewStageExecutionError(c.ID, d.Path, outcome.ExitCode, outcome.Output(), nil)
		}
		for _, artifact := range d.Outputs {
			if !r.store.Exists(docstore.InTopic(c.TopicID, artifact)) {
				return nil, workflow.NewMissingOutputArtifactError(c.ID, d.Path, artifact)
			}
		}
		if d.Kind == workflow.KindVerification {
			v, err := r.readVerdict(c, d)
			if err != nil {
				return nil, err
			}
			if !v.Ok() {
				return nil, workflow.NewVerificationFailureError(c.ID, len(v.Passed), v.FailedNames())
			}
			verdict = v
		}
	}
	if verdict != nil {
		report.Passed = verdict.Passed
	}

	results, merged, err := r.loadResults(c)
	if err != nil {
		return nil, err
	}

	if rep := c.FindDeliverable(workflow.KindReport); rep != nil {
		doc, err := GenerateReport(ReportInput{
			Case:     c,
			Template: rep.Content,
			Results:  results,
			Now:      r.Now(),
			Version:  r.Version,
		})
		if err != nil {
			return nil, err
		}
		path := docstore.InTopic(c.TopicID, rep.Path)
		if err := r.store.Write(path, doc); err != nil {
			return nil, err
		}
		report.ReportPath = path
	}

	if err := r.propagator.Commit(c, workflow.CaseComplete, merged); err != nil {
		return nil, err
	}
	return report, nil
}

// readVerdict decodes the verification stage's first declared artifact.
func (r *Runner) readVerdict(c *workflow.Case, d *workflow.Deliverable) (*Verdict, error) {
	if len(d.Outputs) == 0 {
		return nil, workflow.NewParseError(d.Section, "verification stage declares no verdict artifact")
	}
	data, err := r.store.Read(docstore.InTopic(c.TopicID, d.Outputs[0]))
	if err != nil {
		return nil, err
	}
	v, err := ParseVerdict([]byte(data))
	if err != nil {
		return nil, workflow.NewParseError(d.Outputs[0], err.Error())
	}
	return v, nil
}

// loadResults decodes every results artifact. The returned map keys each
// document by artifact base name; merged holds the first document's
// top-level entries for the summary block.
func (r *Runner) loadResults(c *workflow.Case) (map[string]interface{}, map[string]interface{}, error) {
	results := map[string]interface{}{}
	var merged map[string]interface{}
	for _, d := range c.Deliverables {
		if d.Kind != workflow.KindResults {
			continue
		}
		path := docstore.InTopic(c.TopicID, d.Path)
		if !r.store.Exists(path) {
			return nil, nil, workflow.NewMissingOutputArtifactError(c.ID, d.Section, d.Path)
		}
		raw, err := r.store.Read(path)
		if err != nil {
			return nil, nil, err
		}
		var doc interface{}
		if err := json.Unmarshal([]byte(raw), &doc); err != nil {
			return nil, nil, workflow.NewParseError(d.Path, "decoding results artifact: "+err.Error())
		}
		results[baseName(d.Path)] = doc
		if merged == nil {
			if m, ok := doc.(map[string]interface{}); ok {
				merged = m
			}
		}
	}
	return results, merged, nil
}

// record runs a recorder call, logging instead of failing when the run
// history store is unavailable.
func (r *Runner) record(fn func() error) {
	if r.recorder == nil {
		return
	}
	if err := fn(); err != nil {
		r.logger.Warn().Err(err).Msg("run history recording failed")
	}
}
