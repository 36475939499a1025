package scaffold

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/caseflow/caseflow/pkg/docstore"
	"github.com/caseflow/caseflow/pkg/registry"
	"github.com/caseflow/caseflow/pkg/workflow"
)

// SupersededHeader is prepended to planning documents once their content
// has been scaffolded into case specs.
const SupersededHeader = "> Superseded by scaffolded case specs. Do not edit."

// Scaffolder materializes case spec documents from an approved planning
// document and transitions the topic into its Active phase.
type Scaffolder struct {
	store    *docstore.Store
	registry *registry.Registry
	logger   zerolog.Logger

	// PlanName is the planning document file name inside planning/.
	PlanName string
}

// Result reports what a scaffold run did, per document.
type Result struct {
	// TopicID is the scaffolded topic.
	TopicID string

	// Written lists spec documents created or overwritten this run.
	Written []string

	// Skipped lists spec documents left untouched because they already
	// contain resolved content.
	Skipped []string

	// SummaryCreated reports whether a fresh summary document was written.
	SummaryCreated bool

	// PlanArchived reports whether the planning document was newly marked
	// superseded; false means it was already archived.
	PlanArchived bool
}

// New creates a scaffolder over the given store and registry.
func New(store *docstore.Store, reg *registry.Registry, logger zerolog.Logger) *Scaffolder {
	return &Scaffolder{
		store:    store,
		registry: reg,
		logger:   logger.With().Str("component", "scaffolder").Logger(),
		PlanName: "plan.md",
	}
}

// Scaffold runs the full scaffold sequence for a topic in Planning or
// Active status. All parsing happens before any document is written, and
// the Planning -> Active transition is the very last step, so a parse
// failure leaves nothing partially transitioned. Re-running against an
// Active topic is the idempotent path: resolved specs are skipped and no
// transition is attempted.
func (s *Scaffolder) Scaffold(topicID string) (*Result, error) {
	topic, err := s.registry.Topic(topicID)
	if err != nil {
		return nil, err
	}
	if topic.Status != workflow.TopicPlanning && topic.Status != workflow.TopicActive {
		return nil, workflow.NewWrongPhaseError(topicID, topic.Status, workflow.TopicPlanning)
	}

	planPath := docstore.PlanningPath(topicID, s.PlanName)
	plan, err := s.store.Read(planPath)
	if err != nil {
		return nil, fmt.Errorf("reading planning document: %w", err)
	}

	blocks, err := ParseAll(stripSuperseded(plan))
	if err != nil {
		return nil, err
	}
	if len(blocks) == 0 {
		return nil, workflow.NewParseError(planPath, "planning document contains no case blocks")
	}

	result := &Result{TopicID: topicID}

	for i := range blocks {
		block := &blocks[i]
		specPath := docstore.CaseSpecPath(topicID, block.ID)
		write, skip, err := s.shouldWriteSpec(specPath)
		if err != nil {
			return nil, err
		}
		if skip {
			result.Skipped = append(result.Skipped, specPath)
			s.logger.Info().Str("case_id", block.ID).Str("path", specPath).
				Msg("spec already resolved, skipped")
		}
		if write {
			if err := s.store.Write(specPath, RenderSpec(topicID, block)); err != nil {
				return nil, err
			}
			result.Written = append(result.Written, specPath)
			s.logger.Info().Str("case_id", block.ID).Str("path", specPath).
				Msg("spec written")
		}

		if err := s.registerCase(topicID, block); err != nil {
			return nil, err
		}
	}

	summaryPath := docstore.SummaryPath(topicID)
	if !s.store.Exists(summaryPath) {
		if err := s.store.Write(summaryPath, RenderSummaryHeader(topicID)); err != nil {
			return nil, err
		}
		result.SummaryCreated = true
	}

	prepended, err := s.store.PrependLine(planPath, SupersededHeader)
	if err != nil {
		return nil, err
	}
	result.PlanArchived = prepended
	if !prepended {
		s.logger.Info().Str("path", planPath).Msg("planning document already archived")
	}

	if topic.Status == workflow.TopicPlanning {
		if err := s.registry.Transition(topicID, workflow.TopicPlanning, workflow.TopicActive); err != nil {
			return nil, err
		}
	}
	return result, nil
}

// shouldWriteSpec decides the idempotence outcome for an existing spec
// document: resolved content is never overwritten, placeholder-only specs
// are regenerated.
func (s *Scaffolder) shouldWriteSpec(specPath string) (write, skip bool, err error) {
	if !s.store.Exists(specPath) {
		return true, false, nil
	}
	content, err := s.store.Read(specPath)
	if err != nil {
		return false, false, err
	}
	if strings.Contains(content, PlaceholderMarker) {
		return true, false, nil
	}
	return false, true, nil
}

// registerCase puts the case row in the topic registry and records its
// confirmation note, if any. Already-registered cases keep their current
// status; only missing rows start at Pending.
func (s *Scaffolder) registerCase(topicID string, block *CaseBlock) error {
	topic, err := s.registry.Topic(topicID)
	if err != nil {
		return err
	}
	registered := false
	for _, row := range topic.Cases {
		if row.ID == block.ID {
			registered = true
			break
		}
	}
	if !registered {
		row := workflow.CaseRow{
			ID:       block.ID,
			Status:   workflow.CasePending,
			Title:    block.Title,
			SpecPath: docstore.CasesDir + "/" + block.ID + ".md",
		}
		if err := s.registry.RegisterCase(topicID, row); err != nil {
			return err
		}
	}
	if len(block.Confirmations) > 0 {
		note := strings.Join(block.Confirmations, "; ")
		return s.registry.SetConfirmNote(topicID, block.ID, note)
	}
	return nil
}

// stripSuperseded removes the archival header line so re-parsing an
// already archived plan sees the original content.
func stripSuperseded(content string) string {
	first, rest, found := strings.Cut(content, "\n")
	if found && first == SupersededHeader {
		return rest
	}
	return content
}
