package engine

import (
	"github.com/rs/zerolog"

	"github.com/caseflow/caseflow/pkg/docstore"
	"github.com/caseflow/caseflow/pkg/workflow"
)

// Resolver checks a case's prerequisite artifact edges against the
// document store. It is strictly read-only: a resolution failure leaves
// no trace in any document.
type Resolver struct {
	store  *docstore.Store
	logger zerolog.Logger
}

// NewResolver creates a resolver over the given store.
func NewResolver(store *docstore.Store, logger zerolog.Logger) *Resolver {
	return &Resolver{
		store:  store,
		logger: logger.With().Str("component", "resolver").Logger(),
	}
}

// CheckPrerequisites verifies every prerequisite artifact exists on disk,
// in declared order. The first missing artifact aborts the check; the
// returned error names both the artifact and its upstream producer.
func (r *Resolver) CheckPrerequisites(c *workflow.Case) error {
	for _, edge := range c.Prerequisites {
		path := docstore.InTopic(c.TopicID, edge.ArtifactPath)
		if r.store.Exists(path) {
			r.logger.Debug().Str("case_id", c.ID).Str("artifact", edge.ArtifactPath).
				Msg("prerequisite satisfied")
			continue
		}
		r.logger.Error().Str("case_id", c.ID).Str("artifact", edge.ArtifactPath).
			Str("upstream_case", edge.UpstreamCase).
			Msg("prerequisite artifact missing")
		return workflow.NewMissingPrerequisiteError(c.ID, edge)
	}
	return nil
}
