package engine

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/caseflow/caseflow/pkg/docstore"
	"github.com/caseflow/caseflow/pkg/registry"
	"github.com/caseflow/caseflow/pkg/workflow"
)

// Propagator commits a finished case's status into the topic's shared
// documents. It runs only after the engine declares full success; no
// failed run ever reaches it.
type Propagator struct {
	store    *docstore.Store
	registry *registry.Registry
	logger   zerolog.Logger
}

// NewPropagator creates a propagator over the given store and registry.
func NewPropagator(store *docstore.Store, reg *registry.Registry, logger zerolog.Logger) *Propagator {
	return &Propagator{
		store:    store,
		registry: reg,
		logger:   logger.With().Str("component", "propagator").Logger(),
	}
}

// Commit appends the case's results block to the topic summary, writes the
// final status into the registry row, and clears any outstanding
// confirmation note when the status is Complete.
func (p *Propagator) Commit(c *workflow.Case, status workflow.CaseStatus, results map[string]interface{}) error {
	block := renderSummaryBlock(c, status, results)
	if err := p.store.Append(docstore.SummaryPath(c.TopicID), block); err != nil {
		return fmt.Errorf("appending summary block: %w", err)
	}
	if err := p.registry.SetCaseStatus(c.TopicID, c.ID, status); err != nil {
		return err
	}
	if status == workflow.CaseComplete {
		if err := p.registry.ClearConfirmNote(c.TopicID, c.ID); err != nil {
			return err
		}
	}
	p.logger.Info().Str("case_id", c.ID).Str("status", string(status)).
		Msg("case status committed")
	return nil
}

// renderSummaryBlock formats the per-case summary entry: the case heading
// with its final status, then the scalar top-level result values in sorted
// key order. Nested structures stay in the artifacts; the summary carries
// headline numbers only.
func renderSummaryBlock(c *workflow.Case, status workflow.CaseStatus, results map[string]interface{}) string {
	var b strings.Builder
	fmt.Fprintf(&b, "\n## Case %s: %s [%s]\n\n", c.ID, c.Title, status)

	keys := make([]string, 0, len(results))
	for key, val := range results {
		if isScalar(val) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	for _, key := range keys {
		fmt.Fprintf(&b, "- %s: %s\n", key, formatScalar(results[key]))
	}
	return b.String()
}

func isScalar(v interface{}) bool {
	switch v.(type) {
	case string, bool, float64, int, int64, nil:
		return true
	}
	return false
}

func formatScalar(v interface{}) string {
	switch val := v.(type) {
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case float64:
		return strconv.FormatFloat(val, 'g', -1, 64)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case nil:
		return "null"
	}
	return fmt.Sprintf("%v", v)
}
