package workflow

// Topic is a top-level unit of research work with its own lifecycle and
// registry document.
type Topic struct {
	// ID is the topic identifier (its directory name under topics/).
	ID string `json:"id"`

	// Status is the lifecycle phase of the topic.
	Status TopicStatus `json:"status"`

	// Title is the human-readable topic title from the registry document.
	Title string `json:"title,omitempty"`

	// Cases lists the topic's case rows in registry order.
	Cases []CaseRow `json:"cases,omitempty"`
}

// CaseRow is one row of a topic registry's case table.
type CaseRow struct {
	// ID is the case identifier.
	ID string `json:"id"`

	// Status is the case's lifecycle status as recorded in the registry.
	Status CaseStatus `json:"status"`

	// Title is the case title.
	Title string `json:"title"`

	// SpecPath is the topic-relative path to the case spec document.
	SpecPath string `json:"spec_path,omitempty"`

	// ConfirmNote is an optional single-line pre-run confirmation note.
	ConfirmNote string `json:"confirm_note,omitempty"`
}

// Case is a fully resolved, executable unit of deliverable work within a
// topic, parsed from its spec document.
type Case struct {
	// ID is the case identifier.
	ID string `json:"id"`

	// TopicID references the owning topic.
	TopicID string `json:"topic_id"`

	// Title is the case title from the spec document heading.
	Title string `json:"title"`

	// Status is the lifecycle status recorded in the spec document.
	Status CaseStatus `json:"status"`

	// Intent is the one-line statement of what the case establishes.
	Intent string `json:"intent"`

	// Prerequisites lists upstream artifacts required before execution.
	Prerequisites []PrerequisiteEdge `json:"prerequisites,omitempty"`

	// Deliverables lists the case's planned outputs in execution order.
	Deliverables []Deliverable `json:"deliverables"`

	// Confirmations lists flagged uncertainties requiring human resolution.
	Confirmations []ConfirmationItem `json:"confirmations,omitempty"`
}

// Deliverable is a single artifact produced by a case. Stage deliverables
// carry the source to materialize and the command inputs to execute; the
// report deliverable carries the template to substitute.
type Deliverable struct {
	// Kind classifies the deliverable.
	Kind DeliverableKind `json:"kind"`

	// Path is the topic-relative path of the produced artifact. For stage
	// kinds this is the script source path.
	Path string `json:"path"`

	// Outputs lists topic-relative artifact paths the stage must produce.
	// Checked after the stage exits; empty for non-stage kinds.
	Outputs []string `json:"outputs,omitempty"`

	// Purpose is the one-line purpose text from the planned-outputs list.
	Purpose string `json:"purpose,omitempty"`

	// Content is the exact file content from the spec document's numbered
	// section: script source for stage kinds, template for the report.
	Content string `json:"-"`

	// Section is the numbered section heading this deliverable came from.
	Section string `json:"section,omitempty"`
}

// PrerequisiteEdge is a directed dependency from a case to a required
// upstream output artifact, possibly belonging to another topic.
type PrerequisiteEdge struct {
	// ArtifactPath is the path of the required artifact. Topic-relative
	// unless rooted under topics/, in which case it is a cross-topic
	// root-relative reference.
	ArtifactPath string `json:"artifact_path"`

	// UpstreamTopic names the topic expected to produce the artifact.
	UpstreamTopic string `json:"upstream_topic,omitempty"`

	// UpstreamCase names the case expected to produce the artifact.
	UpstreamCase string `json:"upstream_case,omitempty"`

	// Confirm marks the edge as flagged "[confirm before running]".
	Confirm bool `json:"confirm,omitempty"`
}

// ConfirmationItem is a flagged uncertainty in a case spec requiring human
// resolution before execution. It is cleared by the status propagator only
// on a successful Complete.
type ConfirmationItem struct {
	// CaseID is the owning case.
	CaseID string `json:"case_id"`

	// Text is the single-line description of what must be confirmed.
	Text string `json:"text"`
}

// FindDeliverable returns the first deliverable of the given kind, or nil.
func (c *Case) FindDeliverable(kind DeliverableKind) *Deliverable {
	for i := range c.Deliverables {
		if c.Deliverables[i].Kind == kind {
			return &c.Deliverables[i]
		}
	}
	return nil
}

// StageOrder returns the indices of stage deliverables in execution order:
// all analysis stages in declared sub-order, then all visualization stages,
// then the verification stage.
func (c *Case) StageOrder() []int {
	var order []int
	for _, kind := range []DeliverableKind{KindAnalysis, KindVisualization, KindVerification} {
		for i := range c.Deliverables {
			if c.Deliverables[i].Kind == kind {
				order = append(order, i)
			}
		}
	}
	return order
}
