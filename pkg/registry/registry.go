package registry

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/caseflow/caseflow/pkg/docstore"
	"github.com/caseflow/caseflow/pkg/workflow"
)

// ErrNotFound is returned when no topic matches a status query.
var ErrNotFound = errors.New("registry: no topic with requested status")

// Registry provides transactional-style access to topic registry documents:
// every mutation reads the current document, validates the change against
// the lifecycle invariants, and writes the document back in full.
type Registry struct {
	store  *docstore.Store
	logger zerolog.Logger
}

// New creates a registry over the given document store.
func New(store *docstore.Store, logger zerolog.Logger) *Registry {
	return &Registry{
		store:  store,
		logger: logger.With().Str("component", "registry").Logger(),
	}
}

// Topics returns every topic that has a registry document, in lexical order.
func (r *Registry) Topics() ([]workflow.Topic, error) {
	ids, err := r.store.ListDirs(docstore.TopicsDir)
	if err != nil {
		return nil, err
	}
	var topics []workflow.Topic
	for _, id := range ids {
		path := docstore.RegistryPath(id)
		if !r.store.Exists(path) {
			continue
		}
		doc, err := r.load(id)
		if err != nil {
			return nil, err
		}
		topics = append(topics, workflow.Topic{ID: doc.TopicID, Status: doc.Status, Cases: doc.Cases})
	}
	return topics, nil
}

// FindTopicByStatus returns the unique topic with the given status.
// Zero matches yield ErrNotFound. More than one match is a registry
// invariant violation and is reported, never silently resolved.
func (r *Registry) FindTopicByStatus(status workflow.TopicStatus) (*workflow.Topic, error) {
	topics, err := r.Topics()
	if err != nil {
		return nil, err
	}
	var found *workflow.Topic
	for i := range topics {
		if topics[i].Status != status {
			continue
		}
		if found != nil {
			return nil, workflow.NewInvalidTransitionError("",
				fmt.Sprintf("registry invariant violated: topics %s and %s both hold status %s",
					found.ID, topics[i].ID, status))
		}
		found = &topics[i]
	}
	if found == nil {
		return nil, ErrNotFound
	}
	return found, nil
}

// CurrentTopic resolves the topic work is directed at: the Active topic if
// one exists, else the Planning topic. With neither, it fails reporting
// every topic's status.
func (r *Registry) CurrentTopic() (*workflow.Topic, error) {
	for _, status := range []workflow.TopicStatus{workflow.TopicActive, workflow.TopicPlanning} {
		topic, err := r.FindTopicByStatus(status)
		if err == nil {
			return topic, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return nil, err
		}
	}
	topics, err := r.Topics()
	if err != nil {
		return nil, err
	}
	statuses := make(map[string]workflow.TopicStatus, len(topics))
	for _, t := range topics {
		statuses[t.ID] = t.Status
	}
	return nil, workflow.NewNoActiveTopicError(statuses)
}

// Topic returns a single topic by ID.
func (r *Registry) Topic(topicID string) (*workflow.Topic, error) {
	doc, err := r.load(topicID)
	if err != nil {
		return nil, err
	}
	return &workflow.Topic{ID: doc.TopicID, Status: doc.Status, Cases: doc.Cases}, nil
}

// Transition advances a topic from one status to another. It fails with an
// invalid-transition error when the current status differs from the
// expected one, when the move is not a forward lifecycle step, or when the
// target status would leave two topics in Planning/Active.
func (r *Registry) Transition(topicID string, from, to workflow.TopicStatus) error {
	doc, err := r.load(topicID)
	if err != nil {
		return err
	}
	if doc.Status != from {
		return workflow.NewInvalidTransitionError(topicID,
			fmt.Sprintf("topic is %s, transition expected %s", doc.Status, from))
	}
	if !from.CanTransitionTo(to) {
		return workflow.NewInvalidTransitionError(topicID,
			fmt.Sprintf("cannot transition %s -> %s", from, to))
	}
	if to == workflow.TopicPlanning || to == workflow.TopicActive {
		topics, err := r.Topics()
		if err != nil {
			return err
		}
		for _, t := range topics {
			if t.ID == topicID {
				continue
			}
			if t.Status == workflow.TopicPlanning || t.Status == workflow.TopicActive {
				return workflow.NewInvalidTransitionError(topicID,
					fmt.Sprintf("topic %s already holds status %s", t.ID, t.Status))
			}
		}
	}
	doc.Status = to
	if err := r.save(topicID, doc); err != nil {
		return err
	}
	r.logger.Info().Str("topic_id", topicID).
		Str("from", string(from)).Str("to", string(to)).
		Msg("topic transitioned")
	return nil
}

// RegisterCase adds a case row to a topic's registry, or replaces an
// existing row with the same ID.
func (r *Registry) RegisterCase(topicID string, row workflow.CaseRow) error {
	if err := row.Status.Validate(); err != nil {
		return workflow.NewInvalidTransitionError(topicID, err.Error())
	}
	doc, err := r.load(topicID)
	if err != nil {
		return err
	}
	if existing := doc.Row(row.ID); existing != nil {
		*existing = row
	} else {
		doc.Cases = append(doc.Cases, row)
	}
	return r.save(topicID, doc)
}

// SetCaseStatus updates a case's status cell in the registry table.
func (r *Registry) SetCaseStatus(topicID, caseID string, status workflow.CaseStatus) error {
	if err := status.Validate(); err != nil {
		return workflow.NewInvalidTransitionError(topicID, err.Error())
	}
	doc, err := r.load(topicID)
	if err != nil {
		return err
	}
	row := doc.Row(caseID)
	if row == nil {
		return workflow.NewInvalidTransitionError(topicID,
			fmt.Sprintf("case %s is not registered", caseID))
	}
	row.Status = status
	if err := r.save(topicID, doc); err != nil {
		return err
	}
	r.logger.Info().Str("topic_id", topicID).Str("case_id", caseID).
		Str("status", string(status)).Msg("case status recorded")
	return nil
}

// SetConfirmNote attaches a single-line pre-run confirmation note to a case
// reference.
func (r *Registry) SetConfirmNote(topicID, caseID, note string) error {
	doc, err := r.load(topicID)
	if err != nil {
		return err
	}
	row := doc.Row(caseID)
	if row == nil {
		return workflow.NewInvalidTransitionError(topicID,
			fmt.Sprintf("case %s is not registered", caseID))
	}
	row.ConfirmNote = note
	return r.save(topicID, doc)
}

// ClearConfirmNote removes any pre-run confirmation note from a case
// reference. Clearing an absent note is a no-op.
func (r *Registry) ClearConfirmNote(topicID, caseID string) error {
	doc, err := r.load(topicID)
	if err != nil {
		return err
	}
	row := doc.Row(caseID)
	if row == nil || row.ConfirmNote == "" {
		return nil
	}
	row.ConfirmNote = ""
	return r.save(topicID, doc)
}

// CreateTopic writes a fresh registry document for a new topic in Planning
// status. It fails if another topic already holds Planning or Active.
func (r *Registry) CreateTopic(topicID string) error {
	if r.store.Exists(docstore.RegistryPath(topicID)) {
		return workflow.NewInvalidTransitionError(topicID, "topic already exists")
	}
	topics, err := r.Topics()
	if err != nil {
		return err
	}
	for _, t := range topics {
		if t.Status == workflow.TopicPlanning || t.Status == workflow.TopicActive {
			return workflow.NewInvalidTransitionError(topicID,
				fmt.Sprintf("topic %s already holds status %s", t.ID, t.Status))
		}
	}
	doc := &Document{TopicID: topicID, Status: workflow.TopicPlanning}
	return r.save(topicID, doc)
}

func (r *Registry) load(topicID string) (*Document, error) {
	content, err := r.store.Read(docstore.RegistryPath(topicID))
	if err != nil {
		return nil, err
	}
	doc, err := ParseDocument(content)
	if err != nil {
		return nil, err
	}
	if doc.TopicID != topicID {
		return nil, workflow.NewParseError(docstore.RegistryPath(topicID),
			fmt.Sprintf("registry document names topic %s", doc.TopicID))
	}
	return doc, nil
}

func (r *Registry) save(topicID string, doc *Document) error {
	return r.store.Write(docstore.RegistryPath(topicID), doc.Render())
}
