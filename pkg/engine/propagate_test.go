package engine

import (
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/caseflow/caseflow/pkg/docstore"
	"github.com/caseflow/caseflow/pkg/registry"
	"github.com/caseflow/caseflow/pkg/workflow"
)

func TestCommitPropagatesStatus(t *testing.T) {
	store, err := docstore.New(t.TempDir(), zerolog.Nop())
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	reg := registry.New(store, zerolog.Nop())
	if err := reg.CreateTopic("t1"); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	row := workflow.CaseRow{ID: "A1", Status: workflow.CasePending, Title: "Baseline fit", SpecPath: "cases/A1.md"}
	if err := reg.RegisterCase("t1", row); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if err := reg.SetConfirmNote("t1", "A1", "confirm sampling window"); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	p := NewPropagator(store, reg, zerolog.Nop())
	c := &workflow.Case{ID: "A1", TopicID: "t1", Title: "Baseline fit"}
	results := map[string]interface{}{
		"period": 1.25,
		"n":      float64(42),
		"series": []interface{}{1.0, 2.0},
	}
	if err := p.Commit(c, workflow.CaseComplete, results); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	summary, err := store.Read(docstore.SummaryPath("t1"))
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if !strings.Contains(summary, "## Case A1: Baseline fit [Complete]") {
		t.Errorf("Missing case heading in summary:\n%s", summary)
	}
	// Scalar headline values only, in sorted key order.
	if !strings.Contains(summary, "- n: 42\n- period: 1.25\n") {
		t.Errorf("Unexpected headline values:\n%s", summary)
	}
	if strings.Contains(summary, "series") {
		t.Errorf("Expected nested values to stay out of the summary:\n%s", summary)
	}

	topic, err := reg.Topic("t1")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if topic.Cases[0].Status != workflow.CaseComplete {
		t.Errorf("Expected Complete registry row, got %s", topic.Cases[0].Status)
	}
	if topic.Cases[0].ConfirmNote != "" {
		t.Errorf("Expected cleared confirm note, got %q", topic.Cases[0].ConfirmNote)
	}
}
