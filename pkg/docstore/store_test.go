package docstore

import (
	"testing"

	"github.com/rs/zerolog"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := New(t.TempDir(), zerolog.Nop())
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	return store
}

func TestWriteReadRoundTrip(t *testing.T) {
	store := newTestStore(t)

	if err := store.Write("topics/t/registry.md", "# Topic registry: t\n"); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	got, err := store.Read("topics/t/registry.md")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if got != "# Topic registry: t\n" {
		t.Errorf("Unexpected content: %q", got)
	}
	if !store.Exists("topics/t/registry.md") {
		t.Error("Expected document to exist")
	}
	if store.Exists("topics/t/missing.md") {
		t.Error("Expected missing document to not exist")
	}
}

func TestAppendSeparatesBlocks(t *testing.T) {
	store := newTestStore(t)

	if err := store.Append("topics/t/summary.md", "# Topic summary: t"); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if err := store.Append("topics/t/summary.md", "## Case A1 [Complete]"); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	got, err := store.Read("topics/t/summary.md")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	want := "# Topic summary: t\n\n## Case A1 [Complete]\n"
	if got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}

func TestPrependLineIsIdempotent(t *testing.T) {
	store := newTestStore(t)

	if err := store.Write("plan.md", "## Case A1: Title\n"); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	prepended, err := store.PrependLine("plan.md", "> archived")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if !prepended {
		t.Error("Expected first prepend to report true")
	}

	prepended, err = store.PrependLine("plan.md", "> archived")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if prepended {
		t.Error("Expected second prepend to be a no-op")
	}

	got, _ := store.Read("plan.md")
	if got != "> archived\n## Case A1: Title\n" {
		t.Errorf("Unexpected content: %q", got)
	}
}

func TestInTopicPaths(t *testing.T) {
	if got := InTopic("t1", "output/results.json"); got != "topics/t1/output/results.json" {
		t.Errorf("Expected topic-relative resolution, got %q", got)
	}
	// Paths already rooted under topics/ are cross-topic references.
	if got := InTopic("t1", "topics/t0/output/results.json"); got != "topics/t0/output/results.json" {
		t.Errorf("Expected cross-topic path to pass through, got %q", got)
	}
}

func TestCaseSpecPath(t *testing.T) {
	if got := CaseSpecPath("t1", "A1"); got != "topics/t1/cases/A1.md" {
		t.Errorf("Unexpected spec path: %q", got)
	}
}
