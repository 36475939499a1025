package docstore

import "path"

// Conventional document locations inside a topic directory. The scaffolder
// writes them, the execution engine reads them, and cross-topic prerequisite
// paths reference them root-relative.
const (
	// TopicsDir is the root-relative directory holding all topics.
	TopicsDir = "topics"

	// RegistryFile is the topic registry document name inside a topic dir.
	RegistryFile = "registry.md"

	// SummaryFile is the topic summary document name inside a topic dir.
	SummaryFile = "summary.md"

	// PlanningDir holds approved planning documents inside a topic dir.
	PlanningDir = "planning"

	// CasesDir holds case spec documents inside a topic dir.
	CasesDir = "cases"

	// SourceDir holds materialized stage sources inside a topic dir.
	SourceDir = "src"

	// TestsDir holds verification stage sources inside a topic dir.
	TestsDir = "tests"

	// OutputDir holds results artifacts, figures and verdicts.
	OutputDir = "output"

	// ReportsDir holds generated report documents.
	ReportsDir = "reports"
)

// TopicDir returns the root-relative directory of a topic.
func TopicDir(topicID string) string {
	return path.Join(TopicsDir, topicID)
}

// RegistryPath returns the root-relative path of a topic's registry document.
func RegistryPath(topicID string) string {
	return path.Join(TopicsDir, topicID, RegistryFile)
}

// SummaryPath returns the root-relative path of a topic's summary document.
func SummaryPath(topicID string) string {
	return path.Join(TopicsDir, topicID, SummaryFile)
}

// PlanningPath returns the root-relative path of a planning document.
func PlanningPath(topicID, name string) string {
	return path.Join(TopicsDir, topicID, PlanningDir, name)
}

// CaseSpecPath returns the root-relative path of a case spec document.
func CaseSpecPath(topicID, caseID string) string {
	return path.Join(TopicsDir, topicID, CasesDir, caseID+".md")
}

// InTopic resolves a topic-relative document path (e.g. "output/x.json")
// to a root-relative one. Paths already rooted under TopicsDir are
// cross-topic references and pass through unchanged.
func InTopic(topicID, rel string) string {
	if isRootRelative(rel) {
		return rel
	}
	return path.Join(TopicsDir, topicID, rel)
}

func isRootRelative(p string) bool {
	return p == TopicsDir || len(p) > len(TopicsDir) && p[:len(TopicsDir)+1] == TopicsDir+"/"
}
