// Package workflow defines the core data model of the caseflow
// orchestrator: topics, cases, deliverables, prerequisite edges and
// confirmation items, their lifecycle statuses, and the classified error
// taxonomy shared by every component. It is a leaf package with no
// dependencies on the rest of the module.
package workflow
