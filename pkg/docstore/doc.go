// Package docstore provides the single read/write access path to the
// document store backing a caseflow project. All persisted workflow state
// (topic registries, case specs, summaries, results artifacts, reports)
// lives as structured text documents under a project root, and every other
// component goes through this package rather than touching the filesystem
// directly.
package docstore
