// Package stores persists run history in SQLite: one row per run attempt,
// one row per executed stage, and free-form run events. History is
// supplementary to the document store; the documents remain the source of
// truth for case status.
package stores
