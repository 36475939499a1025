// Package registry implements the topic registry: the single source of
// truth for which topic is in which lifecycle phase and for per-case status
// rows. State is persisted as one registry document per topic in the
// document store; every mutation goes through read-status,
// validate-transition, write-status rather than ad hoc document edits.
package registry
