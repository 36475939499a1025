// Package engine executes a single case's deliverables in strict order:
// materialize stage sources, run analysis stages, then visualization
// stages, then the verification stage, each as an external process with
// fully captured output and fail-fast semantics. On full success only, it
// generates the report document and invokes the status propagator to
// commit the terminal status into the topic's shared documents.
package engine
