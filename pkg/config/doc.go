// Package config loads the caseflow.yaml project configuration: the
// document store root, the stage interpreter map, run-history and policy
// settings, and the telemetry block. Absent file means defaults.
package config
