// Package policy evaluates Rego policies before a case run. The built-in
// policies gate runs on outstanding confirmation items and on stage script
// placement; additional .rego files can be loaded from configured paths.
// Policies express denial: a run proceeds only when no enabled policy
// yields a deny violation of blocking severity.
package policy
