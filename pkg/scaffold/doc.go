// Package scaffold turns an approved planning document into fully resolved
// case spec documents. It parses the plan into typed case blocks with a
// small explicit grammar that fails loudly on structural mismatch, writes
// one spec document per block plus a fresh topic summary, archives the
// source plan, records confirmation notes in the topic registry, and
// finally transitions the topic Planning -> Active.
package scaffold
