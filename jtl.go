// Package jtl transforms JSON documents with ordered, declarative
// mappings. Each mapping evaluates a jq expression against a source
// document and writes the results into a destination document at a
// concrete path, merging by one of two disciplines: upsert (type-aware
// incremental merge) or replace (unconditional overwrite).
//
// Key features:
//   - Concrete destination paths with auto-created containers
//     (.a.b[2].c grows arrays with null padding as needed)
//   - Type-aware upsert: strings join with a delimiter, arrays
//     concatenate, objects deep-merge, anything else last-write-wins
//   - Spec files that mix mappings with inline ctx/with directives
//   - Meta-chains: steps whose sources and destinations flow from the
//     previous step's output via the $prev sentinel
//
// The expression dialect lives behind the Evaluator interface; the jq
// subpackage provides the gojq-backed implementation.
package jtl
