// Package diag defines the diagnostic model shared by all pipeline phases.
//
// # Purpose
//
//   - Provide deterministic, serialisable data structures that capture findings
//     produced by the lexer, parser, resolver and the coherence pass.
//   - Offer light-weight utilities (Reporter, Bag) that let producers emit
//     diagnostics without coupling to concrete storage or formatting layers.
//
// # Scope
//
// Package diag does not perform any formatting beyond the single-line short
// form, nor IO or CLI integration. Rendering lives in internal/diagfmt and
// orchestration in internal/driver.
//
// # Data model
//
// Diagnostic is the central record:
//
//   - Severity – tri-level enum (Info, Warning, Error) defined in severity.go.
//   - Code – compact numeric identifier (see codes.go) with stable string form
//     such as "COH0200".
//   - Message – human oriented text; keep it short and actionable.
//   - Primary span – the canonical source.Span pointing to the issue.
//   - Notes – optional secondary spans/messages ("trait declared here").
//   - Fixes – optional text edits that address the problem.
//
// # Emitting diagnostics
//
// Phases build a Diagnostic with NewError / WithNote / WithFix and hand it to
// a Reporter via Emit. BagReporter collects into a Bag, MultiReporter fans out
// to the shared sink and LockedReporter serializes that sink when units are
// checked concurrently.
package diag
