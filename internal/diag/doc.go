// Package diag defines the diagnostic model shared by the template checker,
// the CLI and the language server.
//
// # Purpose
//
//   - Provide deterministic data structures for findings produced by the
//     brace matcher and by the I/O layer of the driver.
//   - Offer light-weight utilities (Reporter, Bag) that let producers emit
//     diagnostics without coupling to concrete storage or formatting layers.
//
// # Scope
//
// Package diag does not perform any formatting beyond the short single-line
// form used by golden tests. Rendering lives in internal/diagfmt, publishing
// to editors lives in internal/lsp.
//
// # Data model
//
// Diagnostic is the central record. It contains:
//
//   - Severity – tri-level enum (Info, Warning, Error) defined in severity.go.
//   - Code – compact numeric identifier (see codes.go) with stable string form.
//   - Message – human oriented text; keep it short and actionable.
//   - Primary span – the canonical source.Span pointing to the issue.
//   - Notes – optional secondary spans/messages for additional context.
//
// # Emitting diagnostics
//
// Producers use a diag.Reporter. BagReporter aggregates into a Bag, which
// supports limits and sorting; SliceReporter keeps emission
// order untouched, which is what the editor path needs.
package diag
