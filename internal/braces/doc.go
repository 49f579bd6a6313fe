// Package braces finds `{{` / `}}` markers in template text and pairs them.
//
// The pipeline is split into small pure steps:
//
//   - Scan walks the bytes once and returns markers in text order.
//   - Match pairs markers with a LIFO stack and reports leftovers.
//   - Diagnose turns leftovers into diag.Diagnostic records.
//
// Nothing here looks inside a placeholder except Placeholders, which
// extracts trimmed names for listings and hovers. Offsets are byte offsets
// into the input; mapping to editor positions is the caller's job.
package braces
