package braces

import (
	"meel/internal/diag"
	"meel/internal/source"
)

const (
	MsgUnmatchedClose = "Unmatched closing brace }}"
	MsgUnmatchedOpen  = "Unmatched opening brace {{"
)

// Diagnose reports one error per unmatched marker, in the order the matcher
// emitted them. Matches produce nothing.
func Diagnose(res Result, file source.FileID, r diag.Reporter) {
	if r == nil {
		return
	}
	for _, u := range res.Unmatched {
		sp := Marker(u).Span(file)
		switch u.Kind {
		case Close:
			diag.ReportError(r, diag.TplUnmatchedCloseMarker, sp, MsgUnmatchedClose).Emit()
		case Open:
			diag.ReportError(r, diag.TplUnmatchedOpenMarker, sp, MsgUnmatchedOpen).Emit()
		}
	}
}

// Diagnostics is Diagnose collected into a slice. It returns an empty,
// non-nil slice for a balanced result so callers can publish it as is.
func Diagnostics(res Result, file source.FileID) []diag.Diagnostic {
	r := &diag.SliceReporter{Items: make([]diag.Diagnostic, 0, len(res.Unmatched))}
	Diagnose(res, file, r)
	return r.Items
}
