package diag

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"meel/internal/source"
)

// shortLine is one row of the short format:
//
//	error TPL1002 mail.meel:2:7 Unmatched closing brace }}
type shortLine struct {
	sev  string
	code string
	path string
	line uint32
	col  uint32
	msg  string
}

func (l shortLine) String() string {
	return fmt.Sprintf("%s %s %s:%d:%d %s", l.sev, l.code, l.path, l.line, l.col, l.msg)
}

func compareShort(a, b shortLine) int {
	return cmp.Or(
		cmp.Compare(a.path, b.path),
		cmp.Compare(a.line, b.line),
		cmp.Compare(a.col, b.col),
		cmp.Compare(a.sev, b.sev),
		cmp.Compare(a.code, b.code),
		cmp.Compare(a.msg, b.msg),
	)
}

// FormatShortDiagnostics renders one line per diagnostic, ordered by
// position, for `meel check --format short` and golden tests. Paths are
// relative to the file set's base directory. Notes become "note" lines
// carrying their parent's code when includeNotes is set.
func FormatShortDiagnostics(diags []Diagnostic, fs *source.FileSet, includeNotes bool) string {
	if fs == nil || len(diags) == 0 {
		return ""
	}

	lines := make([]shortLine, 0, len(diags))
	add := func(sev string, code Code, span source.Span, msg string) {
		file := fs.Get(span.File)
		if file == nil {
			return
		}
		start, _ := fs.Resolve(span)
		lines = append(lines, shortLine{
			sev:  sev,
			code: code.ID(),
			path: trimDotSlash(file.FormatPath("relative", fs.BaseDir())),
			line: start.Line,
			col:  start.Col,
			msg:  oneLine(msg),
		})
	}
	for i := range diags {
		d := &diags[i]
		add(d.Severity.Label(), d.Code, d.Primary, d.Message)
		if !includeNotes {
			continue
		}
		for _, n := range d.Notes {
			add("note", d.Code, n.Span, n.Msg)
		}
	}
	slices.SortStableFunc(lines, compareShort)

	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = l.String()
	}
	return strings.Join(out, "\n")
}

// oneLine folds line breaks so a message never spans rows.
func oneLine(msg string) string {
	return strings.TrimSpace(strings.NewReplacer("\r\n", " ", "\r", " ", "\n", " ").Replace(msg))
}

func trimDotSlash(p string) string {
	for strings.HasPrefix(p, "./") {
		p = p[2:]
	}
	return p
}
