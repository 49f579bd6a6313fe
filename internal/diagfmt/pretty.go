package diagfmt

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"meel/internal/diag"
	"meel/internal/source"
)

const tabWidth = 4

type palette struct {
	err, warn, info, note *color.Color
	path, gutter, caret   *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		err:    color.New(color.FgRed, color.Bold),
		warn:   color.New(color.FgYellow, color.Bold),
		info:   color.New(color.FgCyan, color.Bold),
		note:   color.New(color.FgBlue, color.Bold),
		path:   color.New(color.Bold),
		gutter: color.New(color.FgBlue),
		caret:  color.New(color.FgRed, color.Bold),
	}
	for _, c := range []*color.Color{p.err, p.warn, p.info, p.note, p.path, p.gutter, p.caret} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p palette) severity(sev diag.Severity) *color.Color {
	switch sev {
	case diag.SevError:
		return p.err
	case diag.SevWarning:
		return p.warn
	default:
		return p.info
	}
}

// Pretty форматирует диагностики в человекочитаемый вид.
// Идёт по bag.Items() (ожидается bag.Sort() заранее).
// Для каждого diag печатает:
// <path>:<line>:<col>: <SEV> <CODE>: <Message>
// затем контекст строки с подчёркиванием ^^ по Span, затем Notes.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	if bag == nil || fs == nil {
		return
	}
	p := newPalette(opts.Color)
	for _, d := range bag.Items() {
		prettyOne(w, &d, fs, opts, p)
	}
}

func prettyOne(w io.Writer, d *diag.Diagnostic, fs *source.FileSet, opts PrettyOpts, p palette) {
	file := fs.Get(d.Primary.File)
	start, _ := fs.Resolve(d.Primary)
	path := formatPath(file, fs, opts.PathMode)

	fmt.Fprintf(w, "%s: %s: %s\n",
		p.path.Sprintf("%s:%d:%d", path, start.Line, start.Col),
		p.severity(d.Severity).Sprintf("%s %s", d.Severity, d.Code.ID()),
		d.Message,
	)

	// тайминги и ошибки загрузки без исходника
	if file != nil && len(file.Content) > 0 && d.Code != diag.ObsTimings {
		writeSnippet(w, file, fs, d.Primary, opts, p)
	}

	if !opts.ShowNotes && d.Code != diag.ObsTimings {
		return
	}
	for _, note := range d.Notes {
		nfile := fs.Get(note.Span.File)
		nstart, _ := fs.Resolve(note.Span)
		fmt.Fprintf(w, "  %s %s:%d:%d: %s\n",
			p.note.Sprint("note:"),
			formatPath(nfile, fs, opts.PathMode), nstart.Line, nstart.Col,
			note.Msg,
		)
	}
}

func writeSnippet(w io.Writer, file *source.File, fs *source.FileSet, span source.Span, opts PrettyOpts, p palette) {
	start, end := fs.Resolve(span)
	ctx := uint32(max(opts.Context, 0))
	first := start.Line - min(ctx, start.Line-1)
	last := start.Line + ctx

	gutterWidth := len(strconv.FormatUint(uint64(last), 10))
	blank := strings.Repeat(" ", gutterWidth)

	for line := first; line <= last; line++ {
		if !lineExists(file, line) {
			break
		}
		text := expandTabs(file.GetLine(line))
		if opts.Width > 0 {
			text = runewidth.Truncate(text, int(opts.Width), "...")
		}
		fmt.Fprintf(w, " %s %s\n", p.gutter.Sprintf("%*d |", gutterWidth, line), text)

		if line != start.Line {
			continue
		}
		raw := file.GetLine(line)
		prefix := clampPrefix(raw, int(start.Col)-1)
		width := 1
		if end.Line == start.Line && end.Col > start.Col {
			width = max(1, runewidth.StringWidth(expandTabs(clampPrefix(raw, int(end.Col)-1)))-
				runewidth.StringWidth(expandTabs(prefix)))
		}
		pad := strings.Repeat(" ", runewidth.StringWidth(expandTabs(prefix)))
		fmt.Fprintf(w, " %s %s%s\n", p.gutter.Sprint(blank+" |"), pad, p.caret.Sprint(strings.Repeat("^", width)))
	}
}

func lineExists(file *source.File, line uint32) bool {
	return int(line) <= len(file.LineIdx)+1
}

func clampPrefix(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if n > len(s) {
		return s
	}
	return s[:n]
}

func expandTabs(s string) string {
	if !strings.Contains(s, "\t") {
		return s
	}
	var b strings.Builder
	col := 0
	for _, r := range s {
		if r == '\t' {
			n := tabWidth - col%tabWidth
			b.WriteString(strings.Repeat(" ", n))
			col += n
			continue
		}
		b.WriteRune(r)
		col += runewidth.RuneWidth(r)
	}
	return b.String()
}
