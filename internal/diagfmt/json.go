package diagfmt

import (
	"encoding/json"
	"io"

	"meel/internal/diag"
	"meel/internal/source"
)

// Location points into a template. Start and End are byte offsets; the
// 1-based line/col and the editor range (0-based, UTF-16) are filled in
// only with JSONOpts.IncludePositions.
type Location struct {
	File  string        `json:"file"`
	Start uint32        `json:"start"`
	End   uint32        `json:"end"`
	Line  uint32        `json:"line,omitempty"`
	Col   uint32        `json:"col,omitempty"`
	Range *source.Range `json:"range,omitempty"`
}

type Note struct {
	Message  string   `json:"message"`
	Location Location `json:"location"`
}

type Item struct {
	Severity string   `json:"severity"`
	Code     string   `json:"code"`
	Title    string   `json:"title,omitempty"`
	Message  string   `json:"message"`
	Location Location `json:"location"`
	Notes    []Note   `json:"notes,omitempty"`
}

// Report is the document written by `meel check --format json`.
type Report struct {
	Diagnostics []Item `json:"diagnostics"`
	Count       int    `json:"count"`
	Errors      int    `json:"errors"`
	Warnings    int    `json:"warnings"`
	// Truncated is set when JSONOpts.Max dropped diagnostics.
	Truncated bool `json:"truncated,omitempty"`
}

func formatPath(f *source.File, fs *source.FileSet, mode PathMode) string {
	if f == nil {
		return ""
	}
	baseDir := ""
	if mode == PathModeRelative {
		baseDir = fs.BaseDir()
	}
	return f.FormatPath(mode.String(), baseDir)
}

func locate(span source.Span, fs *source.FileSet, opts JSONOpts) Location {
	f := fs.Get(span.File)
	loc := Location{
		File:  formatPath(f, fs, opts.PathMode),
		Start: span.Start,
		End:   span.End,
	}
	if opts.IncludePositions && f != nil {
		start, _ := fs.Resolve(span)
		loc.Line, loc.Col = start.Line, start.Col
		r := f.Range(span)
		loc.Range = &r
	}
	return loc
}

// BuildReport converts the bag into the JSON report without encoding it.
// Timing diagnostics keep their notes regardless of IncludeNotes since the
// phases live there.
func BuildReport(bag *diag.Bag, fs *source.FileSet, opts JSONOpts) Report {
	items := bag.Items()
	rep := Report{Diagnostics: make([]Item, 0, len(items))}
	for i := range items {
		d := &items[i]
		switch d.Severity {
		case diag.SevError:
			rep.Errors++
		case diag.SevWarning:
			rep.Warnings++
		}
		if opts.Max > 0 && len(rep.Diagnostics) == opts.Max {
			rep.Truncated = true
			continue
		}

		item := Item{
			Severity: d.Severity.Label(),
			Code:     d.Code.ID(),
			Title:    d.Code.Title(),
			Message:  d.Message,
			Location: locate(d.Primary, fs, opts),
		}
		if opts.IncludeNotes || d.Code == diag.ObsTimings {
			for _, n := range d.Notes {
				item.Notes = append(item.Notes, Note{Message: n.Msg, Location: locate(n.Span, fs, opts)})
			}
		}
		rep.Diagnostics = append(rep.Diagnostics, item)
	}
	rep.Count = len(rep.Diagnostics)
	return rep
}

// JSON writes the indented report for bag to w.
func JSON(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts JSONOpts) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(BuildReport(bag, fs, opts))
}
