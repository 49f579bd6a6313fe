package diagfmt

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"meel/internal/diag"
	"meel/internal/source"
)

// TestJSONBasic проверяет базовое JSON форматирование
func TestJSONBasic(t *testing.T) {
	fs := source.NewFileSet()
	content := []byte("Dear {{name}},\n\tsee {{link\n")
	fileID := fs.AddVirtual("mail.meel", content)

	bag := diag.NewBag(10)
	bag.Add(diag.NewError(
		diag.TplUnmatchedOpenMarker,
		source.Span{File: fileID, Start: 20, End: 22},
		"Unmatched opening brace {{",
	))

	var buf bytes.Buffer
	opts := JSONOpts{
		IncludePositions: true,
		PathMode:         PathModeBasename,
		IncludeNotes:     true,
	}
	if err := JSON(&buf, bag, fs, opts); err != nil {
		t.Fatalf("JSON() error: %v", err)
	}

	var output Report
	if err := json.Unmarshal(buf.Bytes(), &output); err != nil {
		t.Fatalf("Invalid JSON output: %v\nOutput: %s", err, buf.String())
	}
	if output.Count != 1 || len(output.Diagnostics) != 1 {
		t.Fatalf("Expected exactly one diagnostic, got %+v", output)
	}

	d := output.Diagnostics[0]
	if d.Severity != "error" {
		t.Errorf("Expected severity=error, got %s", d.Severity)
	}
	if d.Code != "TPL1001" {
		t.Errorf("Expected code=TPL1001, got %s", d.Code)
	}
	if d.Message != "Unmatched opening brace {{" {
		t.Errorf("unexpected message %q", d.Message)
	}
	if d.Location.File != "mail.meel" {
		t.Errorf("Expected file=mail.meel, got %s", d.Location.File)
	}
	if d.Location.Start != 20 || d.Location.End != 22 {
		t.Errorf("unexpected byte range %d..%d", d.Location.Start, d.Location.End)
	}
	if d.Location.Line != 2 || d.Location.Col != 6 {
		t.Errorf("Expected 2:6, got %d:%d", d.Location.Line, d.Location.Col)
	}
	// the tab is one UTF-16 unit in editor coordinates
	want := source.Range{Start: source.Position{Line: 1, Character: 5}, End: source.Position{Line: 1, Character: 7}}
	if d.Location.Range == nil || *d.Location.Range != want {
		t.Errorf("unexpected editor range %+v", d.Location.Range)
	}
	if output.Errors != 1 || output.Warnings != 0 || output.Truncated {
		t.Errorf("unexpected totals %+v", output)
	}
}

func TestJSONMaxAndNotes(t *testing.T) {
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("x.meel", []byte("}} }} }}"))

	bag := diag.NewBag(10)
	for _, off := range []uint32{0, 3, 6} {
		d := diag.NewError(diag.TplUnmatchedCloseMarker, source.Span{File: fileID, Start: off, End: off + 2}, "Unmatched closing brace }}").
			WithNote(source.Span{File: fileID, Start: off, End: off + 2}, "no opening brace before this")
		bag.Add(d)
	}

	output := BuildReport(bag, fs, JSONOpts{Max: 2})
	if output.Count != 2 || !output.Truncated || output.Errors != 3 {
		t.Fatalf("Expected Max to cut output to 2 of 3, got %+v", output)
	}
	if len(output.Diagnostics[0].Notes) != 0 {
		t.Fatalf("notes must be omitted unless requested")
	}
	if output.Diagnostics[0].Location.Line != 0 || output.Diagnostics[0].Location.Range != nil {
		t.Fatalf("positions must be omitted unless requested")
	}

	withNotes := BuildReport(bag, fs, JSONOpts{IncludeNotes: true})
	if len(withNotes.Diagnostics[2].Notes) != 1 {
		t.Fatalf("expected note on third diagnostic, got %+v", withNotes.Diagnostics[2])
	}
}

func TestJSONEmptyBag(t *testing.T) {
	var buf bytes.Buffer
	if err := JSON(&buf, diag.NewBag(1), source.NewFileSet(), JSONOpts{}); err != nil {
		t.Fatalf("JSON() error: %v", err)
	}
	if !strings.Contains(buf.String(), `"diagnostics": []`) {
		t.Fatalf("empty bag must encode an empty array, got %s", buf.String())
	}
}

func TestShortFormat(t *testing.T) {
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("s.meel", []byte("{{ }} }}"))
	bag := diag.NewBag(4)
	bag.Add(diag.NewError(diag.TplUnmatchedCloseMarker, source.Span{File: fileID, Start: 6, End: 8}, "Unmatched closing brace }}"))

	var buf bytes.Buffer
	if err := Short(&buf, bag, fs, false); err != nil {
		t.Fatalf("Short() error: %v", err)
	}
	if got, want := buf.String(), "error TPL1002 s.meel:1:7 Unmatched closing brace }}\n"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}
