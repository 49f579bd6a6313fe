package diagfmt

import (
	"io"

	"meel/internal/diag"
	"meel/internal/source"
)

// Short writes one line per diagnostic, sorted, in the golden format.
func Short(w io.Writer, bag *diag.Bag, fs *source.FileSet, includeNotes bool) error {
	out := diag.FormatShortDiagnostics(bag.Items(), fs, includeNotes)
	if out == "" {
		return nil
	}
	_, err := io.WriteString(w, out+"\n")
	return err
}
