package lsp

import (
	"meel/internal/source"
)

// applyChanges replays content changes in order. A change without a range
// replaces the whole text; ranged changes are clamped to the text bounds.
func applyChanges(text string, changes []textDocumentContentChangeEvent) string {
	for _, change := range changes {
		if change.Range == nil {
			text = change.Text
			continue
		}
		file := source.NewFile("", []byte(text))
		start := int(file.Offset(change.Range.Start))
		end := int(file.Offset(change.Range.End))
		if end < start {
			end = start
		}
		text = text[:start] + change.Text + text[end:]
	}
	return text
}
