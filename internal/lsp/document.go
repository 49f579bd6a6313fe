package lsp

import (
	"meel/internal/source"
)

// document is an open text buffer. It satisfies engine.Document.
type document struct {
	uri        string
	languageID string
	version    int
	file       *source.File
}

func newDocument(uri, languageID string, version int, text string) *document {
	return &document{
		uri:        uri,
		languageID: languageID,
		version:    version,
		file:       source.NewFile(uri, []byte(text)),
	}
}

func (d *document) URI() string        { return d.uri }
func (d *document) LanguageID() string { return d.languageID }
func (d *document) Text() string       { return string(d.file.Content) }

func (d *document) OffsetToPosition(offset uint32) source.Position {
	return d.file.Position(offset)
}

// withText returns a copy holding text at version; documents are never
// mutated in place so a sink reading an older snapshot stays consistent.
func (d *document) withText(version int, text string) *document {
	return newDocument(d.uri, d.languageID, version, text)
}
