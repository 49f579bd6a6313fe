package engine

import (
	"meel/internal/decor"
	"meel/internal/diag"
	"meel/internal/source"
)

// Document is the host's view of an open text document.
type Document interface {
	URI() string
	LanguageID() string
	Text() string
	// OffsetToPosition maps a byte offset in Text to an editor position.
	OffsetToPosition(offset uint32) source.Position
}

// EditorRef identifies an editor showing the document with URI.
type EditorRef struct {
	ID  string `json:"editorId"`
	URI string `json:"uri"`
}

// DiagnosticSink receives the full diagnostic set for one document.
// ReplaceAll discards whatever was published for uri before.
type DiagnosticSink interface {
	ReplaceAll(uri string, diags []diag.Diagnostic) error
}

// DecorationSink renders ranges with a style in one editor. Every call
// replaces the ranges previously applied for the same kind.
type DecorationSink interface {
	Apply(editor EditorRef, kind decor.Kind, style *decor.Style, ranges []source.Range) error
}

// TextDocument is a plain Document backed by a source.File.
type TextDocument struct {
	uri  string
	lang string
	file *source.File
}

// NewTextDocument wraps text; positions follow the UTF-16 editor convention.
func NewTextDocument(uri, languageID, text string) *TextDocument {
	return &TextDocument{
		uri:  uri,
		lang: languageID,
		file: source.NewFile(uri, []byte(text)),
	}
}

func (d *TextDocument) URI() string        { return d.uri }
func (d *TextDocument) LanguageID() string { return d.lang }
func (d *TextDocument) Text() string       { return string(d.file.Content) }

func (d *TextDocument) OffsetToPosition(offset uint32) source.Position {
	return d.file.Position(offset)
}

// File exposes the backing file.
func (d *TextDocument) File() *source.File { return d.file }
