package driver

import (
	"meel/internal/braces"
	"meel/internal/source"
)

// MarkersResult is the scanner output for one file.
type MarkersResult struct {
	FileSet *source.FileSet
	File    *source.File
	Markers []braces.Marker
}

// Markers loads path and returns every marker in it.
func Markers(path string) (*MarkersResult, error) {
	fs := source.NewFileSet()
	fileID, err := fs.Load(path)
	if err != nil {
		return nil, err
	}
	file := fs.Get(fileID)
	return &MarkersResult{
		FileSet: fs,
		File:    file,
		Markers: braces.Scan(file.Content),
	}, nil
}
