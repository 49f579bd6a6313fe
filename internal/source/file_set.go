package source

import (
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"

	"fortio.org/safecast"
)

// FileSet owns the templates loaded by one CLI run. Re-adding a path keeps
// the old version reachable by its FileID; lookups by path see the newest.
// Not safe for concurrent mutation: the driver loads everything before its
// workers start.
type FileSet struct {
	files   []File
	latest  map[string]FileID
	baseDir string
}

func NewFileSet() *FileSet { return NewFileSetWithBase("") }

// NewFileSetWithBase creates a FileSet whose relative paths are computed against baseDir.
func NewFileSetWithBase(baseDir string) *FileSet {
	return &FileSet{latest: make(map[string]FileID), baseDir: baseDir}
}

// BaseDir returns the base directory, falling back to the working directory.
func (fileSet *FileSet) BaseDir() string {
	if fileSet.baseDir != "" {
		return fileSet.baseDir
	}
	wd, _ := os.Getwd()
	return wd
}

// Add stores content as a new file version and returns its id.
func (fileSet *FileSet) Add(path string, content []byte, flags FileFlags) FileID {
	n, err := safecast.Conv[uint32](len(fileSet.files))
	if err != nil {
		panic(fmt.Errorf("too many files in set: %w", err))
	}
	f := newFile(FileID(n), path, content, flags)
	fileSet.files = append(fileSet.files, f)
	fileSet.latest[f.Path] = f.ID
	return f.ID
}

// Load reads a template from disk. A UTF-8 BOM is dropped and CRLF becomes
// LF, both recorded in the file's flags; lone CR bytes are kept.
func (fileSet *FileSet) Load(path string) (FileID, error) {
	// #nosec G304 -- path is provided by the caller
	raw, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	var flags FileFlags
	content, ok := removeBOM(raw)
	if ok {
		flags |= FileHadBOM
	}
	if content, ok = normalizeCRLF(content); ok {
		flags |= FileNormalizedCRLF
	}
	return fileSet.Add(path, content, flags), nil
}

// AddVirtual adds an in-memory file (editor buffer, stdin, test). Content
// is stored as is, so offsets keep matching the editor's text.
func (fileSet *FileSet) AddVirtual(name string, content []byte) FileID {
	return fileSet.Add(name, content, FileVirtual)
}

// Get returns the file for id, or nil when id is unknown.
func (fileSet *FileSet) Get(id FileID) *File {
	if int(id) >= len(fileSet.files) {
		return nil
	}
	return &fileSet.files[id]
}

// GetLatest returns the newest FileID loaded under path.
func (fileSet *FileSet) GetLatest(path string) (FileID, bool) {
	id, ok := fileSet.latest[normalizePath(path)]
	return id, ok
}

// Resolve converts a span into 1-based line and byte column positions.
func (fileSet *FileSet) Resolve(span Span) (start, end LineCol) {
	f := fileSet.Get(span.File)
	if f == nil {
		return LineCol{}, LineCol{}
	}
	return toLineCol(f.LineIdx, span.Start), toLineCol(f.LineIdx, span.End)
}

// NewFile builds a standalone virtual file outside any FileSet.
func NewFile(path string, content []byte) *File {
	f := newFile(0, path, content, FileVirtual)
	return &f
}

func newFile(id FileID, path string, content []byte, flags FileFlags) File {
	return File{
		ID:      id,
		Path:    normalizePath(path),
		Content: content,
		LineIdx: buildLineIndex(content),
		Hash:    sha256.Sum256(content),
		Flags:   flags,
	}
}

// GetLine returns the 1-based line lineNum without its terminator (a
// trailing CR included). Missing lines yield "".
func (f *File) GetLine(lineNum uint32) string {
	if lineNum == 0 || int(lineNum) > len(f.LineIdx)+1 {
		return ""
	}
	line := int(lineNum) - 1
	start, end := f.lineStart(line), f.contentLen()
	if line < len(f.LineIdx) {
		end = f.LineIdx[line]
	}
	text := f.Content[start:end]
	if n := len(text); n > 0 && text[n-1] == '\r' {
		text = text[:n-1]
	}
	return string(text)
}

// FormatPath formats the path according to mode: "absolute", "relative",
// "basename" or "auto". baseDir is only used by "relative", defaulting to
// the working directory. Virtual files keep their name as is.
func (f *File) FormatPath(mode, baseDir string) string {
	if f.Flags&FileVirtual != 0 {
		return f.Path
	}
	var (
		out string
		err error
	)
	switch mode {
	case "absolute":
		out, err = AbsolutePath(f.Path)
	case "relative":
		if baseDir == "" {
			baseDir, _ = os.Getwd()
		}
		out, err = RelativePath(f.Path, baseDir)
	case "basename":
		return BaseName(f.Path)
	case "auto":
		// длинные абсолютные пути не помещаются в терминал
		if len(f.Path) >= 40 && filepath.IsAbs(f.Path) {
			return BaseName(f.Path)
		}
		return f.Path
	default:
		return f.Path
	}
	if err != nil {
		return f.Path
	}
	return out
}
