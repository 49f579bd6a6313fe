package diagfmt

// PathMode selects how template paths appear in reports.
type PathMode uint8

const (
	PathModeAuto     PathMode = iota // short paths as given, long absolute ones by base name
	PathModeAbsolute                 // always absolute
	PathModeRelative                 // relative to the file set's base directory
	PathModeBasename                 // file name only
)

var pathModeNames = [...]string{"auto", "absolute", "relative", "basename"}

// ParsePathMode maps a --path-mode value; "" means auto.
func ParsePathMode(s string) (PathMode, bool) {
	if s == "" {
		return PathModeAuto, true
	}
	for i, name := range pathModeNames {
		if name == s {
			return PathMode(i), true
		}
	}
	return PathModeAuto, false
}

// String returns the name understood by source.File.FormatPath.
func (m PathMode) String() string {
	if int(m) < len(pathModeNames) {
		return pathModeNames[m]
	}
	return "auto"
}

// PrettyOpts configures the terminal report.
type PrettyOpts struct {
	Color     bool
	Context   int8 // lines of template shown around the marker
	PathMode  PathMode
	Width     uint8 // максимальная ширина строки, 0 - не ограничено
	ShowNotes bool
}

// JSONOpts configures the JSON report.
type JSONOpts struct {
	IncludePositions bool // line/col and editor range next to byte offsets
	PathMode         PathMode
	Max              int // cuts the report, not the bag
	IncludeNotes     bool
}
