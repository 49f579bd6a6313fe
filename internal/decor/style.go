package decor

import (
	"errors"
	"fmt"
	"regexp"
	"sync"
)

const (
	DefaultMarkerColor      = "#FFD700"
	DefaultPlaceholderColor = "#9CDCFE"
)

// ErrDisposed is returned when styles are used after Dispose.
var ErrDisposed = errors.New("decor: styles disposed")

var colorRe = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// ValidColor reports whether c has the #RRGGBB form.
func ValidColor(c string) bool {
	return colorRe.MatchString(c)
}

// Style is an immutable decoration descriptor.
type Style struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

// Styles owns the registered style per Kind. It is created unregistered;
// Init registers, Dispose releases. Dispose is idempotent.
type Styles struct {
	mu       sync.Mutex
	colors   [len(Kinds)]string
	styles   [len(Kinds)]*Style
	inited   bool
	disposed bool
}

// NewStyles builds styles with the given colours; empty values take defaults.
func NewStyles(markerColor, placeholderColor string) (*Styles, error) {
	if markerColor == "" {
		markerColor = DefaultMarkerColor
	}
	if placeholderColor == "" {
		placeholderColor = DefaultPlaceholderColor
	}
	for _, c := range []string{markerColor, placeholderColor} {
		if !ValidColor(c) {
			return nil, fmt.Errorf("invalid decoration color %q: want #RRGGBB", c)
		}
	}
	s := &Styles{}
	s.colors[KindMarker] = markerColor
	s.colors[KindPlaceholder] = placeholderColor
	return s, nil
}

// DefaultStyles returns styles with the default colours.
func DefaultStyles() *Styles {
	s, err := NewStyles("", "")
	if err != nil {
		panic(err)
	}
	return s
}

// Init registers the style descriptors. Calling Init twice is a no-op;
// calling it after Dispose returns ErrDisposed.
func (s *Styles) Init() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disposed {
		return ErrDisposed
	}
	if s.inited {
		return nil
	}
	for _, k := range Kinds {
		s.styles[k] = &Style{Name: "meel." + k.String(), Color: s.colors[k]}
	}
	s.inited = true
	return nil
}

// Dispose releases the styles.
func (s *Styles) Dispose() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.disposed = true
	s.styles = [len(Kinds)]*Style{}
}

// Get returns the registered style for k.
func (s *Styles) Get(k Kind) (*Style, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disposed {
		return nil, ErrDisposed
	}
	if !s.inited {
		return nil, fmt.Errorf("decor: styles not initialised")
	}
	if int(k) >= len(s.styles) {
		return nil, fmt.Errorf("decor: unknown kind %d", k)
	}
	return s.styles[k], nil
}

// Active reports whether the styles are initialised and not disposed.
func (s *Styles) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inited && !s.disposed
}
