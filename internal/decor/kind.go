package decor

// Kind selects the decoration style applied to a span.
type Kind uint8

const (
	KindMarker Kind = iota
	KindPlaceholder
)

// Kinds lists every kind in application order.
var Kinds = [...]Kind{KindMarker, KindPlaceholder}

func (k Kind) String() string {
	switch k {
	case KindMarker:
		return "marker"
	case KindPlaceholder:
		return "placeholder"
	}
	return "unknown"
}
