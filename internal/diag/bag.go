package diag

import (
	"cmp"
	"slices"
)

// Bag collects the diagnostics of one template check, up to a limit
// (--max-diagnostics). Not safe for concurrent use: every check worker
// fills its own bag and the CLI merges them afterwards.
type Bag struct {
	items []Diagnostic
	max   int
}

// NewBag creates a bag that keeps at most max diagnostics; max <= 0 means unlimited.
func NewBag(max int) *Bag {
	hint := 16
	if max > 0 && max < hint {
		hint = max
	}
	return &Bag{items: make([]Diagnostic, 0, hint), max: max}
}

// Add stores d unless the bag is full, and reports whether it was stored.
func (b *Bag) Add(d Diagnostic) bool {
	if b.max > 0 && len(b.items) >= b.max {
		return false
	}
	b.items = append(b.items, d)
	return true
}

func (b *Bag) Len() int { return len(b.items) }

// Items возвращает read-only slice диагностик.
// Do not modify: the slice aliases the bag's storage.
func (b *Bag) Items() []Diagnostic { return b.items }

// Count returns how many diagnostics have exactly severity sev.
func (b *Bag) Count(sev Severity) int {
	n := 0
	for i := range b.items {
		if b.items[i].Severity == sev {
			n++
		}
	}
	return n
}

// HasErrors reports whether the bag fails the check.
func (b *Bag) HasErrors() bool {
	return slices.ContainsFunc(b.items, func(d Diagnostic) bool { return d.Severity >= SevError })
}

// Merge appends everything from other. The limit grows to fit, so merging
// per-file bags never drops a diagnostic.
func (b *Bag) Merge(other *Bag) {
	if other == nil {
		return
	}
	b.items = append(b.items, other.items...)
	if b.max > 0 && len(b.items) > b.max {
		b.max = len(b.items)
	}
}

// Sort orders by file, then span, then severity (errors first), then code.
// The CLI sorts; the editor path keeps emission order.
func (b *Bag) Sort() {
	slices.SortStableFunc(b.items, func(x, y Diagnostic) int {
		return cmp.Or(
			cmp.Compare(x.Primary.File, y.Primary.File),
			cmp.Compare(x.Primary.Start, y.Primary.Start),
			cmp.Compare(x.Primary.End, y.Primary.End),
			cmp.Compare(y.Severity, x.Severity),
			cmp.Compare(x.Code, y.Code),
		)
	})
}
