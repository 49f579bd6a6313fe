package testkit

import (
	"fmt"

	"fortio.org/safecast"

	"meel/internal/braces"
)

// CheckMatchInvariants runs the pairing invariants on a matcher result for text:
// 1) every match has Open < Close and both offsets point at the right marker
// 2) no marker offset is used by two matches or by a match and an unmatched event
// 3) matched plus unmatched markers account for every scanned marker
func CheckMatchInvariants(text []byte, res braces.Result) error {
	lenText, err := safecast.Conv[uint32](len(text))
	if err != nil {
		return fmt.Errorf("len text overflow: %w", err)
	}
	at := func(off uint32, kind braces.MarkerKind) error {
		if off+braces.MarkerLen > lenText {
			return fmt.Errorf("%s marker at %d beyond text length %d", kind, off, lenText)
		}
		if got := string(text[off : off+braces.MarkerLen]); got != kind.Text() {
			return fmt.Errorf("expected %q at %d, found %q", kind.Text(), off, got)
		}
		return nil
	}

	used := make(map[uint32]string)
	claim := func(off uint32, owner string) error {
		if prev, ok := used[off]; ok {
			return fmt.Errorf("marker at %d claimed twice: %s and %s", off, prev, owner)
		}
		used[off] = owner
		return nil
	}

	// 1) + 2) matches
	for i, m := range res.Matches {
		if m.Open >= m.Close {
			return fmt.Errorf("match #%d not ordered: open=%d close=%d", i, m.Open, m.Close)
		}
		if err := at(m.Open, braces.Open); err != nil {
			return fmt.Errorf("match #%d: %w", i, err)
		}
		if err := at(m.Close, braces.Close); err != nil {
			return fmt.Errorf("match #%d: %w", i, err)
		}
		owner := fmt.Sprintf("match #%d", i)
		if err := claim(m.Open, owner); err != nil {
			return err
		}
		if err := claim(m.Close, owner); err != nil {
			return err
		}
	}
	for i, u := range res.Unmatched {
		if err := at(u.Offset, u.Kind); err != nil {
			return fmt.Errorf("unmatched #%d: %w", i, err)
		}
		if err := claim(u.Offset, fmt.Sprintf("unmatched #%d", i)); err != nil {
			return err
		}
	}

	// 3) coverage
	markers := braces.Scan(text)
	if len(markers) != len(used) {
		return fmt.Errorf("scanned %d markers, result accounts for %d", len(markers), len(used))
	}
	for _, m := range markers {
		if _, ok := used[m.Offset]; !ok {
			return fmt.Errorf("%s marker at %d missing from result", m.Kind, m.Offset)
		}
	}
	return nil
}
