package fuzztests

import (
	"testing"

	"meel/internal/braces"
	"meel/internal/diag"
	"meel/internal/source"
	"meel/internal/testkit"
)

const maxFuzzInput = 1 << 16 // 64 KiB

func clampInput(input []byte) []byte {
	if len(input) > maxFuzzInput {
		return append([]byte(nil), input[:maxFuzzInput]...)
	}
	return append([]byte(nil), input...)
}

func FuzzMatchInvariants(f *testing.F) {
	addCorpusSeeds(f)
	f.Fuzz(func(t *testing.T, input []byte) {
		input = clampInput(input)

		res := braces.Analyze(input)
		if err := testkit.CheckMatchInvariants(input, res); err != nil {
			t.Fatalf("invariants violated for %q: %v", input, err)
		}

		fs := source.NewFileSet()
		fileID := fs.AddVirtual("fuzz.meel", input)
		diags := braces.Diagnostics(res, fileID)
		if len(diags) != len(res.Unmatched) {
			t.Fatalf("got %d diagnostics for %d unmatched markers", len(diags), len(res.Unmatched))
		}
		for _, d := range diags {
			if d.Severity != diag.SevError || d.Primary.End-d.Primary.Start != braces.MarkerLen {
				t.Fatalf("malformed diagnostic %+v", d)
			}
		}

		// повторный анализ даёт тот же результат
		again := braces.Analyze(input)
		if len(again.Matches) != len(res.Matches) || len(again.Unmatched) != len(res.Unmatched) {
			t.Fatalf("analysis is not deterministic for %q", input)
		}
	})
}

func FuzzPositionRoundTrip(f *testing.F) {
	addCorpusSeeds(f)
	f.Fuzz(func(t *testing.T, input []byte) {
		input = clampInput(input)
		file := source.NewFile("fuzz.meel", input)

		for _, m := range braces.Scan(input) {
			pos := file.Position(m.Offset)
			if got := file.Offset(pos); got != m.Offset {
				t.Fatalf("offset %d -> %+v -> %d", m.Offset, pos, got)
			}
		}
	})
}
