package braces

import (
	"testing"

	"meel/internal/diag"
	"meel/internal/source"
)

func TestDiagnosticsOrderAndRanges(t *testing.T) {
	text := []byte("}}abc {{x}} {{")
	res := Analyze(text)
	diags := Diagnostics(res, 3)
	if len(diags) != 2 {
		t.Fatalf("expected 2 diagnostics, got %d", len(diags))
	}

	first := diags[0]
	if first.Message != MsgUnmatchedClose || first.Code != diag.TplUnmatchedCloseMarker {
		t.Fatalf("unexpected first diagnostic: %+v", first)
	}
	if want := (source.Span{File: 3, Start: 0, End: 2}); first.Primary != want {
		t.Fatalf("first span = %v, want %v", first.Primary, want)
	}
	if first.Severity != diag.SevError {
		t.Fatalf("expected error severity, got %v", first.Severity)
	}

	second := diags[1]
	if second.Message != MsgUnmatchedOpen || second.Code != diag.TplUnmatchedOpenMarker {
		t.Fatalf("unexpected second diagnostic: %+v", second)
	}
	if want := (source.Span{File: 3, Start: 12, End: 14}); second.Primary != want {
		t.Fatalf("second span = %v, want %v", second.Primary, want)
	}
}

func TestDiagnosticsBalancedIsEmptyNotNil(t *testing.T) {
	diags := Diagnostics(Analyze([]byte("{{a}}")), 0)
	if diags == nil || len(diags) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", diags)
	}
}

func TestDiagnoseIntoBag(t *testing.T) {
	bag := diag.NewBag(1)
	Diagnose(Analyze([]byte("{{ {{ {{")), 0, diag.BagReporter{Bag: bag})
	if bag.Len() != 1 {
		t.Fatalf("bag limit not honoured: %d", bag.Len())
	}
	Diagnose(Analyze([]byte("}}")), 0, nil)
}
