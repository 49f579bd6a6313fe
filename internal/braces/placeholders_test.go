package braces

import (
	"reflect"
	"testing"
)

func TestPlaceholders(t *testing.T) {
	text := []byte("Hi {{ name }}, {{age}} {{}} {{name}} {{ unclosed")
	res := Analyze(text)
	ps := Placeholders(text, res, 0)
	var got []string
	for _, p := range ps {
		got = append(got, p.Name)
	}
	want := []string{"name", "age", "", "name"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("names = %q, want %q", got, want)
	}
	if names := PlaceholderNames(text, res); !reflect.DeepEqual(names, []string{"name", "age"}) {
		t.Fatalf("distinct names = %q", names)
	}
}

func TestPlaceholdersOrderedByOpen(t *testing.T) {
	text := []byte("{{outer {{inner}} }}")
	ps := Placeholders(text, Analyze(text), 0)
	if len(ps) != 2 || ps[0].Match.Open != 0 || ps[1].Match.Open != 8 {
		t.Fatalf("unexpected order: %+v", ps)
	}
	if ps[1].Name != "inner" {
		t.Fatalf("inner name = %q", ps[1].Name)
	}
}

func TestPlaceholderNameNFC(t *testing.T) {
	// "e" + combining acute accent normalises to a single rune.
	text := []byte("{{cafe\u0301}}")
	got := PlaceholderName(text, Match{Open: 0, Close: 8})
	if got != "caf\u00e9" {
		t.Fatalf("expected NFC name, got %q", got)
	}
}

func TestAt(t *testing.T) {
	res := Analyze([]byte("{{a {{b}} c}}"))
	m, ok := At(res, 5)
	if !ok || m.Open != 4 {
		t.Fatalf("expected inner match, got %+v %v", m, ok)
	}
	m, ok = At(res, 10)
	if !ok || m.Open != 0 {
		t.Fatalf("expected outer match, got %+v %v", m, ok)
	}
	if _, ok = At(res, 13); ok {
		t.Fatalf("offset past the closing marker must not match")
	}
}
