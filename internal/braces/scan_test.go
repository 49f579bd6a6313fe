package braces

import (
	"reflect"
	"testing"
)

func TestScan(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []Marker
	}{
		{"empty", "", nil},
		{"plain", "hello { } world", nil},
		{"single open", "{{", []Marker{{Open, 0}}},
		{"pair", "a{{b}}", []Marker{{Open, 1}, {Close, 4}}},
		{"quad open", "{{{{", []Marker{{Open, 0}, {Open, 2}}},
		{"triple open", "{{{", []Marker{{Open, 0}}},
		{"triple close", "}}}", []Marker{{Close, 0}}},
		{"brace then pair", "{{{x}}}", []Marker{{Open, 0}, {Close, 4}}},
		{"mixed adjacent", "{}}{{", []Marker{{Close, 1}, {Open, 3}}},
		{"utf8", "é{{ü}}", []Marker{{Open, 2}, {Close, 6}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ScanString(tt.text)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("Scan(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestScanInvalidUTF8(t *testing.T) {
	text := []byte{0xff, '{', '{', 0xfe, '}', '}'}
	got := Scan(text)
	want := []Marker{{Open, 1}, {Close, 4}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Scan = %v, want %v", got, want)
	}
}
