package ui

import (
	"strings"
	"testing"

	"github.com/mattn/go-runewidth"

	"meel/internal/driver"
)

func TestApplyEventUpdatesTemplate(t *testing.T) {
	m := NewProgressModel("checking", []string{"a.meel", "b.meel"}, nil).(*progressModel)

	if got := m.templates[0]; got.stage != driver.StageQueued || got.label != "queued" {
		t.Fatalf("initial row = %+v", got)
	}

	m.applyEvent(driver.Event{Path: "a.meel", Stage: driver.StageScan, Status: driver.StatusWorking})
	if got := m.templates[0]; got.stage != driver.StageScan || got.label != "scanning" {
		t.Fatalf("row after scan = %+v, want scanning", got)
	}

	m.applyEvent(driver.Event{Path: "b.meel", Stage: driver.StageDone, Status: driver.StatusErrors, Errors: 2})
	if got := m.templates[1]; got.stage != driver.StageDone || got.label != "errors" || got.errors != 2 {
		t.Fatalf("unexpected row %+v", got)
	}

	// неизвестные пути игнорируются
	if cmd := m.applyEvent(driver.Event{Path: "c.meel", Stage: driver.StageDone}); cmd != nil {
		t.Fatal("expected nil cmd for unknown path")
	}

	view := m.View()
	if !strings.Contains(view, "(1/2)") {
		t.Fatalf("header should count finished files, got:\n%s", view)
	}
	if !strings.Contains(view, "errors (2)") {
		t.Fatalf("error count missing from view:\n%s", view)
	}
}

func TestDoneEventUsesStatusLabel(t *testing.T) {
	m := NewProgressModel("checking", []string{"a.meel"}, nil).(*progressModel)
	m.applyEvent(driver.Event{Path: "a.meel", Stage: driver.StageDone, Status: driver.StatusCached})
	if got := m.templates[0].label; got != "cached" {
		t.Fatalf("label = %q, want cached", got)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("templates/mail.meel", 10); got != "templat..." {
		t.Fatalf("truncate = %q", got)
	}
	if got := truncate("short", 10); got != "short" {
		t.Fatalf("truncate = %q", got)
	}
	if got := truncate("layouts/newsletter.meel", 8); runewidth.StringWidth(got) != 8 {
		t.Fatalf("truncate = %q, width %d", got, runewidth.StringWidth(got))
	}
}
