package version

import (
	"testing"

	"github.com/fatih/color"
)

func TestVersion_DefaultValues(t *testing.T) {
	if Version == "" {
		t.Error("Version should have a default value")
	}
	if Plain() != Version {
		t.Errorf("Plain() = %q, want %q", Plain(), Version)
	}
}

func TestPlain_EmptyFallsBackToDev(t *testing.T) {
	orig := Version
	defer func() { Version = orig }()

	Version = "  "
	if got := Plain(); got != "dev" {
		t.Errorf("Plain() = %q, want dev", got)
	}
}

func TestColored_WithoutColorMatchesPlain(t *testing.T) {
	origVersion, origNoColor := Version, color.NoColor
	defer func() { Version, color.NoColor = origVersion, origNoColor }()
	color.NoColor = true

	for _, v := range []string{"0.1.0", "1.2.3-rc.1+build.123", "2.0.0-alpha", "nightly"} {
		Version = v
		if got := Colored(); got != v {
			t.Errorf("Colored() = %q, want %q", got, v)
		}
	}
}

func TestVersion_CanBeOverridden(t *testing.T) {
	origVersion, origCommit, origDate := Version, GitCommit, BuildDate
	defer func() { Version, GitCommit, BuildDate = origVersion, origCommit, origDate }()

	Version = "1.2.3"
	GitCommit = "abc123def456"
	BuildDate = "2024-01-15T10:30:00Z"

	if Plain() != "1.2.3" {
		t.Errorf("Plain() = %q, want %q", Plain(), "1.2.3")
	}
	if GitCommit != "abc123def456" || BuildDate != "2024-01-15T10:30:00Z" {
		t.Errorf("overrides not applied: %q %q", GitCommit, BuildDate)
	}
}
