package main

import (
	"encoding/json"
	"fmt"
	"io"
	"runtime"
	"runtime/debug"
	"strings"

	"github.com/spf13/cobra"

	"meel/internal/version"
)

const versionTagline = "every brace finds its pair"

// buildFacts is everything `meel version` can report. Fields tagged
// omitempty are only shown when the matching flag asks for them.
type buildFacts struct {
	Tool       string `json:"tool"`
	Version    string `json:"version"`
	Tagline    string `json:"tagline"`
	GoVersion  string `json:"go"`
	GitCommit  string `json:"git_commit,omitempty"`
	GitMessage string `json:"git_message,omitempty"`
	BuildDate  string `json:"build_date,omitempty"`
}

// versionFields selects the optional facts.
type versionFields struct {
	hash, message, date bool
}

func (f versionFields) any() bool { return f.hash || f.message || f.date }

var versionCmd = newVersionCmd()

func newVersionCmd() *cobra.Command {
	var (
		format string
		fields versionFields
		full   bool
	)
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show meel build fingerprints",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if full {
				fields = versionFields{hash: true, message: true, date: true}
			}
			facts := collectBuildFacts()
			switch strings.ToLower(format) {
			case "json":
				return renderVersionJSON(cmd.OutOrStdout(), facts, fields)
			case "pretty":
				renderVersionPretty(cmd.OutOrStdout(), facts, fields)
				return nil
			}
			return fmt.Errorf("unsupported format %q (must be pretty or json)", format)
		},
	}
	cmd.Flags().BoolVar(&fields.hash, "hash", false, "include git commit hash")
	cmd.Flags().BoolVar(&fields.message, "message", false, "include git commit message")
	cmd.Flags().BoolVar(&fields.date, "date", false, "include build timestamp")
	cmd.Flags().BoolVar(&full, "full", false, "show every recorded bit of build metadata")
	cmd.Flags().StringVar(&format, "format", "pretty", "output format (pretty|json)")
	return cmd
}

// collectBuildFacts prefers the -ldflags values and falls back to the VCS
// stamp the Go toolchain embeds in module builds.
func collectBuildFacts() buildFacts {
	facts := buildFacts{
		Tool:       "meel",
		Version:    version.Plain(),
		Tagline:    versionTagline,
		GoVersion:  runtime.Version(),
		GitCommit:  strings.TrimSpace(version.GitCommit),
		GitMessage: strings.TrimSpace(version.GitMessage),
		BuildDate:  strings.TrimSpace(version.BuildDate),
	}
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, s := range info.Settings {
			switch {
			case s.Key == "vcs.revision" && facts.GitCommit == "":
				facts.GitCommit = s.Value
			case s.Key == "vcs.time" && facts.BuildDate == "":
				facts.BuildDate = s.Value
			}
		}
	}
	return facts
}

// selected blanks the facts that were not asked for, and marks the asked
// ones that are missing as unknown.
func (b buildFacts) selected(fields versionFields) buildFacts {
	pick := func(want bool, v string) string {
		switch {
		case !want:
			return ""
		case v == "":
			return "unknown"
		}
		return v
	}
	b.GitCommit = pick(fields.hash, b.GitCommit)
	b.GitMessage = pick(fields.message, b.GitMessage)
	b.BuildDate = pick(fields.date, b.BuildDate)
	return b
}

func renderVersionPretty(out io.Writer, facts buildFacts, fields versionFields) {
	facts = facts.selected(fields)
	fmt.Fprintf(out, "meel %s: %s (%s)\n", version.Colored(), facts.Tagline, facts.GoVersion)
	for _, row := range [][2]string{
		{"commit: ", facts.GitCommit},
		{"message:", facts.GitMessage},
		{"built:  ", facts.BuildDate},
	} {
		if row[1] != "" {
			fmt.Fprintf(out, "%s %s\n", row[0], row[1])
		}
	}
	if !fields.any() {
		fmt.Fprintln(out, "set --hash, --message, --date, or --full for more build trivia")
	}
}

func renderVersionJSON(out io.Writer, facts buildFacts, fields versionFields) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(facts.selected(fields))
}
