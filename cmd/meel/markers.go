package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"meel/internal/braces"
	"meel/internal/driver"
)

var markersCmd = &cobra.Command{
	Use:   "markers [flags] file.meel",
	Short: "Dump the {{ and }} markers of a template",
	Long:  `Markers scans a template and prints every marker with its position and pairing`,
	Args:  cobra.ExactArgs(1),
	RunE:  runMarkers,
}

func init() {
	markersCmd.Flags().String("format", "pretty", "output format (pretty|json)")
}

type markerOutput struct {
	Kind    string `json:"kind"`
	Text    string `json:"text"`
	Offset  uint32 `json:"offset"`
	Line    uint32 `json:"line"`
	Col     uint32 `json:"col"`
	Partner *int   `json:"partner,omitempty"` // индекс парного маркера
}

func runMarkers(cmd *cobra.Command, args []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}

	result, err := driver.Markers(args[0])
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}
	rows := describeMarkers(result)

	switch format {
	case "pretty":
		writeMarkersPretty(cmd.OutOrStdout(), rows)
		return nil
	case "json":
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

func describeMarkers(result *driver.MarkersResult) []markerOutput {
	byOffset := make(map[uint32]int, len(result.Markers))
	rows := make([]markerOutput, len(result.Markers))
	for i, m := range result.Markers {
		start, _ := result.FileSet.Resolve(m.Span(result.File.ID))
		rows[i] = markerOutput{
			Kind:   m.Kind.String(),
			Text:   m.Kind.Text(),
			Offset: m.Offset,
			Line:   start.Line,
			Col:    start.Col,
		}
		byOffset[m.Offset] = i
	}
	for _, match := range braces.Pair(result.Markers).Matches {
		open, closeIdx := byOffset[match.Open], byOffset[match.Close]
		rows[open].Partner = &closeIdx
		rows[closeIdx].Partner = &open
	}
	return rows
}

func writeMarkersPretty(w io.Writer, rows []markerOutput) {
	for i, row := range rows {
		fmt.Fprintf(w, "%3d: %-6s %s at %d:%d", i+1, row.Kind, row.Text, row.Line, row.Col)
		if row.Partner != nil {
			fmt.Fprintf(w, " (pairs with #%d)", *row.Partner+1)
		} else {
			fmt.Fprint(w, " (unmatched)")
		}
		fmt.Fprintln(w)
	}
}
