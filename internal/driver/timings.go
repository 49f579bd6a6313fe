package driver

import (
	"encoding/json"
	"fmt"

	"meel/internal/diag"
	"meel/internal/observ"
	"meel/internal/source"
)

// timingPayload is the JSON note attached to an OBS6001 diagnostic.
type timingPayload struct {
	Kind string `json:"kind"`
	Path string `json:"path,omitempty"`
	observ.Report
}

// appendTimingDiagnostic records the phases of one template as an info
// diagnostic. It bypasses the bag limit: a template with many unmatched
// braces still gets its timings.
func appendTimingDiagnostic(bag *diag.Bag, file source.FileID, payload timingPayload) {
	if bag == nil {
		return
	}
	if payload.Kind == "" {
		payload.Kind = "check"
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}

	msg := fmt.Sprintf("timings (%s): total %.2f ms", payload.Kind, payload.TotalMS)
	if payload.Path != "" {
		msg += " for " + payload.Path
	}
	span := source.Span{File: file}
	entry := diag.New(diag.SevInfo, diag.ObsTimings, span, msg).WithNote(span, string(data))
	if !bag.Add(entry) {
		// таймингам лимит не мешает
		extra := diag.NewBag(1)
		extra.Add(entry)
		bag.Merge(extra)
	}
}
