// Package observ measures the phases of a template check for --timings.
package observ

import (
	"fmt"
	"strings"
	"time"
)

// Phase is one measured step: cache lookup, scan, match or diagnose.
type Phase struct {
	Name  string
	Start time.Time
	Dur   time.Duration
	Note  string
}

// Timer collects phases for a single template. A nil *Timer is valid and
// records nothing, so callers do not branch on --timings. Not safe for
// concurrent use; each check worker owns its timer.
type Timer struct {
	phases []Phase
}

func NewTimer() *Timer { return &Timer{phases: make([]Phase, 0, 4)} }

// Begin opens a phase and returns its index for End.
func (t *Timer) Begin(name string) int {
	if t == nil {
		return -1
	}
	t.phases = append(t.phases, Phase{Name: name, Start: time.Now()})
	return len(t.phases) - 1
}

// End closes the phase at idx. Unknown indices are ignored.
func (t *Timer) End(idx int, note string) {
	if t == nil || idx < 0 || idx >= len(t.phases) {
		return
	}
	p := &t.phases[idx]
	p.Dur, p.Note = time.Since(p.Start), note
}

// Track opens a phase and returns the func that closes it.
func (t *Timer) Track(name string) func(note string) {
	idx := t.Begin(name)
	return func(note string) { t.End(idx, note) }
}

func (t *Timer) Summary() string { return t.Report().Summary() }

// PhaseReport is a phase as serialized into timing notes.
type PhaseReport struct {
	Name       string  `json:"name"`
	DurationMS float64 `json:"duration_ms"`
	Note       string  `json:"note,omitempty"`
}

// Report is the serializable form of a Timer, or of several merged ones.
type Report struct {
	TotalMS float64       `json:"total_ms"`
	Phases  []PhaseReport `json:"phases"`
}

func millis(d time.Duration) float64 { return float64(d) / float64(time.Millisecond) }

// Report sums the phases. A nil or empty timer gives a zero Report.
func (t *Timer) Report() Report {
	if t == nil || len(t.phases) == 0 {
		return Report{}
	}
	var (
		rep   = Report{Phases: make([]PhaseReport, 0, len(t.phases))}
		total time.Duration
	)
	for _, p := range t.phases {
		total += p.Dur
		rep.Phases = append(rep.Phases, PhaseReport{Name: p.Name, DurationMS: millis(p.Dur), Note: p.Note})
	}
	rep.TotalMS = millis(total)
	return rep
}

// Summary renders the report as the table printed by `meel check --timings`.
func (r Report) Summary() string {
	var sb strings.Builder
	sb.WriteString("timings:\n")
	for _, p := range r.Phases {
		fmt.Fprintf(&sb, "  %-20s %7.2f ms", p.Name, p.DurationMS)
		if p.Note != "" {
			sb.WriteString("  // " + p.Note)
		}
		sb.WriteByte('\n')
	}
	fmt.Fprintf(&sb, "  %-20s %7.2f ms\n", "total", r.TotalMS)
	return sb.String()
}

// Merge adds other into r. Phases with the same name are summed, in order
// of first appearance, and lose their notes.
func (r *Report) Merge(other Report) {
	r.TotalMS += other.TotalMS
	pos := make(map[string]int, len(r.Phases))
	for i, p := range r.Phases {
		pos[p.Name] = i
	}
	for _, p := range other.Phases {
		if i, ok := pos[p.Name]; ok {
			r.Phases[i].DurationMS += p.DurationMS
			r.Phases[i].Note = ""
			continue
		}
		pos[p.Name] = len(r.Phases)
		r.Phases = append(r.Phases, PhaseReport{Name: p.Name, DurationMS: p.DurationMS})
	}
}
