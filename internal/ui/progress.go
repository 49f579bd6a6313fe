// Package ui draws the interactive progress view of `meel check`.
package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"meel/internal/driver"
)

// stageWeight is the share of a template's work finished once it reaches a stage.
var stageWeight = map[driver.Stage]float64{
	driver.StageLoad:  0.1,
	driver.StageScan:  0.4,
	driver.StageMatch: 0.7,
	driver.StageDone:  1.0,
}

var stageLabel = map[driver.Stage]string{
	driver.StageLoad:  "loading",
	driver.StageScan:  "scanning",
	driver.StageMatch: "matching",
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7"))
	labelStyle = map[string]lipgloss.Style{
		"ok":       lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		"cached":   lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		"errors":   lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
		"failed":   lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
		"loading":  lipgloss.NewStyle().Foreground(lipgloss.Color("6")),
		"scanning": lipgloss.NewStyle().Foreground(lipgloss.Color("6")),
		"matching": lipgloss.NewStyle().Foreground(lipgloss.Color("6")),
	}
	idleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
)

const labelWidth = 12

// template is one row of the view.
type template struct {
	path   string
	stage  driver.Stage
	label  string
	errors int
}

func (t template) render(nameWidth int) string {
	text := t.label
	if t.errors > 0 {
		text = fmt.Sprintf("%s (%d)", text, t.errors)
	}
	style, ok := labelStyle[t.label]
	if !ok {
		style = idleStyle
	}
	return fmt.Sprintf("  %s %s\n", style.Render(fmt.Sprintf("%*s", labelWidth, text)), truncate(t.path, nameWidth))
}

type progressModel struct {
	title     string
	events    <-chan driver.Event
	spinner   spinner.Model
	bar       progress.Model
	templates []template
	byPath    map[string]int
	width     int
	done      bool
}

type (
	eventMsg driver.Event
	doneMsg  struct{}
)

// NewProgressModel returns a Bubble Tea model fed by the driver's event
// channel. The model quits once events is closed.
func NewProgressModel(title string, files []string, events <-chan driver.Event) tea.Model {
	sp := spinner.New(spinner.WithSpinner(spinner.Dot))
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))

	m := &progressModel{
		title:     title,
		events:    events,
		spinner:   sp,
		bar:       progress.New(progress.WithDefaultGradient(), progress.WithWidth(76)),
		templates: make([]template, len(files)),
		byPath:    make(map[string]int, len(files)),
		width:     80,
	}
	for i, f := range files {
		m.templates[i] = template{path: f, stage: driver.StageQueued, label: "queued"}
		m.byPath[f] = i
	}
	return m
}

func (m *progressModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.next())
}

func (m *progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		return m, tea.Batch(m.applyEvent(driver.Event(msg)), m.next())
	case doneMsg:
		m.done = true
		return m, tea.Quit
	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.WindowSizeMsg:
		if msg.Width > 0 {
			m.width = msg.Width
			m.bar.Width = msg.Width - 4
		}
	case progress.FrameMsg:
		bar, cmd := m.bar.Update(msg)
		m.bar = bar.(progress.Model)
		return m, cmd
	}
	return m, nil
}

func (m *progressModel) View() string {
	if len(m.templates) == 0 {
		return ""
	}
	finished := 0
	for _, t := range m.templates {
		if t.stage == driver.StageDone {
			finished++
		}
	}
	header := fmt.Sprintf("%s (%d/%d)", m.title, finished, len(m.templates))
	if m.done {
		header = "done: " + header
	} else {
		header = m.spinner.View() + " " + header
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(header) + "\n\n")
	nameWidth := max(m.width-labelWidth-4, 20)
	for _, t := range m.templates {
		b.WriteString(t.render(nameWidth))
	}
	b.WriteByte('\n')
	if m.done {
		b.WriteString(m.bar.ViewAs(1))
	} else {
		b.WriteString(m.bar.View())
	}
	b.WriteByte('\n')
	return b.String()
}

// next waits for the following driver event.
func (m *progressModel) next() tea.Cmd {
	return func() tea.Msg {
		if ev, ok := <-m.events; ok {
			return eventMsg(ev)
		}
		return doneMsg{}
	}
}

// applyEvent moves one template forward and retargets the bar. Events for
// paths the view does not list are dropped.
func (m *progressModel) applyEvent(ev driver.Event) tea.Cmd {
	i, ok := m.byPath[ev.Path]
	if !ok {
		return nil
	}
	t := &m.templates[i]
	t.stage, t.errors = ev.Stage, ev.Errors
	t.label = ev.Status.String()
	if ev.Stage != driver.StageDone {
		if t.label, ok = stageLabel[ev.Stage]; !ok {
			t.label = "queued"
		}
	}

	sum := 0.0
	for _, t := range m.templates {
		sum += stageWeight[t.stage]
	}
	return m.bar.SetPercent(sum / float64(len(m.templates)))
}

// truncate shortens value to width terminal cells, marking the cut with "...".
func truncate(value string, width int) string {
	switch {
	case width <= 0 || runewidth.StringWidth(value) <= width:
		return value
	case width <= 3:
		return runewidth.Truncate(value, width, "")
	}
	// Truncate already reserves room for the tail
	return runewidth.Truncate(value, width, "...")
}
