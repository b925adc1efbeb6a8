// Package ui renders the progress of directory runs in the terminal.
package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"moltree/internal/driver"
)

// maxRows bounds the file list; the rest is summarised in one line.
const maxRows = 16

const statusColumn = 12

// fileState is where a file is in the pipeline, as far as the view knows.
type fileState uint8

const (
	stateQueued fileState = iota
	stateWorking
	stateDone
	stateFailed
)

func (s fileState) finished() bool { return s == stateDone || s == stateFailed }

// weight is the share of one file counted towards the progress bar.
func (s fileState) weight() float64 {
	switch s {
	case stateQueued:
		return 0
	case stateWorking:
		return 0.5
	default:
		return 1
	}
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7"))
	stateStyles = [...]lipgloss.Style{
		stateQueued:  lipgloss.NewStyle().Foreground(lipgloss.Color("7")),
		stateWorking: lipgloss.NewStyle().Foreground(lipgloss.Color("6")),
		stateDone:    lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		stateFailed:  lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
	}
)

type fileRow struct {
	path  string
	state fileState
	stage driver.Stage // имеет смысл только для stateWorking
}

// label is the text of the status column.
func (r fileRow) label() string {
	switch r.state {
	case stateQueued:
		return "queued"
	case stateDone:
		return "done"
	case stateFailed:
		return "error"
	default:
		return stageVerb(r.stage)
	}
}

type eventMsg driver.Event
type doneMsg struct{}

type progressModel struct {
	title   string
	events  <-chan driver.Event
	spinner spinner.Model
	bar     progress.Model
	rows    []fileRow
	byPath  map[string]int
	stage   string // стадия всего прогона, из событий без файла
	width   int
	done    bool
}

// NewProgressModel returns a Bubble Tea model fed by driver events. Files
// may be listed up front; files first seen in an event are appended. The
// model quits when events is closed.
func NewProgressModel(title string, files []string, events <-chan driver.Event) tea.Model {
	sp := spinner.New(spinner.WithSpinner(spinner.Dot))
	sp.Style = stateStyles[stateWorking]

	m := &progressModel{
		title:   title,
		events:  events,
		spinner: sp,
		bar:     progress.New(progress.WithDefaultGradient(), progress.WithWidth(76)),
		rows:    make([]fileRow, 0, len(files)),
		byPath:  make(map[string]int, len(files)),
		width:   80,
	}
	for _, file := range files {
		m.row(file)
	}
	return m
}

// row returns the index of path, adding a queued row on first sight.
func (m *progressModel) row(path string) int {
	if i, ok := m.byPath[path]; ok {
		return i
	}
	m.byPath[path] = len(m.rows)
	m.rows = append(m.rows, fileRow{path: path})
	return len(m.rows) - 1
}

func (m *progressModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.next())
}

func (m *progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case eventMsg:
		cmd = tea.Batch(m.applyEvent(driver.Event(msg)), m.next())
	case doneMsg:
		m.done = true
		cmd = tea.Quit
	case tea.KeyMsg:
		// Ctrl+C гасит только вид, прогон доработает сам
		if msg.Type == tea.KeyCtrlC {
			m.done = true
			cmd = tea.Quit
		}
	case spinner.TickMsg:
		if !m.done {
			m.spinner, cmd = m.spinner.Update(msg)
		}
	case tea.WindowSizeMsg:
		if msg.Width > 0 {
			m.width = msg.Width
			m.bar.Width = msg.Width - 4
		}
	case progress.FrameMsg:
		var bar tea.Model
		bar, cmd = m.bar.Update(msg)
		m.bar = bar.(progress.Model)
	}
	return m, cmd
}

func (m *progressModel) View() string {
	header := m.title
	if m.stage != "" {
		header += " (" + m.stage + ")"
	}
	if m.done {
		header = "done: " + header
	} else {
		header = m.spinner.View() + " " + header
	}

	var b strings.Builder
	b.WriteString(headerStyle.Render(header))
	b.WriteString("\n\n")

	nameWidth := max(m.width-statusColumn-4, 20)
	for _, r := range m.visibleRows() {
		status := stateStyles[r.state].Render(fmt.Sprintf("%*s", statusColumn, r.label()))
		fmt.Fprintf(&b, "  %s %s\n", status, truncate(r.path, nameWidth))
	}
	if hidden := len(m.rows) - maxRows; hidden > 0 {
		fmt.Fprintf(&b, "  %*s and %d more\n", statusColumn, "", hidden)
	}
	finished, failed := m.counts()
	fmt.Fprintf(&b, "\n  %d/%d files, %d with errors\n", finished, len(m.rows), failed)

	if m.done {
		b.WriteString(m.bar.ViewAs(1))
	} else {
		b.WriteString(m.bar.View())
	}
	b.WriteByte('\n')
	return b.String()
}

// visibleRows keeps files in flight and failed files on screen first, then
// queued ones, then finished ones.
func (m *progressModel) visibleRows() []fileRow {
	if len(m.rows) <= maxRows {
		return m.rows
	}
	rank := func(s fileState) int {
		switch s {
		case stateWorking, stateFailed:
			return 0
		case stateQueued:
			return 1
		default:
			return 2
		}
	}
	out := make([]fileRow, 0, maxRows)
	for pass := 0; pass < 3 && len(out) < maxRows; pass++ {
		for _, r := range m.rows {
			if rank(r.state) != pass {
				continue
			}
			out = append(out, r)
			if len(out) == maxRows {
				break
			}
		}
	}
	return out
}

func (m *progressModel) counts() (finished, failed int) {
	for _, r := range m.rows {
		if r.state.finished() {
			finished++
		}
		if r.state == stateFailed {
			failed++
		}
	}
	return finished, failed
}

// next waits for one driver event; a closed channel ends the view.
func (m *progressModel) next() tea.Cmd {
	return func() tea.Msg {
		if ev, ok := <-m.events; ok {
			return eventMsg(ev)
		}
		return doneMsg{}
	}
}

func (m *progressModel) applyEvent(ev driver.Event) tea.Cmd {
	state, known := stateOf(ev.Status)
	if ev.File == "" {
		if known && state == stateWorking {
			m.stage = stageVerb(ev.Stage)
		}
		return nil
	}
	i := m.row(ev.File)
	if known {
		m.rows[i].state = state
		m.rows[i].stage = ev.Stage
	}

	total := 0.0
	for _, r := range m.rows {
		total += r.state.weight()
	}
	return m.bar.SetPercent(total / float64(len(m.rows)))
}

func stateOf(status driver.Status) (fileState, bool) {
	switch status {
	case driver.StatusQueued:
		return stateQueued, true
	case driver.StatusWorking:
		return stateWorking, true
	case driver.StatusDone:
		return stateDone, true
	case driver.StatusError:
		return stateFailed, true
	}
	return 0, false
}

func stageVerb(stage driver.Stage) string {
	switch stage {
	case driver.StageLoad:
		return "loading"
	case driver.StageTokenize:
		return "lexing"
	case driver.StageParse:
		return "parsing"
	case driver.StageDiagnose:
		return "diagnosing"
	}
	return "working"
}

// truncate shortens value to width terminal cells, marking the cut with an
// ellipsis when there is room for one.
func truncate(value string, width int) string {
	if width <= 0 || runewidth.StringWidth(value) <= width {
		return value
	}
	tail := "..."
	if width <= len(tail) {
		tail = ""
	}
	return runewidth.Truncate(value, width, tail)
}
