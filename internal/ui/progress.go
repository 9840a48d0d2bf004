// Package ui renders live progress of `cohere check` over a directory.
package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"cohere/internal/driver"
)

// unitPhases — фазы одной единицы в порядке выполнения.
var unitPhases = [...]driver.Stage{driver.StageParse, driver.StageResolve, driver.StageCoherence}

type rowState uint8

const (
	rowQueued rowState = iota
	rowRunning
	rowClean      // проверен, нарушений нет
	rowViolations // проверен, есть COH-нарушения
	rowFailed     // ошибки разбора, разрешения или загрузки
	rowCached
)

func (s rowState) final() bool { return s >= rowClean }

type unitRow struct {
	path        string
	state       rowState
	phase       int // сколько фаз начато, 0..len(unitPhases)
	violations  int
	diagnostics int
}

var (
	styleQueued  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	styleRunning = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	styleClean   = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	styleBad     = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	styleCached  = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	styleTitle   = lipgloss.NewStyle().Bold(true)
)

type progressModel struct {
	title    string
	events   <-chan driver.Event
	spinner  spinner.Model
	bar      progress.Model
	rows     []unitRow
	byPath   map[string]int
	width    int
	finished bool
}

type eventMsg driver.Event
type doneMsg struct{}

// NewProgressModel returns a Bubble Tea model showing, per .decl file, which
// of parse/resolve/coherence has run and how many violations it found.
// The model quits when events is closed.
func NewProgressModel(title string, files []string, events <-chan driver.Event) tea.Model {
	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = styleRunning

	rows := make([]unitRow, len(files))
	byPath := make(map[string]int, len(files))
	for i, file := range files {
		rows[i] = unitRow{path: file}
		byPath[file] = i
	}
	return &progressModel{
		title:   title,
		events:  events,
		spinner: sp,
		bar:     progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
		rows:    rows,
		byPath:  byPath,
		width:   80,
	}
}

func (m *progressModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.next())
}

func (m *progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		return m, tea.Batch(m.applyEvent(driver.Event(msg)), m.next())
	case doneMsg:
		m.finished = true
		return m, tea.Quit
	case spinner.TickMsg:
		if m.finished {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.WindowSizeMsg:
		if msg.Width > 0 {
			m.width = msg.Width
		}
		return m, nil
	case progress.FrameMsg:
		bar, cmd := m.bar.Update(msg)
		m.bar = bar.(progress.Model)
		return m, cmd
	}
	return m, nil
}

// next ждёт следующее событие драйвера; закрытый канал завершает модель.
func (m *progressModel) next() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.events
		if !ok {
			return doneMsg{}
		}
		return eventMsg(ev)
	}
}

func (m *progressModel) applyEvent(ev driver.Event) tea.Cmd {
	idx, ok := m.byPath[ev.File]
	if !ok {
		return nil
	}
	row := &m.rows[idx]
	switch {
	case ev.Status == driver.StatusQueued:
		*row = unitRow{path: row.path}
	case ev.Status == driver.StatusWorking:
		row.state = rowRunning
		if p := phaseIndex(ev.Stage); p >= 0 {
			row.phase = p + 1
		}
	case ev.Final():
		row.phase = len(unitPhases)
		row.violations = ev.Violations
		row.diagnostics = ev.Diagnostics
		switch {
		case ev.Status == driver.StatusCached:
			row.state = rowCached
		case ev.Violations > 0 && ev.Diagnostics == ev.Violations:
			row.state = rowViolations
		case ev.Status == driver.StatusError:
			row.state = rowFailed
		default:
			row.state = rowClean
		}
	}
	return m.bar.SetPercent(m.percent())
}

func phaseIndex(stage driver.Stage) int {
	for i, p := range unitPhases {
		if p == stage {
			return i
		}
	}
	return -1
}

// percent: завершённая единица считается целиком, текущая фаза — наполовину.
func (m *progressModel) percent() float64 {
	if len(m.rows) == 0 {
		return 0
	}
	var total float64
	for _, r := range m.rows {
		switch {
		case r.state.final():
			total++
		case r.phase > 0:
			total += (float64(r.phase) - 0.5) / float64(len(unitPhases))
		}
	}
	return total / float64(len(m.rows))
}

type tally struct {
	finished, cached, violations, failed int
}

func (m *progressModel) tally() tally {
	var t tally
	for _, r := range m.rows {
		if !r.state.final() {
			continue
		}
		t.finished++
		t.violations += r.violations
		switch r.state {
		case rowCached:
			t.cached++
		case rowFailed:
			t.failed++
		}
	}
	return t
}

func (m *progressModel) View() string {
	if len(m.rows) == 0 {
		return ""
	}
	var b strings.Builder

	t := m.tally()
	lead := m.spinner.View()
	if m.finished {
		lead = "done:"
	}
	fmt.Fprintf(&b, "%s %s  %s\n\n", lead, styleTitle.Render(m.title), summary(t, len(m.rows)))

	nameWidth := max(m.width-len(unitPhases)*2-18, 20)
	for _, r := range m.rows {
		fmt.Fprintf(&b, "  %s %s %s\n", track(r), outcome(r), truncate(r.path, nameWidth))
	}

	m.bar.Width = max(m.width-4, 10)
	b.WriteString("\n")
	if m.finished {
		b.WriteString(m.bar.ViewAs(1))
	} else {
		b.WriteString(m.bar.View())
	}
	b.WriteString("\n")
	return b.String()
}

func summary(t tally, units int) string {
	parts := []string{fmt.Sprintf("%d/%d units", t.finished, units)}
	if t.cached > 0 {
		parts = append(parts, fmt.Sprintf("%d cached", t.cached))
	}
	if t.violations > 0 {
		parts = append(parts, styleBad.Render(plural(t.violations, "violation")))
	}
	if t.failed > 0 {
		parts = append(parts, styleBad.Render(fmt.Sprintf("%d failed", t.failed)))
	}
	return strings.Join(parts, " · ")
}

// track рисует по клетке на фазу: ● пройдена, ◐ идёт, · впереди.
func track(r unitRow) string {
	cells := make([]string, len(unitPhases))
	for i := range unitPhases {
		switch {
		case r.state == rowCached:
			cells[i] = styleCached.Render("◆")
		case r.state.final() || i+1 < r.phase:
			cells[i] = styleClean.Render("●")
		case i+1 == r.phase:
			cells[i] = styleRunning.Render("◐")
		default:
			cells[i] = styleQueued.Render("·")
		}
	}
	return strings.Join(cells, " ")
}

func outcome(r unitRow) string {
	const w = 13
	pad := func(s string) string { return fmt.Sprintf("%-*s", w, s) }
	switch r.state {
	case rowRunning:
		return styleRunning.Render(pad(string(unitPhases[max(r.phase-1, 0)])))
	case rowClean:
		return styleClean.Render(pad("clean"))
	case rowViolations:
		return styleBad.Render(pad(plural(r.violations, "violation")))
	case rowFailed:
		return styleBad.Render(pad(plural(r.diagnostics, "error")))
	case rowCached:
		return styleCached.Render(pad("cached"))
	}
	return styleQueued.Render(pad("queued"))
}

func plural(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return fmt.Sprintf("%d %ss", n, noun)
}

func truncate(value string, width int) string {
	if width <= 0 || runewidth.StringWidth(value) <= width {
		return value
	}
	if width <= 3 {
		return runewidth.Truncate(value, width, "")
	}
	return runewidth.Truncate(value, width, "...")
}
