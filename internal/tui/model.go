// Package tui is the live terminal view of an inspection run.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"charm.land/bubbles/v2/spinner"
	"charm.land/bubbles/v2/viewport"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"golang.org/x/text/encoding/charmap"

	"github.com/nkootstra/framescope/internal/inspect"
	"github.com/nkootstra/framescope/internal/source"
)

const (
	maxFrameEntries = 500
	minSplitWidth   = 100
	leftPanelPct    = 35
)

type focusedPanel int

const (
	panelLeft focusedPanel = iota
	panelRight
)

// Options configures the live view.
type Options struct {
	Charset *charmap.Charmap
	// Printable starts the view with the printable payload preview.
	Printable bool
}

// sourceState tracks the state of a single source.
type sourceState struct {
	name      string
	status    source.Status
	frames    int
	lastError string
}

type frameEntry struct {
	result inspect.Result
	at     time.Time
}

// Model is the root Bubble Tea model for the framescope TUI.
type Model struct {
	sources  []sourceState
	frames   []frameEntry
	stats    *inspect.Stats
	cancel   context.CancelFunc
	charset  *charmap.Charmap
	spinner  spinner.Model
	framesVP viewport.Model // right panel: scrollable frame log
	ready    bool
	quitting bool
	width    int
	height   int

	printable bool
	started   time.Time
	now       time.Time
	finished  bool
	runErr    error

	// Split-pane state
	focus     focusedPanel
	showSplit bool
}

// NewModel creates a TUI model for the named sources. cancel stops the
// pipeline when the operator quits.
func NewModel(names []string, stats *inspect.Stats, cancel context.CancelFunc, opts Options) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))

	sources := make([]sourceState, len(names))
	for i, name := range names {
		sources[i] = sourceState{name: name, status: source.StatusConnecting}
	}
	if stats == nil {
		stats = &inspect.Stats{}
	}
	if cancel == nil {
		cancel = func() {}
	}

	now := time.Now()
	return Model{
		sources:   sources,
		frames:    make([]frameEntry, 0, maxFrameEntries),
		stats:     stats,
		cancel:    cancel,
		charset:   opts.Charset,
		printable: opts.Printable,
		spinner:   s,
		started:   now,
		now:       now,
		focus:     panelRight, // default focus on frames
	}
}

func (m *Model) sourceIndex(name string) int {
	for i, s := range m.sources {
		if s.name == name {
			return i
		}
	}
	m.sources = append(m.sources, sourceState{name: name, status: source.StatusConnecting})
	return len(m.sources) - 1
}

// renderLeftPanel builds the left panel content (counters and source cards).
func (m Model) renderLeftPanel() string {
	var b strings.Builder
	b.WriteString(RenderSummary(m.stats.Snapshot(), m.now.Sub(m.started)))
	for _, s := range m.sources {
		b.WriteString("\n")
		b.WriteString(RenderSourceCard(s.name, s.status, s.frames, s.lastError, m.spinner.View()))
	}
	if m.finished {
		b.WriteString("\n")
		if m.runErr != nil {
			b.WriteString("  " + errorStyle.Render(m.runErr.Error()) + "\n")
		} else {
			b.WriteString("  " + dimStyle.Render("All sources finished") + "\n")
		}
	}
	return b.String()
}

// renderFooter builds the footer string.
func (m Model) renderFooter() string {
	if m.showSplit {
		hint := "  q quit | tab switch panel | p printable | c clear"
		if m.focus == panelRight && m.ready && len(m.frames) > 0 {
			pct := m.framesVP.ScrollPercent()
			hint += fmt.Sprintf(" | ↑↓ scroll | %3.0f%%", pct*100)
		}
		return dimStyle.Render(hint)
	}
	return dimStyle.Render("  q quit | p printable | c clear")
}

// syncLayout recalculates viewport dimensions based on terminal size.
func (m *Model) syncLayout() {
	if m.width == 0 || m.height == 0 {
		return
	}

	m.showSplit = m.width >= minSplitWidth

	if !m.showSplit {
		// Narrow mode: no viewport needed, just counters and the latest frames
		return
	}

	// Split mode: left panel (sources) + right panel (frame viewport)
	const footerLines = 1
	borderV := 2 // top + bottom border
	borderH := 2 // left + right border

	leftWidth := m.width * leftPanelPct / 100
	rightWidth := m.width - leftWidth

	bodyHeight := m.height - footerLines

	vpWidth := max(rightWidth-borderH, 1)
	vpHeight := max(bodyHeight-borderV, 1)

	if !m.ready {
		m.framesVP = viewport.New(
			viewport.WithWidth(vpWidth),
			viewport.WithHeight(vpHeight),
		)
		m.framesVP.MouseWheelEnabled = true
		m.framesVP.MouseWheelDelta = 3
		m.ready = true
		m.updateViewportContent()
	} else {
		m.framesVP.SetWidth(vpWidth)
		m.framesVP.SetHeight(vpHeight)
	}
}

// Init starts the spinner and the counter ticker.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, tickEvery())
}

// Update handles messages and updates model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.quitting = true
			m.cancel()
			return m, tea.Quit
		case "tab":
			if m.showSplit {
				if m.focus == panelLeft {
					m.focus = panelRight
				} else {
					m.focus = panelLeft
				}
			}
		case "p":
			m.printable = !m.printable
			m.updateViewportContent()
		case "c":
			m.frames = m.frames[:0]
			m.updateViewportContent()
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.syncLayout()

	case tickMsg:
		m.now = time.Time(msg)
		cmds = append(cmds, tickEvery())

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case resultMsg:
		if msg.result.Source != "" {
			idx := m.sourceIndex(msg.result.Source)
			if msg.result.OK() {
				m.sources[idx].frames++
			}
		}
		m.frames = append(m.frames, frameEntry{result: msg.result, at: msg.at})
		if len(m.frames) > maxFrameEntries {
			m.frames = m.frames[len(m.frames)-maxFrameEntries:]
		}
		if m.ready {
			m.updateViewportContent()
			m.framesVP.GotoBottom()
		}

	case statusMsg:
		idx := m.sourceIndex(msg.Source)
		m.sources[idx].status = msg.Status
		if msg.Err != nil {
			m.sources[idx].lastError = msg.Err.Error()
		} else if msg.Status == source.StatusConnected {
			m.sources[idx].lastError = ""
		}

	case doneMsg:
		m.finished = true
		m.runErr = msg.err
	}

	// Forward to viewport for scroll handling (only when focused on frames)
	if m.ready && m.showSplit && m.focus == panelRight {
		var vpCmd tea.Cmd
		m.framesVP, vpCmd = m.framesVP.Update(msg)
		cmds = append(cmds, vpCmd)
	}

	return m, tea.Batch(cmds...)
}

func (m Model) frameLines() []string {
	lines := make([]string, len(m.frames))
	for i, e := range m.frames {
		lines[i] = RenderFrameLine(e.result, e.at, m.printable, m.charset)
	}
	return lines
}

// updateViewportContent sets the viewport content from the frame log.
func (m *Model) updateViewportContent() {
	if !m.ready {
		return
	}
	content := strings.Join(m.frameLines(), "\n")
	if len(m.frames) == 0 {
		content = dimStyle.Render(" Waiting for frames...")
	}
	m.framesVP.SetContent(content)
}

// View renders the TUI display.
func (m Model) View() tea.View {
	if m.quitting {
		return tea.NewView("")
	}

	var content string

	if !m.showSplit {
		content = m.renderNarrowView()
	} else {
		content = m.renderSplitView()
	}

	if m.height > 0 {
		content = lipgloss.PlaceVertical(m.height, lipgloss.Top, content)
	}

	v := tea.NewView(content)
	v.AltScreen = true
	v.MouseMode = tea.MouseModeCellMotion
	return v
}

// renderNarrowView renders the single-column view for narrow terminals: the
// counters followed by as many of the latest frames as fit.
func (m Model) renderNarrowView() string {
	left := m.renderLeftPanel()
	footer := m.renderFooter()

	lines := m.frameLines()
	if m.height > 0 {
		room := m.height - lipgloss.Height(left) - 2
		if room < 0 {
			room = 0
		}
		if len(lines) > room {
			lines = lines[len(lines)-room:]
		}
	}

	return lipgloss.JoinVertical(lipgloss.Left, left, strings.Join(lines, "\n"), footer)
}

// renderSplitView renders the two-panel layout for wide terminals.
func (m Model) renderSplitView() string {
	const footerLines = 1
	borderV := 2 // top + bottom border
	borderH := 2 // left + right border

	leftWidth := m.width * leftPanelPct / 100
	rightWidth := m.width - leftWidth
	bodyHeight := m.height - footerLines

	leftContent := m.renderLeftPanel()

	var rightContent string
	if m.ready {
		rightContent = m.framesVP.View()
	} else {
		rightContent = dimStyle.Render(" Initializing...")
	}

	// Choose border styles based on focus
	leftStyle := blurredBorderStyle()
	rightStyle := blurredBorderStyle()
	leftTitle := dimStyle.Render(" Sources ")
	rightTitle := dimStyle.Render(" Frames ")

	if m.focus == panelLeft {
		leftStyle = focusedBorderStyle()
		leftTitle = panelTitleStyle.Render(" Sources ")
	} else {
		rightStyle = focusedBorderStyle()
		rightTitle = panelTitleStyle.Render(" Frames ")
	}

	// Inner content dimensions = outer - border.
	leftInnerW := max(leftWidth-borderH, 1)
	leftInnerH := max(bodyHeight-borderV, 1)
	rightInnerW := max(rightWidth-borderH, 1)
	rightInnerH := max(bodyHeight-borderV, 1)

	leftPanel := leftStyle.
		Width(leftInnerW).
		Height(leftInnerH).
		Render(leftContent)
	leftPanel = injectBorderTitle(leftPanel, leftTitle)

	rightPanel := rightStyle.
		Width(rightInnerW).
		Height(rightInnerH).
		Render(rightContent)
	rightPanel = injectBorderTitle(rightPanel, rightTitle)

	body := lipgloss.JoinHorizontal(lipgloss.Top, leftPanel, rightPanel)
	footer := m.renderFooter()

	return lipgloss.JoinVertical(lipgloss.Left, body, footer)
}

// injectBorderTitle replaces the beginning of the first line (after the corner)
// with a styled title string, producing a "─ Title ─────" border top.
func injectBorderTitle(rendered string, title string) string {
	lines := strings.SplitN(rendered, "\n", 2)
	if len(lines) == 0 {
		return rendered
	}

	runes := []rune(lines[0])
	titleRunes := []rune(title)

	if len(runes) < len(titleRunes)+2 {
		return rendered // too narrow for title
	}

	// Place title after the corner char
	copy(runes[1:], titleRunes)

	lines[0] = string(runes)
	return strings.Join(lines, "\n")
}

// ViewString returns the View content as a plain string (for testing).
func (m Model) ViewString() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.renderLeftPanel())
	for _, line := range m.frameLines() {
		b.WriteString(line + "\n")
	}
	return b.String()
}
