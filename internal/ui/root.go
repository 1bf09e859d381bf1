package ui

import (
	"context"
	"errors"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/leighmacdonald/hltv-live/internal/match"
	"github.com/leighmacdonald/hltv-live/internal/ui/styles"
	"github.com/muesli/reflow/wordwrap"
)

type rootModel struct {
	ctx          context.Context
	controller   Controller
	copyText     func(text string) error
	initialMatch string
	ready        bool
	width        int
	height       int
	// lines holds the raw output, rendered the same lines styled and wrapped to the current width.
	lines       []string
	rendered    []string
	viewPort    viewport.Model
	input       textinput.Model
	inputActive bool
	statusBar   statusBarModel
}

func newRootModel(ctx context.Context, buildVersion string, initialMatch string) *rootModel {
	input := textinput.New()
	input.Prompt = styles.InputPrompt.Render("Match ID or URL  ")
	input.Placeholder = "2382614 or https://www.hltv.org/matches/2382614/..."
	input.CharLimit = 255

	return &rootModel{
		ctx:          ctx,
		copyText:     clipboard.WriteAll,
		initialMatch: initialMatch,
		viewPort:     viewport.New(10, 20),
		input:        input,
		statusBar:    newStatusBarModel(buildVersion),
	}
}

func (m *rootModel) Init() tea.Cmd {
	cmds := []tea.Cmd{refreshAfter(refreshInterval)}
	if m.initialMatch != "" {
		cmds = append(cmds, m.startMatch(m.initialMatch))
	}

	return tea.Batch(cmds...)
}

func (m *rootModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		m.width = msg.Width
		m.height = msg.Height
		m.statusBar.width = msg.Width
		m.input.Width = max(msg.Width-lipgloss.Width(m.input.Prompt)-1, 1)
		m.rerender()
		m.layout()
	case tea.KeyMsg:
		if m.inputActive {
			return m, m.onInputKey(msg)
		}

		return m, m.onKey(msg)
	case linesMsg:
		m.appendLines(msg)
	case clearLinesMsg:
		m.lines = nil
		m.rendered = nil
		m.viewPort.SetContent("")
		m.viewPort.GotoTop()
	case matchStatusMsg:
		m.statusBar.matchStatus = string(msg)
		m.syncController()
	case statusMsg:
		m.statusBar.statusMsg = msg.Message
		m.statusBar.statusError = msg.Err

		return m, clearErrorAfter(clearMessageTimeout)
	case clearStatusMessageMsg:
		m.statusBar.statusMsg = ""
		m.statusBar.statusError = false
	case refreshMsg:
		m.syncController()

		return m, refreshAfter(refreshInterval)
	}

	return m, nil
}

func (m *rootModel) onKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, defaultKeyMap.quit):
		return tea.Quit
	case key.Matches(msg, defaultKeyMap.start):
		m.inputActive = true
		m.input.Reset()
		m.layout()

		return m.input.Focus()
	case key.Matches(msg, defaultKeyMap.stop):
		return m.stopMatch()
	case key.Matches(msg, defaultKeyMap.copy):
		return m.copyLog()
	case key.Matches(msg, defaultKeyMap.clear):
		return m.clearLog()
	}

	var cmd tea.Cmd
	m.viewPort, cmd = m.viewPort.Update(msg)

	return cmd
}

func (m *rootModel) onInputKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case msg.Type == tea.KeyCtrlC:
		return tea.Quit
	case key.Matches(msg, defaultKeyMap.back):
		m.closeInput()

		return nil
	case key.Matches(msg, defaultKeyMap.accept):
		value := strings.TrimSpace(m.input.Value())
		m.closeInput()
		if value == "" {
			return setStatusMessage("No match ID entered", true)
		}

		return m.startMatch(value)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)

	return cmd
}

func (m *rootModel) closeInput() {
	m.inputActive = false
	m.input.Blur()
	m.input.Reset()
	m.layout()
}

func (m *rootModel) startMatch(input string) tea.Cmd {
	ctx, controller := m.ctx, m.controller

	return func() tea.Msg {
		if err := controller.Start(ctx, input); err != nil {
			if errors.Is(err, match.ErrInvalidMatchID) {
				return statusMsg{Message: "Invalid HLTV match ID or URL", Err: true}
			}

			return statusMsg{Message: "Failed to start live match", Err: true}
		}

		return statusMsg{Message: "Started match " + controller.MatchID()}
	}
}

func (m *rootModel) stopMatch() tea.Cmd {
	controller := m.controller

	return func() tea.Msg {
		if err := controller.Stop(); err != nil {
			return statusMsg{Message: "Failed to release match page", Err: true}
		}

		return nil
	}
}

func (m *rootModel) clearLog() tea.Cmd {
	controller := m.controller

	return func() tea.Msg {
		controller.Clear()

		return nil
	}
}

func (m *rootModel) copyLog() tea.Cmd {
	controller, copyText := m.controller, m.copyText

	return func() tea.Msg {
		text, ok := controller.RecentLog()
		if !ok {
			return statusMsg{Message: "No live match data to copy", Err: true}
		}

		if err := copyText(text); err != nil {
			return statusMsg{Message: "Failed to copy to clipboard", Err: true}
		}

		return statusMsg{Message: "Game log copied to clipboard"}
	}
}

func (m *rootModel) syncController() {
	if m.controller == nil {
		return
	}

	m.statusBar.matchID = m.controller.MatchID()
	m.statusBar.updatedAt = m.controller.UpdatedAt()
}

func (m *rootModel) appendLines(lines []string) {
	m.lines = append(m.lines, lines...)
	for _, line := range lines {
		m.rendered = append(m.rendered, renderLine(line, m.width))
	}

	if overflow := len(m.lines) - maxLines; overflow > 0 {
		m.lines = m.lines[overflow:]
		m.rendered = m.rendered[overflow:]
	}

	wasBottom := m.viewPort.AtBottom()
	m.viewPort.SetContent(strings.Join(m.rendered, "\n"))
	if wasBottom {
		m.viewPort.GotoBottom()
	}
}

func (m *rootModel) rerender() {
	m.rendered = make([]string, len(m.lines))
	for idx, line := range m.lines {
		m.rendered[idx] = renderLine(line, m.width)
	}

	m.viewPort.Width = m.width
	m.viewPort.SetContent(strings.Join(m.rendered, "\n"))
}

// layout sizes the viewport to whatever is left after the title, input and status rows.
func (m *rootModel) layout() {
	chrome := 2
	if m.inputActive {
		chrome++
	}

	m.viewPort.Height = max(m.height-chrome, 1)
}

func (m *rootModel) View() string {
	if !m.ready {
		return "Initializing..."
	}

	rows := []string{
		styles.TitleBar.Width(m.width).Render(styles.WrapX(m.width, " HLTV Live Match Console ", "═")),
		m.viewPort.View(),
	}

	if m.inputActive {
		rows = append(rows, m.input.View())
	}

	return lipgloss.JoinVertical(lipgloss.Left, append(rows, m.statusBar.View())...)
}

func renderLine(line string, width int) string {
	if width > 0 {
		line = wordwrap.String(line, width)
	}

	switch {
	case strings.Contains(line, "❌"):
		return styles.LogError.Render(line)
	case strings.Contains(line, "ℹ️"):
		return styles.LogInfo.Render(line)
	case strings.HasPrefix(line, "🔵"):
		return styles.LogCT.Render(line)
	case strings.HasPrefix(line, "🔴"):
		return styles.LogT.Render(line)
	case strings.HasPrefix(line, "🏆"), strings.HasPrefix(line, "📍"), strings.HasPrefix(line, "📊"),
		strings.HasPrefix(line, "🎮"):
		return styles.LogHeader.Render(line)
	default:
		return styles.LogLine.Render(line)
	}
}
