// Package tui is the Bubble Tea shell: it owns the terminal, renders the
// agent tree and a live preview pane, and turns key events into dispatch
// calls over the shared AppState. Grounded on the original single-provider
// bubbletea Model, generalized to the multi-agent tree and the rule-engine
// backed monitor/dispatch packages.
package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/leo/tmuxcc/internal/agent"
	"github.com/leo/tmuxcc/internal/dispatch"
	"github.com/leo/tmuxcc/internal/monitor"
	"github.com/leo/tmuxcc/internal/mux"
	"github.com/leo/tmuxcc/internal/state"
)

// updateMsg wraps a monitor.Update so it can travel through tea.Msg.
type updateMsg monitor.Update

// previewLoadedMsg carries a freshly captured pane preview.
type previewLoadedMsg struct {
	target  string
	content string
}

func listenForUpdates(m *monitor.Monitor) tea.Cmd {
	return func() tea.Msg {
		u, ok := <-m.Updates()
		if !ok {
			return nil
		}
		return updateMsg(u)
	}
}

func loadPreview(gw mux.Gateway, target string, lines int) tea.Cmd {
	return func() tea.Msg {
		content, err := gw.Capture(target, lines)
		if err != nil {
			content = "error: " + err.Error()
		}
		return previewLoadedMsg{target: target, content: content}
	}
}

// Model is the top-level Bubble Tea model.
type Model struct {
	state    *state.AppState
	monitor  *monitor.Monitor
	dispatch *dispatch.Dispatcher
	gw       mux.Gateway

	preview    viewport.Model
	previewFor string

	width, height int
	pendingD      bool
}

// NewModel wires a Model from the already-constructed backend pieces.
func NewModel(gw mux.Gateway, mon *monitor.Monitor, disp *dispatch.Dispatcher) Model {
	return Model{
		state:    state.New(),
		monitor:  mon,
		dispatch: disp,
		gw:       gw,
		preview:  viewport.New(40, 20),
	}
}

func (m Model) Init() tea.Cmd {
	return listenForUpdates(m.monitor)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.preview.Width = m.previewWidth()
		m.preview.Height = m.height
		return m, nil

	case updateMsg:
		if msg.Err != nil {
			m.state.SetError(msg.Err)
			return m, listenForUpdates(m.monitor)
		}
		m.state.ClearError()
		m.state.SetAgents(msg.Tree)
		cmds := []tea.Cmd{listenForUpdates(m.monitor)}
		if cmd := m.previewCmd(); cmd != nil {
			cmds = append(cmds, cmd)
		}
		return m, tea.Batch(cmds...)

	case previewLoadedMsg:
		m.previewFor = msg.target
		content := strings.TrimRight(msg.content, "\n")
		m.preview.SetContent(content)
		m.preview.GotoBottom()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.state.FocusedPanel == state.FocusInput {
		return m.handleInputKey(msg)
	}

	key := msg.String()

	if key == "d" {
		if m.pendingD {
			m.pendingD = false
			_ = m.dispatch.KillApp(m.state, mux.CtrlCThenCtrlD)
			return m, nil
		}
		m.pendingD = true
		return m, nil
	}
	m.pendingD = false

	switch key {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "j", "down":
		m.state.SelectNext()
		return m, m.previewCmd()

	case "k", "up":
		m.state.SelectPrev()
		return m, m.previewCmd()

	case " ":
		if idx := m.cursorAgent(); idx != nil {
			m.state.ToggleSelection(idx.ID)
		}
		return m, nil

	case "ctrl+a":
		m.state.SelectAll()
		return m, nil

	case "esc":
		m.state.ClearSelection()
		m.state.ClearFilterText()
		return m, nil

	case "a":
		if err := m.dispatch.Approve(m.state); err != nil {
			m.state.SetError(err)
		}
		return m, nil

	case "A":
		if err := m.dispatch.ApproveAll(m.state); err != nil {
			m.state.SetError(err)
		}
		return m, nil

	case "r":
		if err := m.dispatch.Reject(m.state); err != nil {
			m.state.SetError(err)
		}
		return m, nil

	case "f":
		m.state.ToggleFilterActive()
		return m, nil

	case "s":
		m.state.ToggleFilterSelected()
		return m, nil

	case "/":
		m.state.FocusedPanel = state.FocusInput
		m.state.InputBuffer = m.state.FilterText
		return m, nil

	case "enter":
		if err := m.dispatch.FocusPane(m.state); err == nil {
			return m, tea.Quit
		}
		return m, nil

	case "1", "2", "3", "4", "5", "6", "7", "8", "9":
		n := int(key[0] - '0')
		_ = m.dispatch.SendNumber(m.state, n)
		return m, nil
	}
	return m, nil
}

func (m Model) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		m.state.SetFilterText(m.state.InputBuffer)
		m.state.FocusedPanel = state.FocusSidebar
		return m, nil
	case tea.KeyEsc:
		m.state.InputBuffer = ""
		m.state.FocusedPanel = state.FocusSidebar
		return m, nil
	case tea.KeyBackspace:
		if n := len(m.state.InputBuffer); n > 0 {
			m.state.InputBuffer = m.state.InputBuffer[:n-1]
		}
		return m, nil
	case tea.KeyRunes:
		m.state.InputBuffer += string(msg.Runes)
		return m, nil
	}
	return m, nil
}

func (m Model) View() string {
	if m.width == 0 {
		return ""
	}
	if m.state.ErrorMessage != "" {
		return errStyle.Render("Error: "+m.state.ErrorMessage) + "\n" + helpStyle.Render("Press q to quit.")
	}
	if len(m.state.Agents.Agents) == 0 {
		return helpStyle.Render("No active agents found.\nPress q to quit.")
	}

	listWidth := m.listWidth()
	h := m.height - 1 // reserve the status/input line

	treeLines := m.renderTree(listWidth, h)
	listContent := strings.Join(treeLines, "\n")
	listRendered := lipgloss.NewStyle().Width(listWidth).Height(h).Render(listContent)

	sep := separatorStyle.Render(strings.Repeat("│\n", max(h-1, 0)) + "│")

	pw := m.previewWidth()
	m.preview.Width = pw
	m.preview.Height = h
	previewRendered := lipgloss.NewStyle().Width(pw).Height(h).Render(m.preview.View())

	body := lipgloss.JoinHorizontal(lipgloss.Top, listRendered, sep, previewRendered)
	return body + "\n" + m.renderStatusLine()
}

func (m Model) renderStatusLine() string {
	if m.state.FocusedPanel == state.FocusInput {
		return inputPromptStyle.Render("/") + m.state.InputBuffer
	}
	var b strings.Builder
	b.WriteString("j/k move  space select  a approve  r reject  f filter  / search  enter focus  q quit")
	return statusBarStyle.Render(b.String())
}

func (m Model) listWidth() int {
	return max(m.width*25/100, 20)
}

func (m Model) previewWidth() int {
	return m.width - m.listWidth() - 1
}

func (m Model) renderTree(width, height int) []string {
	vis := m.state.VisibleIndices
	if len(vis) == 0 {
		return []string{"  No matching agents"}
	}
	cursorPos := 0
	for i, idx := range vis {
		if idx == m.state.SelectedIndex {
			cursorPos = i
			break
		}
	}
	start := visibleSlice(len(vis), cursorPos, height)
	end := min(start+height, len(vis))

	lines := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		idx := vis[i]
		a := m.state.Agents.Agents[idx]
		lines = append(lines, rowFor(a, m.state.IsSelected(a.ID), idx == m.state.SelectedIndex, width))
	}
	return lines
}

func (m Model) cursorAgent() *agent.MonitoredAgent {
	if m.state.SelectedIndex < 0 || m.state.SelectedIndex >= len(m.state.Agents.Agents) {
		return nil
	}
	a := m.state.Agents.Agents[m.state.SelectedIndex]
	return &a
}

func (m Model) previewCmd() tea.Cmd {
	a := m.cursorAgent()
	if a == nil || a.Target == m.previewFor {
		return nil
	}
	return loadPreview(m.gw, a.Target, 200)
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
