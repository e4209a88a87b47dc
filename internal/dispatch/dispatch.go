// Package dispatch translates user intents (Approve, SendKeys, FocusPane,
// ExecuteCommand, ...) into multiplexer commands over a visibility-aware
// set of agents. Grounded on the original tmuxcc Action enum and
// AppState::get_operation_indices.
package dispatch

import (
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/leo/tmuxcc/internal/agent"
	"github.com/leo/tmuxcc/internal/mux"
	"github.com/leo/tmuxcc/internal/rules"
	"github.com/leo/tmuxcc/internal/state"
)

// Dispatcher executes actions against the multiplexer gateway over the
// agents named by an AppState's operation indices.
type Dispatcher struct {
	gw       mux.Gateway
	registry *rules.Registry
}

// New builds a Dispatcher.
func New(gw mux.Gateway, registry *rules.Registry) *Dispatcher {
	return &Dispatcher{gw: gw, registry: registry}
}

func (d *Dispatcher) parserFor(a agent.MonitoredAgent) *rules.Parser {
	for _, p := range d.registry.All() {
		if p.AgentType().ID == a.AgentType.ID && !a.AgentType.Unknown {
			return p
		}
	}
	return nil
}

// Approve sends each targeted agent's approve keys followed by Enter, for
// every agent whose status needs attention. Stops on the first failure.
func (d *Dispatcher) Approve(s *state.AppState) error {
	return d.respond(s, true)
}

// Reject sends each targeted agent's reject keys followed by Enter, for
// every agent whose status needs attention. Stops on the first failure.
func (d *Dispatcher) Reject(s *state.AppState) error {
	return d.respond(s, false)
}

func (d *Dispatcher) respond(s *state.AppState, approve bool) error {
	for _, idx := range s.GetOperationIndices() {
		a := s.Agents.Agents[idx]
		if !a.Status.NeedsAttention() {
			continue
		}
		keys := []string{"n"}
		if approve {
			keys = []string{"y"}
		}
		if p := d.parserFor(a); p != nil {
			if approve {
				keys = p.ApprovalKeys()
			} else {
				keys = p.RejectionKeys()
			}
		}
		if err := d.gw.Send(a.Target, append(keys, "Enter")...); err != nil {
			return fmt.Errorf("send keys to %s: %w", a.Target, err)
		}
	}
	return nil
}

// ApproveAll iterates the entire tree, not just the visible/selected set.
func (d *Dispatcher) ApproveAll(s *state.AppState) error {
	for _, a := range s.Agents.Agents {
		if !a.Status.NeedsAttention() {
			continue
		}
		keys := []string{"y"}
		if p := d.parserFor(a); p != nil {
			keys = p.ApprovalKeys()
		}
		if err := d.gw.Send(a.Target, append(keys, "Enter")...); err != nil {
			return fmt.Errorf("send keys to %s: %w", a.Target, err)
		}
	}
	return nil
}

// SendKeys sends s verbatim to every targeted agent, then clears the
// multi-selection.
func (d *Dispatcher) SendKeys(st *state.AppState, keys string) error {
	for _, idx := range st.GetOperationIndices() {
		a := st.Agents.Agents[idx]
		if err := d.gw.Send(a.Target, keys); err != nil {
			return fmt.Errorf("send keys to %s: %w", a.Target, err)
		}
	}
	st.ClearSelection()
	return nil
}

// SendNumber sends n followed by Enter to the cursor's agent, for
// responding to a numbered-choice UserQuestion prompt.
func (d *Dispatcher) SendNumber(st *state.AppState, n int) error {
	if st.SelectedIndex < 0 || st.SelectedIndex >= len(st.Agents.Agents) {
		return nil
	}
	a := st.Agents.Agents[st.SelectedIndex]
	return d.gw.Send(a.Target, strconv.Itoa(n), "Enter")
}

// SendInput sends the cursor's agent the current input buffer followed by
// Enter; if the buffer is empty, sends only Enter.
func (d *Dispatcher) SendInput(st *state.AppState) error {
	if st.SelectedIndex < 0 || st.SelectedIndex >= len(st.Agents.Agents) {
		return nil
	}
	a := st.Agents.Agents[st.SelectedIndex]
	if st.InputBuffer == "" {
		return d.gw.Send(a.Target, "Enter")
	}
	return d.gw.Send(a.Target, st.InputBuffer, "Enter")
}

// KillApp kills the application running in the cursor's pane.
func (d *Dispatcher) KillApp(st *state.AppState, method mux.KillMethod) error {
	if st.SelectedIndex < 0 || st.SelectedIndex >= len(st.Agents.Agents) {
		return nil
	}
	a := st.Agents.Agents[st.SelectedIndex]
	return d.gw.KillApplication(a.Target, method)
}

// FocusPane switches the attached client to the cursor's pane. Requires
// the tool itself to be running inside the multiplexer.
func (d *Dispatcher) FocusPane(st *state.AppState) error {
	if st.SelectedIndex < 0 || st.SelectedIndex >= len(st.Agents.Agents) {
		return nil
	}
	a := st.Agents.Agents[st.SelectedIndex]
	if _, inside := d.gw.CurrentSession(); !inside {
		return fmt.Errorf("focus pane: tmuxcc is not running inside a multiplexer")
	}
	return d.gw.Focus(a.Target)
}

// ExecMode selects how ExecuteCommand runs the expanded command.
type ExecMode int

const (
	ExecDetached ExecMode = iota
	ExecBlocking
	ExecTerminal
	ExecExternalTerminal
)

// ExecuteCommand expands template variables in command against a, then
// runs it according to mode.
func (d *Dispatcher) ExecuteCommand(a agent.MonitoredAgent, command string, mode ExecMode, terminalWrapper string) (string, error) {
	expanded := expandTemplate(command, a)

	switch mode {
	case ExecBlocking:
		cmd := exec.Command("sh", "-c", expanded)
		out, err := cmd.CombinedOutput()
		if err != nil {
			return string(out), fmt.Errorf("execute command: %w", err)
		}
		return string(out), nil
	case ExecTerminal:
		cmd := exec.Command("sh", "-c", expanded)
		cmd.Stdin, cmd.Stdout, cmd.Stderr = os.Stdin, os.Stdout, os.Stderr
		return "", cmd.Run()
	case ExecExternalTerminal:
		wrapper := terminalWrapper
		if wrapper == "" {
			wrapper = "x-terminal-emulator"
		}
		cmd := exec.Command(wrapper, "-e", "sh", "-c", expanded)
		cmd.Stdin, cmd.Stdout, cmd.Stderr = nil, nil, nil
		return "", cmd.Start()
	default: // ExecDetached
		cmd := exec.Command("sh", "-c", expanded)
		cmd.Stdin, cmd.Stdout, cmd.Stderr = nil, nil, nil
		return "", cmd.Start()
	}
}

// expandTemplate expands ${SESSION_NAME}, ${SESSION_DIR}, ${WINDOW_INDEX},
// ${WINDOW_NAME}, ${PANE_INDEX}, ${PANE_TARGET}, and ${ENV:NAME}.
func expandTemplate(template string, a agent.MonitoredAgent) string {
	replacer := strings.NewReplacer(
		"${SESSION_NAME}", a.Session,
		"${SESSION_DIR}", a.Path,
		"${WINDOW_INDEX}", a.WindowIndex,
		"${WINDOW_NAME}", a.WindowName,
		"${PANE_INDEX}", a.PaneIndex,
		"${PANE_TARGET}", a.Target,
	)
	out := replacer.Replace(template)
	for {
		start := strings.Index(out, "${ENV:")
		if start < 0 {
			break
		}
		end := strings.Index(out[start:], "}")
		if end < 0 {
			break
		}
		end += start
		name := out[start+len("${ENV:") : end]
		out = out[:start] + os.Getenv(name) + out[end+1:]
	}
	return out
}
