// Package monitor runs the single polling loop: refresh the process
// cache, list panes, capture each pane, select a parser from the pane and
// its captured text, classify, then publish a full agent.Tree snapshot on a bounded channel. Generalizes the
// teacher's ListPanes/ListPanesBasic goroutine fan-out (tmux + process
// table read in parallel, status detection sequential since tmux
// serializes capture-pane calls internally) into the spec's tick cycle.
package monitor

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/leo/tmuxcc/internal/agent"
	"github.com/leo/tmuxcc/internal/config"
	"github.com/leo/tmuxcc/internal/logging"
	"github.com/leo/tmuxcc/internal/mux"
	"github.com/leo/tmuxcc/internal/probe"
	"github.com/leo/tmuxcc/internal/rules"
)

// Update is one published tree snapshot, or a structural error.
type Update struct {
	Tree agent.Tree
	Err  error
}

// Monitor owns the Multiplexer Gateway and Parser Registry and is the
// sole publisher to its update channel.
type Monitor struct {
	gw       mux.Gateway
	registry *rules.Registry
	cfg      config.Config
	updates  chan Update
}

// New builds a Monitor. The update channel has the capacity described in
// §5 (~32), single-producer/single-consumer.
func New(gw mux.Gateway, registry *rules.Registry, cfg config.Config) *Monitor {
	return &Monitor{gw: gw, registry: registry, cfg: cfg, updates: make(chan Update, 32)}
}

// Updates returns the channel of published tree snapshots.
func (m *Monitor) Updates() <-chan Update { return m.updates }

// SetConfig atomically swaps the active configuration, used when the
// watched config file reloads. The registry itself is rebuilt by the
// caller (agent rule changes require recompilation) and passed in.
func (m *Monitor) SetConfig(cfg config.Config, registry *rules.Registry) {
	m.cfg = cfg
	m.registry = registry
}

// Run loops until ctx is cancelled, polling at m.cfg.PollIntervalMs.
func (m *Monitor) Run(ctx context.Context) {
	interval := time.Duration(m.cfg.PollIntervalMs) * time.Millisecond
	if interval <= 0 {
		interval = 500 * time.Millisecond
	}
	for {
		m.tick()
		select {
		case <-ctx.Done():
			close(m.updates)
			return
		case <-time.After(interval):
		}
	}
}

func (m *Monitor) tick() {
	procTable := probe.Refresh()

	panes, err := m.gw.ListPanes()
	if err != nil {
		logging.L().Warn().Err(err).Msg("list_panes failed")
		m.publish(Update{Err: err})
		return
	}

	currentSession, insideMux := m.gw.CurrentSession()

	var agents []agent.MonitoredAgent
	for _, pane := range panes {
		if !m.cfg.ShowDetachedSessions && !pane.Attached {
			continue
		}
		if m.cfg.ShouldIgnoreSession(pane.Session, currentSession, insideMux) {
			continue
		}

		content, err := m.gw.Capture(pane.Target, int(m.cfg.CaptureLines))
		if err != nil {
			logging.L().Warn().Err(err).Str("target", pane.Target).Msg("capture failed, skipping pane")
			continue
		}

		pid32 := int32(pane.ProcessID)
		ev := rules.Evidence{
			Command:        pane.Command,
			Ancestors:      procTable.AncestorsRootFirst(pid32),
			ChildCommands:  procTable.ChildCommands(pid32),
			ChildArgTokens: procTable.ChildArgTokens(pid32),
			Title:          pane.Title,
			Content:        content,
		}
		parser := m.registry.FindParser(ev)
		if parser == nil {
			continue
		}

		agents = append(agents, agent.MonitoredAgent{
			ID:               pane.Target + "#" + strconv.Itoa(pane.ProcessID),
			AgentType:        parser.AgentType(),
			DisplayName:      parser.AgentName(),
			Target:           pane.Target,
			Session:          pane.Session,
			WindowIndex:      pane.WindowIndex,
			WindowName:       pane.WindowName,
			PaneIndex:        pane.PaneIndex,
			Path:             pane.WorkingDir,
			Status:           parser.ParseStatus(content),
			Subagents:        parser.ParseSubagents(content),
			LastContent:      content,
			ContextRemaining: parser.ParseContextRemaining(content),
		})
	}

	m.publish(Update{Tree: agent.NewTree(agents)})
}

func (m *Monitor) publish(u Update) {
	m.updates <- u
}

// ErrChannelClosed names the update channel closing, which Run does when
// its context is cancelled — a structural condition, not a per-tick error.
// No function in this module returns it.
var ErrChannelClosed = fmt.Errorf("monitor update channel closed")
