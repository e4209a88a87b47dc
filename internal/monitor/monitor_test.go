package monitor

import (
	"context"
	"testing"
	"time"

	"github.com/leo/tmuxcc/internal/agent"
	"github.com/leo/tmuxcc/internal/config"
	"github.com/leo/tmuxcc/internal/mux"
	"github.com/leo/tmuxcc/internal/rules"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGateway struct {
	panes   []agent.PaneRecord
	content map[string]string
}

func (f *fakeGateway) ListPanes() ([]agent.PaneRecord, error) { return f.panes, nil }
func (f *fakeGateway) Capture(target string, _ int) (string, error) {
	return f.content[target], nil
}
func (f *fakeGateway) Send(string, ...string) error                  { return nil }
func (f *fakeGateway) Focus(string) error                            { return nil }
func (f *fakeGateway) RenameSession(string, string) error            { return nil }
func (f *fakeGateway) KillApplication(string, mux.KillMethod) error  { return nil }
func (f *fakeGateway) CurrentSession() (string, bool)                { return "", false }

var _ mux.Gateway = (*fakeGateway)(nil)

func TestMonitor_TickPublishesSortedTree(t *testing.T) {
	gw := &fakeGateway{
		panes: []agent.PaneRecord{
			{Target: "main:1.0", Session: "main", Command: "claude", ProcessID: 2, Attached: true},
			{Target: "main:0.0", Session: "main", Command: "claude", ProcessID: 1, Attached: true},
		},
		content: map[string]string{
			"main:1.0": "",
			"main:0.0": "",
		},
	}
	registry := rules.NewRegistry([]rules.AgentConfig{
		{ID: "claude", Priority: 1, Matchers: []rules.MatcherConfig{{Type: rules.MatcherCommand, Pattern: "^claude$"}}},
	})
	cfg := config.Default()
	cfg.PollIntervalMs = 10
	m := New(gw, registry, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	go m.Run(ctx)

	select {
	case u := <-m.Updates():
		require.NoError(t, u.Err)
		require.Len(t, u.Tree.Agents, 2)
		assert.Equal(t, "main:0.0", u.Tree.Agents[0].Target)
		assert.Equal(t, "main:1.0", u.Tree.Agents[1].Target)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for update")
	}
	cancel()
}

func TestMonitor_UnmatchedPaneIsSkipped(t *testing.T) {
	gw := &fakeGateway{
		panes: []agent.PaneRecord{
			{Target: "main:0.0", Session: "main", Command: "bash", ProcessID: 1, Attached: true},
		},
		content: map[string]string{"main:0.0": ""},
	}
	registry := rules.NewRegistry([]rules.AgentConfig{
		{ID: "claude", Priority: 1, Matchers: []rules.MatcherConfig{{Type: rules.MatcherCommand, Pattern: "^claude$"}}},
	})
	m := New(gw, registry, config.Default())
	m.tick()
	select {
	case u := <-m.Updates():
		assert.Empty(t, u.Tree.Agents)
	default:
		t.Fatal("expected a published update")
	}
}
