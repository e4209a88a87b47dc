package dispatch

import (
	"testing"

	"github.com/leo/tmuxcc/internal/agent"
	"github.com/leo/tmuxcc/internal/mux"
	"github.com/leo/tmuxcc/internal/rules"
	"github.com/leo/tmuxcc/internal/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sentCall struct {
	target string
	chunks []string
}

type fakeGateway struct {
	sent []sentCall
}

func (f *fakeGateway) ListPanes() ([]agent.PaneRecord, error)         { return nil, nil }
func (f *fakeGateway) Capture(string, int) (string, error)            { return "", nil }
func (f *fakeGateway) Send(target string, chunks ...string) error {
	f.sent = append(f.sent, sentCall{target, chunks})
	return nil
}
func (f *fakeGateway) Focus(string) error                           { return nil }
func (f *fakeGateway) RenameSession(string, string) error           { return nil }
func (f *fakeGateway) KillApplication(string, mux.KillMethod) error { return nil }
func (f *fakeGateway) CurrentSession() (string, bool)                { return "main", true }

var _ mux.Gateway = (*fakeGateway)(nil)

func threeAgents() agent.Tree {
	return agent.NewTree([]agent.MonitoredAgent{
		{ID: "A", Target: "s:0.0", AgentType: agent.NamedType("claude"), Status: agent.IdleStatus("")},
		{ID: "B", Target: "s:1.0", AgentType: agent.NamedType("claude"), Status: agent.ApprovalStatus(agent.ApprovalKindFromTag("edit"), "edit?")},
		{ID: "C", Target: "s:2.0", AgentType: agent.NamedType("claude"), Status: agent.ApprovalStatus(agent.ApprovalKindFromTag("edit"), "edit?")},
	})
}

func TestApprove_MultiSelectWithFilter(t *testing.T) {
	gw := &fakeGateway{}
	registry := rules.NewRegistry([]rules.AgentConfig{{ID: "claude", ApproveKeys: []string{"y"}}})
	d := New(gw, registry)

	st := state.New()
	st.SetAgents(threeAgents())
	st.ToggleSelection("A")
	st.ToggleSelection("B")
	st.ToggleSelection("C")
	st.ToggleFilterActive() // only B, C need attention -> visible (recomputes projection)

	require.NoError(t, d.Approve(st))

	// A is not needs_attention (skipped); B and C are visible+needs_attention.
	require.Len(t, gw.sent, 2)
	assert.Equal(t, "s:1.0", gw.sent[0].target)
	assert.Equal(t, "s:2.0", gw.sent[1].target)
	assert.Equal(t, []string{"y", "Enter"}, gw.sent[0].chunks)
}

func TestApproveAll_IgnoresVisibility(t *testing.T) {
	gw := &fakeGateway{}
	registry := rules.NewRegistry(nil)
	d := New(gw, registry)

	st := state.New()
	st.SetAgents(threeAgents())
	st.SetFilterText("nonexistent") // hides everything from the visible projection

	require.NoError(t, d.ApproveAll(st))
	require.Len(t, gw.sent, 2) // B and C, regardless of visibility
}

func TestSendNumber_TargetsCursor(t *testing.T) {
	gw := &fakeGateway{}
	d := New(gw, rules.NewRegistry(nil))
	st := state.New()
	st.SetAgents(threeAgents())
	st.SelectedIndex = 1
	require.NoError(t, d.SendNumber(st, 2))
	require.Len(t, gw.sent, 1)
	assert.Equal(t, []string{"2", "Enter"}, gw.sent[0].chunks)
}

func TestExpandTemplate(t *testing.T) {
	a := agent.MonitoredAgent{Session: "main", Path: "/tmp/proj", WindowIndex: "0", WindowName: "code", PaneIndex: "1", Target: "main:0.1"}
	out := expandTemplate("cd ${SESSION_DIR} && tmux display -t ${PANE_TARGET}", a)
	assert.Equal(t, "cd /tmp/proj && tmux display -t main:0.1", out)
}
