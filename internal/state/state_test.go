package state

import (
	"testing"

	"github.com/leo/tmuxcc/internal/agent"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tree(statuses ...agent.StatusKind) agent.Tree {
	var agents []agent.MonitoredAgent
	for i, k := range statuses {
		agents = append(agents, agent.MonitoredAgent{
			ID:          string(rune('A' + i)),
			DisplayName: string(rune('A' + i)),
			Target:      string(rune('A' + i)) + ":0.0",
			Status:      agent.Status{Kind: k},
		})
	}
	return agent.NewTree(agents)
}

func TestVisibleIndices_NoFiltersShowsAll(t *testing.T) {
	s := New()
	s.SetAgents(tree(agent.StatusIdle, agent.StatusProcessing, agent.StatusAwaitingApproval))
	assert.Equal(t, []int{0, 1, 2}, s.VisibleIndices)
}

func TestMatchesFilter_OrAcrossBooleanFilters(t *testing.T) {
	// A=Idle, B=AwaitingApproval, C=AwaitingApproval (not selected)
	s := New()
	s.SetAgents(tree(agent.StatusIdle, agent.StatusAwaitingApproval, agent.StatusAwaitingApproval))
	s.ToggleSelection("A") // select A (Idle)
	s.FilterActive = true
	s.FilterSelected = true
	s.updateVisibleIndices()
	// OR semantics: visible = active(B,C) UNION selected(A) = {0,1,2}
	assert.ElementsMatch(t, []int{0, 1, 2}, s.VisibleIndices)
}

func TestTextFilter_ANDsWithBooleanFilters(t *testing.T) {
	s := New()
	s.SetAgents(tree(agent.StatusIdle, agent.StatusAwaitingApproval, agent.StatusAwaitingApproval))
	s.FilterActive = true
	s.SetFilterText("A") // only agent "A" matches text, but A is Idle
	assert.Empty(t, s.VisibleIndices)
}

func TestGetOperationIndices_EmptySelectionUsesCursor(t *testing.T) {
	s := New()
	s.SetAgents(tree(agent.StatusIdle, agent.StatusProcessing))
	s.SelectedIndex = 1
	assert.Equal(t, []int{1}, s.GetOperationIndices())
}

func TestGetOperationIndices_RestrictedToVisible(t *testing.T) {
	s := New()
	s.SetAgents(tree(agent.StatusIdle, agent.StatusAwaitingApproval, agent.StatusAwaitingApproval))
	s.ToggleSelection("A")
	s.ToggleSelection("B")
	s.ToggleSelection("C")
	s.FilterActive = true
	s.updateVisibleIndices()
	ops := s.GetOperationIndices()
	require.Len(t, ops, 2)
	assert.Equal(t, []int{1, 2}, ops)
}

func TestSelectionSurvivesRepoll(t *testing.T) {
	s := New()
	s.SetAgents(tree(agent.StatusIdle, agent.StatusAwaitingApproval))
	s.ToggleSelection("B")
	require.True(t, s.IsSelected("B"))

	// New snapshot: same ids, different order.
	agents := []agent.MonitoredAgent{
		{ID: "B", Target: "B:0.0", Status: agent.Status{Kind: agent.StatusAwaitingApproval}},
		{ID: "A", Target: "A:0.0", Status: agent.Status{Kind: agent.StatusIdle}},
	}
	s.SetAgents(agent.NewTree(agents))
	assert.True(t, s.IsSelected("B"))
}

func TestSelectNextPrev_Wraparound(t *testing.T) {
	s := New()
	s.SetAgents(tree(agent.StatusIdle, agent.StatusIdle, agent.StatusIdle))
	s.SelectedIndex = 2
	s.SelectNext()
	assert.Equal(t, 0, s.SelectedIndex)
	s.SelectPrev()
	assert.Equal(t, 2, s.SelectedIndex)
}

func TestToggleFilter_TwiceRestoresProjection(t *testing.T) {
	s := New()
	s.SetAgents(tree(agent.StatusIdle, agent.StatusAwaitingApproval))
	before := append([]int{}, s.VisibleIndices...)
	s.ToggleFilterActive()
	s.ToggleFilterActive()
	assert.Equal(t, before, s.VisibleIndices)
}

func TestCursorRepair_SnapsToNearestVisible(t *testing.T) {
	s := New()
	s.SetAgents(tree(agent.StatusIdle, agent.StatusAwaitingApproval, agent.StatusIdle))
	s.SelectedIndex = 0
	s.FilterActive = true
	s.updateVisibleIndices()
	s.repairCursor()
	assert.Equal(t, 1, s.SelectedIndex)
}
