// Package state is the canonical in-memory application model: the agent
// tree, selection set, filters, and the visibility projection every
// UI-facing operation depends on. Grounded on the original tmuxcc
// AppState: the OR-across-boolean-filters/AND-with-text-filter semantics
// and id-based selection survival across polls are carried unchanged.
package state

import (
	"strconv"
	"strings"

	"github.com/leo/tmuxcc/internal/agent"
)

// FocusedPanel selects which UI panel receives keyboard input.
type FocusedPanel int

const (
	FocusSidebar FocusedPanel = iota
	FocusInput
)

// AppState is the core runtime model described in spec §3.
//
// Invariants maintained by this package:
//   - VisibleIndices ⊆ {0..len(Agents.Agents)}
//   - SelectedIndex ∈ VisibleIndices whenever VisibleIndices is non-empty
//   - SelectedIDs is preserved across polls by id even when filtered out
//   - VisibleIndices is recomputed whenever Agents, FilterText,
//     FilterActive, or FilterSelected changes
type AppState struct {
	Agents agent.Tree

	SelectedIndex int
	SelectedIDs   map[string]struct{}

	FilterText     string
	FilterTextSet  bool
	FilterActive   bool
	FilterSelected bool

	VisibleIndices []int

	FocusedPanel FocusedPanel

	InputBuffer string

	StatusMessage string
	ErrorMessage  string
}

// New returns an empty AppState.
func New() *AppState {
	return &AppState{SelectedIDs: make(map[string]struct{})}
}

// SetAgents replaces the tree and recomputes the visibility projection,
// preserving selection and cursor position by agent id across the poll.
func (s *AppState) SetAgents(tree agent.Tree) {
	var cursorID string
	if s.SelectedIndex >= 0 && s.SelectedIndex < len(s.Agents.Agents) {
		cursorID = s.Agents.Agents[s.SelectedIndex].ID
	}
	s.Agents = tree
	s.updateVisibleIndices()

	if cursorID != "" {
		for i, a := range s.Agents.Agents {
			if a.ID == cursorID {
				s.SelectedIndex = i
				break
			}
		}
	}
	s.repairCursor()
}

// matchesFilter implements §4.F's matches_filter: text_ok AND bool_ok,
// where bool_ok is an OR across the active/selected boolean filters
// (Open Question, preserved as-is: do not change this OR to AND).
func (s *AppState) matchesFilter(idx int, a agent.MonitoredAgent) bool {
	textOK := true
	if s.FilterTextSet && s.FilterText != "" {
		needle := strings.ToLower(s.FilterText)
		haystacks := []string{a.DisplayName, a.Session, a.WindowName, a.Target, a.Path}
		textOK = false
		for _, h := range haystacks {
			if strings.Contains(strings.ToLower(h), needle) {
				textOK = true
				break
			}
		}
	}
	if !textOK {
		return false
	}

	if !s.FilterActive && !s.FilterSelected {
		return true
	}
	boolOK := false
	if s.FilterActive && a.Status.Kind != agent.StatusIdle {
		boolOK = true
	}
	if s.FilterSelected && s.IsSelected(a.ID) {
		boolOK = true
	}
	return boolOK
}

// updateVisibleIndices recomputes VisibleIndices from scratch. Idempotent:
// calling it twice with unchanged inputs yields identical output.
func (s *AppState) updateVisibleIndices() {
	indices := make([]int, 0, len(s.Agents.Agents))
	for i, a := range s.Agents.Agents {
		if s.matchesFilter(i, a) {
			indices = append(indices, i)
		}
	}
	s.VisibleIndices = indices
}

// repairCursor snaps SelectedIndex to the nearest visible index if it
// fell out of VisibleIndices.
func (s *AppState) repairCursor() {
	if len(s.VisibleIndices) == 0 {
		return
	}
	for _, idx := range s.VisibleIndices {
		if idx == s.SelectedIndex {
			return
		}
	}
	best := s.VisibleIndices[0]
	bestDist := abs(best - s.SelectedIndex)
	for _, idx := range s.VisibleIndices[1:] {
		if d := abs(idx - s.SelectedIndex); d < bestDist {
			best, bestDist = idx, d
		}
	}
	s.SelectedIndex = best
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// SetFilterText sets the text filter and recomputes the projection.
func (s *AppState) SetFilterText(text string) {
	s.FilterText = text
	s.FilterTextSet = text != ""
	s.updateVisibleIndices()
	s.repairCursor()
}

// ClearFilterText clears the text filter.
func (s *AppState) ClearFilterText() {
	s.FilterText = ""
	s.FilterTextSet = false
	s.updateVisibleIndices()
	s.repairCursor()
}

// ToggleFilterActive toggles the "only active" boolean filter, which keeps
// agents whose status is not Idle.
func (s *AppState) ToggleFilterActive() {
	s.FilterActive = !s.FilterActive
	s.updateVisibleIndices()
	s.repairCursor()
}

// ToggleFilterSelected toggles the "only selected" boolean filter.
func (s *AppState) ToggleFilterSelected() {
	s.FilterSelected = !s.FilterSelected
	s.updateVisibleIndices()
	s.repairCursor()
}

// SelectNext moves the cursor to the next visible agent, wrapping around.
// No-op when VisibleIndices is empty.
func (s *AppState) SelectNext() {
	pos := s.cursorPosInVisible()
	if pos < 0 || len(s.VisibleIndices) == 0 {
		if len(s.VisibleIndices) > 0 {
			s.SelectedIndex = s.VisibleIndices[0]
		}
		return
	}
	s.SelectedIndex = s.VisibleIndices[(pos+1)%len(s.VisibleIndices)]
}

// SelectPrev moves the cursor to the previous visible agent, wrapping around.
func (s *AppState) SelectPrev() {
	pos := s.cursorPosInVisible()
	if pos < 0 || len(s.VisibleIndices) == 0 {
		if len(s.VisibleIndices) > 0 {
			s.SelectedIndex = s.VisibleIndices[len(s.VisibleIndices)-1]
		}
		return
	}
	s.SelectedIndex = s.VisibleIndices[(pos-1+len(s.VisibleIndices))%len(s.VisibleIndices)]
}

func (s *AppState) cursorPosInVisible() int {
	for i, idx := range s.VisibleIndices {
		if idx == s.SelectedIndex {
			return i
		}
	}
	return -1
}

// SelectAgent moves the cursor to the agent with the given id, if visible.
func (s *AppState) SelectAgent(id string) {
	for _, idx := range s.VisibleIndices {
		if s.Agents.Agents[idx].ID == id {
			s.SelectedIndex = idx
			return
		}
	}
}

// IsSelected reports whether id is in the multi-selection set.
func (s *AppState) IsSelected(id string) bool {
	_, ok := s.SelectedIDs[id]
	return ok
}

// ToggleSelection toggles id's multi-selection membership.
func (s *AppState) ToggleSelection(id string) {
	if s.IsSelected(id) {
		delete(s.SelectedIDs, id)
	} else {
		s.SelectedIDs[id] = struct{}{}
	}
	if s.FilterSelected {
		s.updateVisibleIndices()
		s.repairCursor()
	}
}

// SelectAll adds every currently visible agent to the selection set.
func (s *AppState) SelectAll() {
	for _, idx := range s.VisibleIndices {
		s.SelectedIDs[s.Agents.Agents[idx].ID] = struct{}{}
	}
	if s.FilterSelected {
		s.updateVisibleIndices()
		s.repairCursor()
	}
}

// ClearSelection empties the multi-selection set.
func (s *AppState) ClearSelection() {
	s.SelectedIDs = make(map[string]struct{})
	if s.FilterSelected {
		s.updateVisibleIndices()
		s.repairCursor()
	}
}

// GetOperationIndices returns the indices an operation like Approve should
// act on: the multi-selection restricted to visible agents; if the
// selection is empty, the cursor's index if visible, else none. Always a
// subset of VisibleIndices, sorted ascending by target (VisibleIndices is
// already in tree order, which is target-ascending).
func (s *AppState) GetOperationIndices() []int {
	if len(s.SelectedIDs) == 0 {
		for _, idx := range s.VisibleIndices {
			if idx == s.SelectedIndex {
				return []int{idx}
			}
		}
		return nil
	}
	var out []int
	for _, idx := range s.VisibleIndices {
		if s.IsSelected(s.Agents.Agents[idx].ID) {
			out = append(out, idx)
		}
	}
	return out
}

func (s *AppState) SetStatus(msg string) {
	s.StatusMessage = msg
	s.ErrorMessage = ""
}

func (s *AppState) SetError(err error) {
	s.ErrorMessage = err.Error()
}

func (s *AppState) ClearError() {
	s.ErrorMessage = ""
}

// agentKey builds a MonitoredAgent id in the monitor package's "target#pid"
// form. Nothing in this module calls it.
func agentKey(target string, pid int) string {
	return target + "#" + strconv.Itoa(pid)
}
