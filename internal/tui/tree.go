package tui

import (
	"fmt"
	"strings"

	"github.com/leo/tmuxcc/internal/agent"
	"github.com/mattn/go-runewidth"
)

// rowFor renders a single agent row from the flattened, already-filtered
// VisibleIndices projection.
func rowFor(a agent.MonitoredAgent, selected, cursor bool, width int) string {
	icon, iconStyle := statusIcon(a.Status.Kind)
	if selected || cursor {
		iconStyle = iconStyle.Background(selectionBG)
	}

	label := fmt.Sprintf("%s:%s", a.Session, a.WindowName)
	if len(a.Subagents) > 0 {
		label = fmt.Sprintf("%s (%d)", label, len(a.Subagents))
	}

	mark := " "
	if selected {
		mark = "*"
	}
	prefix := " " + mark + " "
	avail := width - runewidth.StringWidth(prefix) - 2
	if avail < 0 {
		avail = 0
	}
	middle := truncate(label, avail)
	gap := avail - runewidth.StringWidth(middle)
	if gap < 0 {
		gap = 0
	}

	row := prefix + iconStyle.Render(icon) + " " + middle + strings.Repeat(" ", gap)
	if cursor {
		return cursorRowStyle.Render(row)
	}
	return rowStyle.Render(row)
}

func statusIcon(kind agent.StatusKind) (string, styleRef) {
	switch {
	case kind == agent.StatusAwaitingApproval:
		return "●", attentionIconStyle
	case kind == agent.StatusError:
		return "●", errorIconStyle
	case kind == agent.StatusProcessing:
		return "●", busyIconStyle
	default:
		return "○", idleIconStyle
	}
}

// truncate shortens s to a display width of maxWidth, rune-width aware
// (wide CJK glyphs and combining marks count correctly, unlike a byte-length
// truncation).
func truncate(s string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= maxWidth {
		return s
	}
	if maxWidth <= 3 {
		return runewidth.Truncate(s, maxWidth, "")
	}
	return runewidth.Truncate(s, maxWidth-3, "") + "..."
}

// visibleSlice returns the scroll offset into VisibleIndices for a tree of
// the given cursor position within it.
func visibleSlice(total, cursorPos, height int) int {
	if total <= height {
		return 0
	}
	start := 0
	if cursorPos >= height {
		start = cursorPos - height + 1
	}
	if start+height > total {
		start = total - height
	}
	return start
}
