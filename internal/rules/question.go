package rules

import (
	"regexp"
	"strconv"
	"strings"
)

var choicePattern = regexp.MustCompile(`^\s*(\d+)\.\s+(.+)$`)

// isPromptMarkerLine reports whether line is a lone prompt cursor: the
// Claude-style "❯" glyph, or a short ">"-containing line (under 3 runes),
// the two prompt idioms the pack's agents use.
func isPromptMarkerLine(line string) bool {
	t := strings.TrimSpace(line)
	if t == "❯" {
		return true
	}
	if len([]rune(t)) > 0 && len([]rune(t)) < 3 && strings.Contains(t, ">") {
		return true
	}
	return false
}

// isBoxDrawingPrefixed reports whether line's first non-space rune is a
// box-drawing character, used to skip table/tree chrome while scanning
// for numbered choices.
func isBoxDrawingPrefixed(line string) bool {
	for _, r := range line {
		if r == ' ' {
			continue
		}
		switch r {
		case '│', '╰', '╭', '─', '┃', '┌', '└', '┐', '┘', '├', '┤', '┬', '┴', '┼', '╮', '╯':
			return true
		}
		return false
	}
	return false
}

// extractUserQuestion implements the numbered-choice extraction algorithm:
// scan the last ~25 lines before the last prompt marker for sequential
// "N. choice" lines, require >= 2 sequential choices within 8 lines of the
// prompt, then look up to 5 lines further back for the question text.
func extractUserQuestion(content string) (question string, choices []string, ok bool) {
	lines := strings.Split(content, "\n")
	markerIdx := -1
	for i := len(lines) - 1; i >= 0; i-- {
		if isPromptMarkerLine(lines[i]) {
			markerIdx = i
			break
		}
	}
	if markerIdx < 0 {
		return "", nil, false
	}

	searchStart := markerIdx - 25
	if searchStart < 0 {
		searchStart = 0
	}

	var collected []string
	firstChoiceLine, lastChoiceLine := -1, -1

	reset := func() {
		collected = nil
		firstChoiceLine, lastChoiceLine = -1, -1
	}

	for i := searchStart; i < markerIdx; i++ {
		line := lines[i]
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if isBoxDrawingPrefixed(line) {
			continue
		}
		if m := choicePattern.FindStringSubmatch(line); m != nil {
			n, err := strconv.Atoi(m[1])
			if err == nil && n == len(collected)+1 {
				collected = append(collected, strings.TrimSpace(m[2]))
				if firstChoiceLine < 0 {
					firstChoiceLine = i
				}
				lastChoiceLine = i
				continue
			}
			reset()
			if err == nil && n == 1 {
				collected = append(collected, strings.TrimSpace(m[2]))
				firstChoiceLine, lastChoiceLine = i, i
			}
			continue
		}
		if len(collected) > 0 && len([]rune(trimmed)) > 30 {
			reset()
		}
	}

	if len(collected) < 2 {
		return "", nil, false
	}
	if markerIdx-lastChoiceLine > 8 {
		return "", nil, false
	}

	question = ""
	fallback := ""
	for i := firstChoiceLine - 1; i >= 0 && i >= firstChoiceLine-5; i-- {
		t := strings.TrimSpace(lines[i])
		if t == "" {
			continue
		}
		if strings.HasSuffix(t, "?") || strings.HasSuffix(t, "？") {
			question = t
			break
		}
		if fallback == "" {
			fallback = t
		}
	}
	if question == "" {
		question = fallback
	}
	return question, collected, true
}
