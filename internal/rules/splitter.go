package rules

import (
	"strings"
	"unicode/utf8"
)

// safeTail returns the last maxChars runes of s. Rune-aware, not byte-aware,
// so multi-byte characters are never split mid-sequence.
func safeTail(s string, maxChars int) string {
	if utf8.RuneCountInString(s) <= maxChars {
		return s
	}
	runes := []rune(s)
	return string(runes[len(runes)-maxChars:])
}

// splitOnSeparatorLine scans from the bottom for a line made entirely of
// box-drawing horizontals ('─') of length >= 40. If found at row i, it
// looks up to 3 rows above for an earlier separator and prefers the
// higher one. Body is lines before the split, prompt is the split line
// and everything after.
func splitOnSeparatorLine(text string) (body, prompt string, ok bool) {
	lines := strings.Split(text, "\n")
	isSeparator := func(l string) bool {
		trimmed := strings.TrimSpace(l)
		if utf8.RuneCountInString(trimmed) < 40 {
			return false
		}
		for _, r := range trimmed {
			if r != '─' {
				return false
			}
		}
		return true
	}
	splitIdx := -1
	for i := len(lines) - 1; i >= 0; i-- {
		if isSeparator(lines[i]) {
			splitIdx = i
			for j := i - 1; j >= 0 && j >= i-3; j-- {
				if isSeparator(lines[j]) {
					splitIdx = j
				}
			}
			break
		}
	}
	if splitIdx < 0 {
		return "", "", false
	}
	return strings.Join(lines[:splitIdx], "\n"), strings.Join(lines[splitIdx:], "\n"), true
}

// splitOnPowerline scans from the bottom for the last line starting with
// "╭─". Body is everything above it, prompt is that line and below.
func splitOnPowerline(text string) (body, prompt string, ok bool) {
	lines := strings.Split(text, "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if strings.HasPrefix(strings.TrimLeft(lines[i], " "), "╭─") {
			return strings.Join(lines[:i], "\n"), strings.Join(lines[i:], "\n"), true
		}
	}
	return "", "", false
}

// extractBody trims layout chrome: the body is the substring between the
// earliest header_separator hit and the last footer_separator hit. Both
// separators are matched in multi-line mode, so ^ and $ anchor at line
// boundaries. If the resulting range is empty, the search text is empty.
func extractBody(content string, layout *LayoutConfig) string {
	if layout == nil {
		return content
	}
	start := 0
	if layout.HeaderSeparator != "" {
		if re := compileOrNil("(?m)" + layout.HeaderSeparator); re != nil {
			if loc := re.FindStringIndex(content); loc != nil {
				start = loc[1]
			}
		}
	}
	end := len(content)
	if layout.FooterSeparator != "" {
		if re := compileOrNil("(?m)" + layout.FooterSeparator); re != nil {
			if locs := re.FindAllStringIndex(content, -1); len(locs) > 0 {
				end = locs[len(locs)-1][0]
			}
		}
	}
	if start >= end {
		return ""
	}
	return content[start:end]
}

// lastNonBlankLine returns the last non-blank line of t, or "".
func lastNonBlankLine(t string) string {
	lines := strings.Split(t, "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if strings.TrimSpace(lines[i]) != "" {
			return lines[i]
		}
	}
	return ""
}

// lastBlock returns the substring of t after its last double-newline.
func lastBlock(t string) string {
	if idx := strings.LastIndex(t, "\n\n"); idx >= 0 {
		return t[idx+2:]
	}
	return t
}

// firstLineOfLastBlock returns the first non-blank line of lastBlock(t).
func firstLineOfLastBlock(t string) string {
	block := lastBlock(t)
	for _, line := range strings.Split(block, "\n") {
		if strings.TrimSpace(line) != "" {
			return line
		}
	}
	return ""
}

// matchText resolves the text a refinement inspects, given the split
// (body, prompt) region and the refinement's Group and Location.
func matchText(body, prompt string, group Group, loc Location) string {
	target := body
	if group == GroupPrompt {
		target = prompt
	}
	switch loc {
	case LocationLastLine:
		return lastNonBlankLine(target)
	case LocationLastBlock:
		return lastBlock(target)
	case LocationFirstLineOfLastBlock:
		return firstLineOfLastBlock(target)
	default:
		return target
	}
}

// sliceLastLines keeps only the last n lines of t, preserving a trailing
// newline if present. n <= 0 or n larger than the available line count is
// a no-op (degrades to whole-text evaluation).
func sliceLastLines(t string, n int) string {
	if n <= 0 {
		return t
	}
	trailingNewline := strings.HasSuffix(t, "\n")
	body := t
	if trailingNewline {
		body = strings.TrimSuffix(body, "\n")
	}
	lines := strings.Split(body, "\n")
	if len(lines) <= n {
		return t
	}
	out := strings.Join(lines[len(lines)-n:], "\n")
	if trailingNewline {
		out += "\n"
	}
	return out
}
