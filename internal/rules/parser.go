package rules

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/leo/tmuxcc/internal/agent"
)

// MatchStrength ranks how confidently a parser's matchers identified a pane.
type MatchStrength int

const (
	StrengthNone MatchStrength = iota
	StrengthWeak
	StrengthStrong
)

// Evidence is everything about a pane a parser's matchers may inspect.
type Evidence struct {
	Command        string
	Ancestors      []string
	ChildCommands  []string
	ChildArgTokens []string
	Title          string
	Content        string
}

// parseBufferChars bounds how much captured text state-rule evaluation
// considers, mirroring the original's raw_content = safe_tail(content, N).
const parseBufferChars = 4000

// approvalRecencyChars is the Open Question-preserved recency window for
// the generic UserQuestion/approval fallback: only the last ~2,000
// characters of a capture are searched, so stale answered prompts earlier
// in scrollback are not mistaken for a live one.
const approvalRecencyChars = 2000

// Parser classifies captured pane text for one compiled AgentConfig.
type Parser struct {
	cfg            AgentConfig
	matchers       []compiledMatcher
	stateRules     []compiledStateRule
	subagentRules  *compiledSubagentRules
	summaryRules   *compiledSummaryRules
	highlightRules []compiledHighlightRule
	contextRule    *regexp.Regexp
}

// AgentName returns the configured display name.
func (p *Parser) AgentName() string { return p.cfg.DisplayName }

// AgentType returns the Type this parser binds to.
func (p *Parser) AgentType() agent.Type { return agent.NamedType(p.cfg.ID) }

// Priority is the configured ordering priority (higher first).
func (p *Parser) Priority() int { return p.cfg.Priority }

// ApprovalKeys returns the keys to send on Approve, default "y".
func (p *Parser) ApprovalKeys() []string {
	if len(p.cfg.ApproveKeys) > 0 {
		return p.cfg.ApproveKeys
	}
	return []string{"y"}
}

// RejectionKeys returns the keys to send on Reject, default "n".
func (p *Parser) RejectionKeys() []string {
	if len(p.cfg.RejectKeys) > 0 {
		return p.cfg.RejectKeys
	}
	return []string{"n"}
}

// MatchStrength is max over matchers(strength | regex hits).
func (p *Parser) MatchStrength(ev Evidence) MatchStrength {
	best := StrengthNone
	for _, m := range p.matchers {
		var strength MatchStrength
		switch m.typ {
		case MatcherCommand:
			if m.re.MatchString(ev.Command) || anyMatch(m.re, ev.ChildCommands) || anyMatch(m.re, ev.ChildArgTokens) {
				strength = StrengthStrong
			}
		case MatcherAncestor:
			if anyMatch(m.re, ev.Ancestors) {
				strength = StrengthStrong
			}
		case MatcherContent:
			if m.re.MatchString(ev.Content) {
				strength = StrengthStrong
			}
		case MatcherTitle:
			if m.re.MatchString(ev.Title) {
				strength = StrengthWeak
			}
		}
		if strength > best {
			best = strength
		}
		if best == StrengthStrong {
			return best
		}
	}
	return best
}

func anyMatch(re *regexp.Regexp, vals []string) bool {
	for _, v := range vals {
		if re.MatchString(v) {
			return true
		}
	}
	return false
}

// ParseStatus applies the compiled state rules to content and returns the
// classified status, following §4.C's rule-matching algorithm exactly.
func (p *Parser) ParseStatus(content string) agent.Status {
	raw := safeTail(content, parseBufferChars)
	body := extractBody(raw, p.cfg.Layout)

	for _, rule := range p.stateRules {
		searchText := body
		if rule.lastLines > 0 {
			searchText = sliceLastLines(searchText, rule.lastLines)
		}

		var ruleBody, rulePrompt string
		matched := false

		switch rule.splitter {
		case SplitterSeparatorLine:
			ruleBody, rulePrompt, matched = splitOnSeparatorLine(searchText)
		case SplitterPowerlineBox:
			ruleBody, rulePrompt, matched = splitOnPowerline(searchText)
		default:
			if rule.pattern != nil {
				m := rule.pattern.FindStringSubmatch(searchText)
				if m == nil {
					continue
				}
				matched = true
				if bIdx := rule.pattern.SubexpIndex("body"); bIdx >= 0 && bIdx < len(m) {
					ruleBody = m[bIdx]
				} else {
					ruleBody = searchText
				}
				if pIdx := rule.pattern.SubexpIndex("prompt"); pIdx >= 0 && pIdx < len(m) {
					rulePrompt = m[pIdx]
				}
			} else {
				continue
			}
		}
		if !matched {
			continue
		}

		status, kind, approvalType := rule.status, rule.kind, rule.approvalType
		for _, rf := range rule.refinements {
			text := matchText(ruleBody, rulePrompt, rf.group, rf.location)
			if rf.re.MatchString(text) {
				status = rf.status
				if rf.kind != "" {
					kind = rf.kind
				}
				if rf.approvalType != "" {
					approvalType = rf.approvalType
				}
				break
			}
		}

		return p.finalize(kind, status, approvalType, raw)
	}

	if strings.TrimSpace(body) == "" {
		return agent.IdleStatus("")
	}
	if p.cfg.DefaultKind != "" {
		return p.finalize(p.cfg.DefaultKind, p.cfg.DefaultLabel, "", raw)
	}
	return agent.ProcessingStatus("Processing")
}

// finalize converts a (kind, status, approvalType) triple into the output
// agent.Status, applying the UserQuestion-takes-priority-over-generic-tags
// rule from the numbered-choice extraction over the approval recency window.
func (p *Parser) finalize(kind RuleKind, status, approvalType, raw string) agent.Status {
	if kind == KindApproval {
		if question, choices, ok := extractUserQuestion(safeTail(raw, approvalRecencyChars)); ok {
			return agent.ApprovalStatus(agent.ApprovalKind{
				Tag:         agent.ApprovalUserQuestion,
				Choices:     choices,
				MultiSelect: false,
			}, question)
		}
	}
	switch kind {
	case KindIdle:
		return agent.IdleStatus(status)
	case KindWorking:
		return agent.ProcessingStatus(status)
	case KindError:
		return agent.ErrorStatus(status)
	case KindApproval:
		return agent.ApprovalStatus(agent.ApprovalKindFromTag(approvalType), status)
	default:
		return agent.ProcessingStatus(status)
	}
}

// ParseSubagents extracts child-task descriptors from the full capture.
// A subagent is identified by (kind-tag, description); a later complete
// match for a kind tag toggles every subagent with that tag to Completed.
func (p *Parser) ParseSubagents(content string) []agent.Subagent {
	if p.subagentRules == nil || p.subagentRules.start == nil {
		return nil
	}
	var subs []agent.Subagent
	seen := map[[2]string]bool{} // (kindTag, description) already added
	for _, m := range p.subagentRules.start.FindAllStringSubmatch(content, -1) {
		if len(m) < 3 {
			continue
		}
		kindTag, desc := m[1], m[2]
		key := [2]string{kindTag, desc}
		if seen[key] {
			continue
		}
		subs = append(subs, agent.Subagent{
			ID:          uuid.NewString(),
			KindTag:     kindTag,
			Description: desc,
			Status:      agent.SubagentRunning,
		})
		seen[key] = true
	}
	if p.subagentRules.complete != nil {
		for _, m := range p.subagentRules.complete.FindAllStringSubmatch(content, -1) {
			if len(m) < 2 {
				continue
			}
			for i := range subs {
				if subs[i].KindTag == m[1] {
					subs[i].Status = agent.SubagentCompleted
				}
			}
		}
	}
	return subs
}

// ParseContextRemaining extracts an optional context-window percentage
// from the capture, using the supplemented context_rule regex.
func (p *Parser) ParseContextRemaining(content string) *uint8 {
	if p.contextRule == nil {
		return nil
	}
	m := p.contextRule.FindStringSubmatch(content)
	if len(m) < 2 {
		return nil
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n < 0 || n > 100 {
		return nil
	}
	v := uint8(n)
	return &v
}

// Explain returns a human-readable listing of the parser's state rules
// followed by the status ParseStatus returns for content. It does not
// report which rule or refinement produced that status.
func (p *Parser) Explain(content string) string {
	raw := safeTail(content, parseBufferChars)
	body := extractBody(raw, p.cfg.Layout)
	var b strings.Builder
	fmt.Fprintf(&b, "agent=%s body_len=%d\n", p.cfg.ID, len(body))
	for i, rule := range p.stateRules {
		fmt.Fprintf(&b, "  rule[%d] status=%q kind=%s splitter=%s\n", i, rule.status, rule.kind, rule.splitter)
	}
	status := p.ParseStatus(content)
	fmt.Fprintf(&b, "result: kind=%d label=%q activity=%q details=%q message=%q\n",
		status.Kind, status.Label, status.Activity, status.Details, status.Message)
	return b.String()
}
