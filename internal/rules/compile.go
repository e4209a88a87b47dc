package rules

import (
	"regexp"

	"github.com/leo/tmuxcc/internal/logging"
)

// compileOrNil compiles pattern, returning nil and logging a warning if it
// is invalid. The (?i) inline flag and (?P<name>...) named groups Go's
// regexp package (RE2) already supports natively, so no translation layer
// is needed for the rule dialect described in the spec.
func compileOrNil(pattern string) *regexp.Regexp {
	re, err := regexp.Compile(pattern)
	if err != nil {
		logging.L().Warn().Err(err).Str("pattern", pattern).Msg("dropping invalid rule pattern")
		return nil
	}
	return re
}

type compiledMatcher struct {
	typ MatcherType
	re  *regexp.Regexp
}

type compiledRefinement struct {
	group        Group
	re           *regexp.Regexp
	location     Location
	status       string
	kind         RuleKind
	approvalType string
}

type compiledStateRule struct {
	status       string
	kind         RuleKind
	pattern      *regexp.Regexp // nil if not set
	splitter     SplitterKind
	lastLines    int
	approvalType string
	refinements  []compiledRefinement
}

type compiledSubagentRules struct {
	start, running, complete *regexp.Regexp
}

type compiledSummaryRules struct {
	activity, taskPending, taskCompleted, toolUse *regexp.Regexp
}

type compiledHighlightRule struct {
	re        *regexp.Regexp
	color     string
	modifiers []string
}

// Compile builds a Parser from an AgentConfig. Invalid regexes are logged
// and dropped individually; the parser always compiles successfully.
func Compile(cfg AgentConfig) *Parser {
	p := &Parser{cfg: cfg}

	for _, m := range cfg.Matchers {
		if re := compileOrNil(m.Pattern); re != nil {
			p.matchers = append(p.matchers, compiledMatcher{typ: m.Type, re: re})
		}
	}

	for _, sr := range cfg.StateRules {
		csr := compiledStateRule{
			status:       sr.Status,
			kind:         sr.Kind,
			splitter:     sr.Splitter,
			lastLines:    sr.LastLines,
			approvalType: sr.ApprovalType,
		}
		if sr.Pattern != "" {
			csr.pattern = compileOrNil(sr.Pattern)
		}
		for _, rf := range sr.Refinements {
			re := compileOrNil(rf.Pattern)
			if re == nil {
				continue
			}
			csr.refinements = append(csr.refinements, compiledRefinement{
				group:        rf.Group,
				re:           re,
				location:     rf.Location,
				status:       rf.Status,
				kind:         rf.Kind,
				approvalType: rf.ApprovalType,
			})
		}
		p.stateRules = append(p.stateRules, csr)
	}

	if cfg.SubagentRules != nil {
		p.subagentRules = &compiledSubagentRules{
			start:    compileOrNil(cfg.SubagentRules.Start),
			running:  compileOrNil(cfg.SubagentRules.Running),
			complete: compileOrNil(cfg.SubagentRules.Complete),
		}
	}

	if cfg.SummaryRules != nil {
		p.summaryRules = &compiledSummaryRules{
			activity:      compileOrNil(cfg.SummaryRules.Activity),
			taskPending:   compileOrNil(cfg.SummaryRules.TaskPending),
			taskCompleted: compileOrNil(cfg.SummaryRules.TaskCompleted),
			toolUse:       compileOrNil(cfg.SummaryRules.ToolUse),
		}
	}

	for _, hr := range cfg.HighlightRules {
		if re := compileOrNil(hr.Pattern); re != nil {
			p.highlightRules = append(p.highlightRules, compiledHighlightRule{
				re: re, color: hr.Color, modifiers: hr.Modifiers,
			})
		}
	}

	if cfg.ContextRule != "" {
		p.contextRule = compileOrNil(cfg.ContextRule)
	}

	return p
}
