// Package rules is the rule compiler and parser: it turns a per-agent
// AgentConfig into a compiled Parser that classifies captured pane text
// into a typed agent.Status. This is the core of the system; every
// matcher, state rule, splitter, refinement, and extraction algorithm
// here is grounded on the original tmuxcc UniversalParser.
package rules

// MatcherType selects which pane field a Matcher checks.
type MatcherType string

const (
	MatcherCommand  MatcherType = "command"
	MatcherAncestor MatcherType = "ancestor"
	MatcherTitle    MatcherType = "title"
	MatcherContent  MatcherType = "content"
)

// MatcherConfig is one detection rule: {command|ancestor|title|content, pattern}.
type MatcherConfig struct {
	Type    MatcherType `toml:"type"`
	Pattern string      `toml:"pattern"`
}

// RuleKind selects which agent.Status variant a state rule or refinement
// produces.
type RuleKind string

const (
	KindIdle     RuleKind = "idle"
	KindWorking  RuleKind = "working"
	KindError    RuleKind = "error"
	KindApproval RuleKind = "approval"
)

// SplitterKind selects the built-in body/prompt partitioner a state rule uses.
type SplitterKind string

const (
	SplitterNone          SplitterKind = "none"
	SplitterSeparatorLine SplitterKind = "separator_line"
	SplitterPowerlineBox  SplitterKind = "powerline_box"
)

// Location scopes a refinement's match text within the rule's (body, prompt).
type Location string

const (
	LocationAnywhere             Location = "anywhere"
	LocationLastLine             Location = "last_line"
	LocationLastBlock            Location = "last_block"
	LocationFirstLineOfLastBlock Location = "first_line_of_last_block"
)

// Group selects which half of the split region a refinement inspects.
type Group string

const (
	GroupBody   Group = "body"
	GroupPrompt Group = "prompt"
)

// RefinementConfig narrows or overrides a parent state rule's result based
// on a sub-region of the split text.
type RefinementConfig struct {
	Group        Group    `toml:"group"`
	Pattern      string   `toml:"pattern"`
	Location     Location `toml:"location"`
	Status       string   `toml:"status"`
	Kind         RuleKind `toml:"kind,omitempty"`
	ApprovalType string   `toml:"approval_type,omitempty"`
}

// StateRuleConfig is one entry in an AgentConfig's ordered state_rules
// sequence. Evaluation stops at the first rule that yields a status.
type StateRuleConfig struct {
	Status       string             `toml:"status"`
	Kind         RuleKind           `toml:"kind"`
	Pattern      string             `toml:"pattern,omitempty"`
	Splitter     SplitterKind       `toml:"splitter,omitempty"`
	LastLines    int                `toml:"last_lines,omitempty"`
	ApprovalType string             `toml:"approval_type,omitempty"`
	Refinements  []RefinementConfig `toml:"refinements,omitempty"`
}

// LayoutConfig trims header/footer chrome before rule evaluation.
type LayoutConfig struct {
	HeaderSeparator string `toml:"header_separator,omitempty"`
	FooterSeparator string `toml:"footer_separator,omitempty"`
}

// SubagentRulesConfig extracts child-task descriptors from the full capture.
type SubagentRulesConfig struct {
	Start    string `toml:"start,omitempty"`
	Running  string `toml:"running,omitempty"`
	Complete string `toml:"complete,omitempty"`
}

// SummaryRulesConfig extracts a non-authoritative activity summary.
type SummaryRulesConfig struct {
	Activity      string `toml:"activity,omitempty"`
	TaskPending   string `toml:"task_pending,omitempty"`
	TaskCompleted string `toml:"task_completed,omitempty"`
	ToolUse       string `toml:"tool_use,omitempty"`
}

// HighlightRuleConfig styles one pattern of visual output.
type HighlightRuleConfig struct {
	Pattern   string   `toml:"pattern"`
	Color     string   `toml:"color,omitempty"`
	Modifiers []string `toml:"modifiers,omitempty"`
}

// AgentConfig is compiled once at startup into a Parser.
type AgentConfig struct {
	ID              string                `toml:"id"`
	DisplayName     string                `toml:"name"`
	Color           string                `toml:"color,omitempty"`
	BackgroundColor string                `toml:"background_color,omitempty"`
	Priority        int                   `toml:"priority"`
	ApproveKeys     []string              `toml:"approve_keys,omitempty"`
	RejectKeys      []string              `toml:"reject_keys,omitempty"`
	Matchers        []MatcherConfig       `toml:"matchers"`
	StateRules      []StateRuleConfig     `toml:"state_rules"`
	SubagentRules   *SubagentRulesConfig  `toml:"subagent_rules,omitempty"`
	SummaryRules    *SummaryRulesConfig   `toml:"summary_rules,omitempty"`
	HighlightRules  []HighlightRuleConfig `toml:"highlight_rules,omitempty"`
	Layout          *LayoutConfig         `toml:"layout,omitempty"`
	DefaultKind     RuleKind              `toml:"default_kind,omitempty"`
	DefaultLabel    string                `toml:"default_label,omitempty"`
	// ContextRule is a supplemented feature (not in the distilled spec, not
	// excluded by its Non-goals): an optional regex whose first capture
	// group is a context-remaining percentage.
	ContextRule string `toml:"context_rule,omitempty"`
}
