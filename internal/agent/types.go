// Package agent holds the core data model shared by the multiplexer
// gateway, rule engine, monitor loop, and application state: the observed
// pane, the compiled agent identity, and the classified status tree.
package agent

import (
	"sort"
	"time"
)

// PaneRecord is one observation of a multiplexer pane during a poll.
type PaneRecord struct {
	Target      string // "session:window.pane", opaque address for capture/send
	Session     string
	WindowIndex string
	WindowName  string
	PaneIndex   string
	WorkingDir  string
	Command     string   // leaf process name as reported by the multiplexer
	Title       string   // pane title string
	ProcessID   int
	Ancestors   []string // command names root->leaf, probed on demand
	Attached    bool     // session has an active client
}

// Type is a tagged variant identifying which AgentConfig matched a pane.
// Unknown is set only by UnknownType; the zero value has an empty ID and
// Unknown false.
type Type struct {
	ID      string
	Unknown bool
}

// UnknownType returns the Unknown agent type.
func UnknownType() Type { return Type{Unknown: true} }

// NamedType returns the agent type bound to a compiled config id.
func NamedType(id string) Type { return Type{ID: id} }

// ApprovalKindTag selects which ApprovalKind variant an AgentStatus carries.
type ApprovalKindTag int

const (
	ApprovalOther ApprovalKindTag = iota
	ApprovalFileEdit
	ApprovalFileCreate
	ApprovalFileDelete
	ApprovalShellCommand
	ApprovalMcpTool
	ApprovalUserQuestion
)

// ApprovalKind describes the nature of a pending approval request.
type ApprovalKind struct {
	Tag   ApprovalKindTag
	Label string // populated when Tag == ApprovalOther

	// Choices/MultiSelect are populated when Tag == ApprovalUserQuestion.
	Choices     []string
	MultiSelect bool
}

// ApprovalKindFromTag maps a config-level string tag to an ApprovalKind.
// Unknown tags map to Other(label) where label is the tag itself; the empty
// tag maps to Other("Action Required").
func ApprovalKindFromTag(tag string) ApprovalKind {
	switch tag {
	case "edit":
		return ApprovalKind{Tag: ApprovalFileEdit}
	case "create":
		return ApprovalKind{Tag: ApprovalFileCreate}
	case "delete":
		return ApprovalKind{Tag: ApprovalFileDelete}
	case "shell":
		return ApprovalKind{Tag: ApprovalShellCommand}
	case "mcp":
		return ApprovalKind{Tag: ApprovalMcpTool}
	case "":
		return ApprovalKind{Tag: ApprovalOther, Label: "Action Required"}
	default:
		return ApprovalKind{Tag: ApprovalOther, Label: tag}
	}
}

// StatusKind selects which AgentStatus variant is active.
type StatusKind int

const (
	StatusIdle StatusKind = iota
	StatusProcessing
	StatusAwaitingApproval
	StatusError
	StatusUnknown
)

// Status is the classified state of a monitored agent.
type Status struct {
	Kind     StatusKind
	Label    string       // Idle: optional label
	Activity string       // Processing: what it's doing
	Kind2    ApprovalKind // AwaitingApproval: kind
	Details  string       // AwaitingApproval: details text
	Message  string       // Error: message
}

// NeedsAttention is true for AwaitingApproval and Error.
func (s Status) NeedsAttention() bool {
	return s.Kind == StatusAwaitingApproval || s.Kind == StatusError
}

func IdleStatus(label string) Status { return Status{Kind: StatusIdle, Label: label} }
func ProcessingStatus(activity string) Status {
	return Status{Kind: StatusProcessing, Activity: activity}
}
func ErrorStatus(msg string) Status { return Status{Kind: StatusError, Message: msg} }
func ApprovalStatus(kind ApprovalKind, details string) Status {
	return Status{Kind: StatusAwaitingApproval, Kind2: kind, Details: details}
}

// SubagentStatus is the lifecycle state of a subagent reported in text.
type SubagentStatus int

const (
	SubagentRunning SubagentStatus = iota
	SubagentCompleted
	SubagentFailed
	SubagentUnknown
)

// Subagent is a child task reported inside an agent's own output.
type Subagent struct {
	ID          string
	KindTag     string
	Description string
	Status      SubagentStatus
	StartedAt   time.Time
}

// MonitoredAgent is the core classified entity: one pane, its agent type,
// and the status derived from the most recent capture.
type MonitoredAgent struct {
	ID                string // Target + "#" + strconv.Itoa(ProcessID), stable across a process lifetime
	AgentType         Type
	DisplayName       string
	Target            string
	Session           string
	WindowIndex       string
	WindowName        string
	PaneIndex         string
	Path              string
	Status            Status
	Subagents         []Subagent
	LastContent       string // exact text the parser saw when producing Status
	ContextRemaining  *uint8 // optional, from an agent's context_rule; nil when absent
}

// Tree is the ordered set of monitored agents for one poll, sorted by
// Target ascending.
type Tree struct {
	Agents []MonitoredAgent
}

// NewTree sorts agents by Target and returns the resulting Tree.
func NewTree(agents []MonitoredAgent) Tree {
	sort.Slice(agents, func(i, j int) bool { return agents[i].Target < agents[j].Target })
	return Tree{Agents: agents}
}

// Get returns the agent with the given id, or false.
func (t Tree) Get(id string) (MonitoredAgent, bool) {
	for _, a := range t.Agents {
		if a.ID == id {
			return a, true
		}
	}
	return MonitoredAgent{}, false
}

// Total is the number of monitored agents in the tree.
func (t Tree) Total() int { return len(t.Agents) }

// NeedsAttention counts agents whose status needs attention.
func (t Tree) NeedsAttention() int {
	n := 0
	for _, a := range t.Agents {
		if a.Status.NeedsAttention() {
			n++
		}
	}
	return n
}

// RunningSubagents counts subagents across the tree with status Running.
func (t Tree) RunningSubagents() int {
	n := 0
	for _, a := range t.Agents {
		for _, s := range a.Subagents {
			if s.Status == SubagentRunning {
				n++
			}
		}
	}
	return n
}

// Processing counts agents currently Processing.
func (t Tree) Processing() int {
	n := 0
	for _, a := range t.Agents {
		if a.Status.Kind == StatusProcessing {
			n++
		}
	}
	return n
}
