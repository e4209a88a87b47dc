package rules

import (
	"strings"
	"testing"

	"github.com/leo/tmuxcc/internal/agent"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatus_ApprovalFileEdit(t *testing.T) {
	cfg := AgentConfig{
		ID: "claude",
		StateRules: []StateRuleConfig{
			{Status: "Do you want to edit src/main.rs?", Kind: KindApproval, Pattern: `\[y/n\]`, ApprovalType: "edit"},
		},
	}
	p := Compile(cfg)
	status := p.ParseStatus("Do you want to edit src/main.rs? [y/n]")
	require.Equal(t, agent.StatusAwaitingApproval, status.Kind)
	assert.Equal(t, agent.ApprovalFileEdit, status.Kind2.Tag)
	assert.Equal(t, "Do you want to edit src/main.rs?", status.Details)
}

func TestParseStatus_NumberedChoices(t *testing.T) {
	cfg := AgentConfig{
		ID: "claude",
		StateRules: []StateRuleConfig{
			{Status: "Action Required", Kind: KindApproval, Pattern: "❯"},
		},
	}
	p := Compile(cfg)
	content := "Which option should I take?\n" +
		"  1. Refactor the parser\n" +
		"  2. Add new tests\n" +
		"  3. Update documentation\n" +
		"\n❯ "
	status := p.ParseStatus(content)
	require.Equal(t, agent.StatusAwaitingApproval, status.Kind)
	assert.Equal(t, agent.ApprovalUserQuestion, status.Kind2.Tag)
	assert.Equal(t, []string{"Refactor the parser", "Add new tests", "Update documentation"}, status.Kind2.Choices)
	assert.Equal(t, "Which option should I take?", status.Details)
}

func TestParseStatus_RuleOrderingFirstMatchWins(t *testing.T) {
	cfg := AgentConfig{
		ID: "ci",
		StateRules: []StateRuleConfig{
			{Status: "build failed", Kind: KindError, Pattern: "error: build failed"},
			{Status: "building", Kind: KindWorking, Pattern: "building"},
		},
	}
	p := Compile(cfg)
	status := p.ParseStatus("building...\nerror: build failed\n")
	require.Equal(t, agent.StatusError, status.Kind)
	assert.Equal(t, "build failed", status.Message)
}

func TestParseStatus_SplitterRefinement(t *testing.T) {
	cfg := AgentConfig{
		ID: "claude",
		StateRules: []StateRuleConfig{
			{
				Status:   "thinking",
				Kind:     KindWorking,
				Splitter: SplitterSeparatorLine,
				Refinements: []RefinementConfig{
					{Group: GroupPrompt, Pattern: `^> $`, Location: LocationLastLine, Status: "ready", Kind: KindIdle},
				},
			},
		},
	}
	p := Compile(cfg)
	content := "some work happening\n" + strings.Repeat("─", 40) + "\n> "
	status := p.ParseStatus(content)
	require.Equal(t, agent.StatusIdle, status.Kind)
	assert.Equal(t, "ready", status.Label)
}

func TestParseStatus_EmptyCaptureIsIdle(t *testing.T) {
	p := Compile(AgentConfig{ID: "claude"})
	status := p.ParseStatus("")
	assert.Equal(t, agent.StatusIdle, status.Kind)
	assert.Equal(t, "", status.Label)
}

func TestParseStatus_ChromeOnlyDegradesToIdle(t *testing.T) {
	cfg := AgentConfig{
		ID:     "claude",
		Layout: &LayoutConfig{HeaderSeparator: `^=+$`, FooterSeparator: `^=+$`},
	}
	p := Compile(cfg)
	status := p.ParseStatus("========\n========\n")
	assert.Equal(t, agent.StatusIdle, status.Kind)
}

func TestParseStatus_LastLinesLargerThanAvailableDegrades(t *testing.T) {
	cfg := AgentConfig{
		ID: "claude",
		StateRules: []StateRuleConfig{
			{Status: "matched", Kind: KindWorking, Pattern: "hello", LastLines: 500},
		},
	}
	p := Compile(cfg)
	status := p.ParseStatus("hello\nworld")
	require.Equal(t, agent.StatusProcessing, status.Kind)
	assert.Equal(t, "matched", status.Activity)
}

func TestExtractUserQuestion_NonSequentialResets(t *testing.T) {
	content := "pick one\n  1. first\n  3. skipped two\n  4. also bad\n❯ "
	_, _, ok := extractUserQuestion(content)
	assert.False(t, ok)
}

func TestExtractUserQuestion_TooFarFromPrompt(t *testing.T) {
	var b strings.Builder
	b.WriteString("question?\n  1. a\n  2. b\n")
	for i := 0; i < 10; i++ {
		b.WriteString("noise\n")
	}
	b.WriteString("❯ ")
	_, _, ok := extractUserQuestion(b.String())
	assert.False(t, ok)
}

func TestExtractUserQuestion_ExactlyTwoAccepted(t *testing.T) {
	content := "question?\n  1. a\n  2. b\n❯ "
	q, choices, ok := extractUserQuestion(content)
	require.True(t, ok)
	assert.Equal(t, "question?", q)
	assert.Equal(t, []string{"a", "b"}, choices)
}

func TestMatchStrength_StrongShortCircuitsOverWeak(t *testing.T) {
	weak := Compile(AgentConfig{ID: "a", Priority: 10, Matchers: []MatcherConfig{{Type: MatcherTitle, Pattern: "Claude"}}})
	strong := Compile(AgentConfig{ID: "b", Priority: 5, Matchers: []MatcherConfig{{Type: MatcherCommand, Pattern: "^claude$"}}})
	reg := &Registry{parsers: []*Parser{weak, strong}}
	p := reg.FindParser(Evidence{Command: "claude", Title: "Claude Code"})
	require.NotNil(t, p)
	assert.Equal(t, "b", p.cfg.ID)
}

func TestRegistry_OrdersByPriorityDescending(t *testing.T) {
	reg := NewRegistry([]AgentConfig{
		{ID: "low", Priority: 1},
		{ID: "high", Priority: 10},
	})
	require.Len(t, reg.All(), 2)
	assert.Equal(t, "high", reg.All()[0].cfg.ID)
	assert.Equal(t, "low", reg.All()[1].cfg.ID)
}
