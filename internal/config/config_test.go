package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.EqualValues(t, 500, cfg.PollIntervalMs)
	assert.EqualValues(t, 200, cfg.CaptureLines)
	assert.True(t, cfg.ShowDetachedSessions)
	assert.False(t, cfg.DebugMode)
	assert.True(t, cfg.IgnoreSelf)
	assert.Len(t, cfg.Agents, 4)
}

func TestApplyOverride_Aliases(t *testing.T) {
	cfg := Default()

	require.NoError(t, cfg.ApplyOverride("show_detached_sessions", "false"))
	assert.False(t, cfg.ShowDetachedSessions)

	require.NoError(t, cfg.ApplyOverride("showdetached", "1"))
	assert.True(t, cfg.ShowDetachedSessions)

	require.NoError(t, cfg.ApplyOverride("poll_interval_ms", "1000"))
	assert.EqualValues(t, 1000, cfg.PollIntervalMs)

	require.NoError(t, cfg.ApplyOverride("debug", "true"))
	assert.True(t, cfg.DebugMode)

	require.Error(t, cfg.ApplyOverride("invalid_key", "value"))
	require.Error(t, cfg.ApplyOverride("show_detached_sessions", "invalid"))
}

func TestApplyOverride_IgnoreSessions(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.ApplyOverride("ignore_sessions", "prod-*,ssh-tunnel"))
	assert.Equal(t, []string{"prod-*", "ssh-tunnel"}, cfg.IgnoreSessions)
}

func TestShouldIgnoreSession(t *testing.T) {
	cfg := Default()
	assert.True(t, cfg.ShouldIgnoreSession("mine", "mine", true))
	assert.False(t, cfg.ShouldIgnoreSession("other", "mine", true))
	assert.False(t, cfg.ShouldIgnoreSession("mine", "mine", false))

	cfg.IgnoreSelf = false
	cfg.IgnoreSessions = []string{"prod-*", "/^vpn-\\d+$/", "ssh-tunnel"}
	assert.True(t, cfg.ShouldIgnoreSession("ssh-tunnel", "", false))
	assert.False(t, cfg.ShouldIgnoreSession("ssh-tunnel-2", "", false))
	assert.True(t, cfg.ShouldIgnoreSession("prod-main", "", false))
	assert.True(t, cfg.ShouldIgnoreSession("vpn-123", "", false))
	assert.False(t, cfg.ShouldIgnoreSession("vpn-abc", "", false))
}

func TestSessionPatternAutoDetect(t *testing.T) {
	p, err := ParseSessionPattern("/^ssh-\\d+$/")
	require.NoError(t, err)
	assert.Equal(t, PatternRegex, p.Kind)

	p, err = ParseSessionPattern("test-*")
	require.NoError(t, err)
	assert.Equal(t, PatternGlob, p.Kind)

	p, err = ParseSessionPattern("fixed-name")
	require.NoError(t, err)
	assert.Equal(t, PatternFixed, p.Kind)
}
