// Package config loads and layers the tool's TOML configuration: packaged
// defaults, the user's file under the OS config directory, then CLI flags
// and --set overrides. Menu/key-binding trees are accepted and round-
// tripped but not interpreted — those are external-collaborator concerns.
package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/leo/tmuxcc/internal/rules"
)

//go:embed defaults.toml
var defaultsTOML []byte

// ConfigError wraps a bad user configuration: an invalid file, an invalid
// --set override, or an unparseable agent rule list.
type ConfigError struct {
	Context string
	Err     error
}

func (e *ConfigError) Error() string { return fmt.Sprintf("config: %s: %v", e.Context, e.Err) }
func (e *ConfigError) Unwrap() error { return e.Err }

// Config is the layered application configuration.
type Config struct {
	PollIntervalMs       uint64              `toml:"poll_interval_ms"`
	CaptureLines         uint32              `toml:"capture_lines"`
	ShowDetachedSessions bool                `toml:"show_detached_sessions"`
	DebugMode            bool                `toml:"debug_mode"`
	TruncateLongLines    bool                `toml:"truncate_long_lines"`
	MaxLineWidth         *uint16             `toml:"max_line_width,omitempty"`
	PopupTriggerKey      string              `toml:"popup_trigger_key"`
	IgnoreSessions       []string            `toml:"ignore_sessions"`
	IgnoreSelf           bool                `toml:"ignore_self"`
	Agents               []rules.AgentConfig `toml:"agents"`

	// KeyBindings, Menu, and Prompts are external-collaborator schemas:
	// stored verbatim for round-tripping, never interpreted by this
	// module (key-to-action mapping and menu/prompt trees are out of
	// scope per the core spec).
	KeyBindings map[string]string `toml:"key_bindings,omitempty"`
	Menu        map[string]any    `toml:"menu,omitempty"`
	Prompts     map[string]any    `toml:"prompts,omitempty"`
}

// Default returns the packaged default configuration.
func Default() Config {
	var c Config
	if err := toml.Unmarshal(defaultsTOML, &c); err != nil {
		panic("config: embedded defaults.toml is invalid: " + err.Error())
	}
	return c
}

// DefaultPath returns the per-user config file path, or "" if the OS
// config directory can't be determined.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "tmuxcc", "config.toml")
}

// LoadMerged returns the packaged defaults merged with the user's config
// file at DefaultPath, if present. Missing file is not an error.
func LoadMerged() (Config, error) {
	cfg := Default()
	path := DefaultPath()
	if path == "" {
		return cfg, nil
	}
	if _, err := os.Stat(path); err != nil {
		return cfg, nil
	}
	return LoadFrom(path)
}

// LoadFrom loads and merges a config file at an explicit path over the
// packaged defaults.
func LoadFrom(path string) (Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, &ConfigError{Context: "load " + path, Err: err}
	}
	return cfg, nil
}

// Save writes cfg as pretty-printed TOML to path, creating parent
// directories as needed.
func Save(cfg Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return &ConfigError{Context: "mkdir", Err: err}
	}
	f, err := os.Create(path)
	if err != nil {
		return &ConfigError{Context: "create " + path, Err: err}
	}
	defer f.Close()
	enc := toml.NewEncoder(f)
	if err := enc.Encode(cfg); err != nil {
		return &ConfigError{Context: "encode", Err: err}
	}
	return nil
}

// ShouldIgnoreSession reports whether session should be hidden: either it
// is the session tmuxcc itself runs in (when IgnoreSelf), or it matches
// one of IgnoreSessions' patterns.
func (c Config) ShouldIgnoreSession(session string, currentSession string, insideMux bool) bool {
	if c.IgnoreSelf && insideMux && session == currentSession {
		return true
	}
	for _, raw := range c.IgnoreSessions {
		pat, err := ParseSessionPattern(raw)
		if err != nil {
			continue
		}
		if pat.Matches(session) {
			return true
		}
	}
	return false
}
