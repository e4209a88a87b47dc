package config

import (
	"fmt"
	"strconv"
	"strings"
)

// normalizeKey strips '_' and '-' and lowercases, so "poll_interval_ms",
// "poll-interval-ms", and "pollintervalms" all resolve to the same key.
func normalizeKey(key string) string {
	key = strings.ToLower(key)
	key = strings.ReplaceAll(key, "_", "")
	key = strings.ReplaceAll(key, "-", "")
	return key
}

var keyAliases = map[string]string{
	"pollintervalms":        "pollintervalms",
	"pollinterval":          "pollintervalms",
	"capturelines":          "capturelines",
	"showdetachedsessions":  "showdetachedsessions",
	"showdetached":          "showdetachedsessions",
	"debugmode":             "debugmode",
	"debug":                 "debugmode",
	"truncatelonglines":     "truncatelonglines",
	"truncate":              "truncatelonglines",
	"maxlinewidth":          "maxlinewidth",
	"linewidth":             "maxlinewidth",
	"popuptriggerkey":       "popuptriggerkey",
	"ignoresessions":        "ignoresessions",
	"ignoreself":            "ignoreself",
}

func parseBool(v string) (bool, error) {
	switch strings.ToLower(v) {
	case "true", "1", "yes", "on":
		return true, nil
	case "false", "0", "no", "off":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean value %q", v)
	}
}

// ApplyOverride mutates cfg according to one "--set KEY=VALUE" entry. Keys
// normalize by stripping '_'/'-' and lowercasing, with a small alias table
// for common short forms.
func (c *Config) ApplyOverride(key, value string) error {
	norm := normalizeKey(key)
	canonical, ok := keyAliases[norm]
	if !ok {
		return &ConfigError{Context: "apply override", Err: fmt.Errorf("unknown config key %q", key)}
	}

	switch canonical {
	case "pollintervalms":
		n, err := strconv.ParseUint(value, 10, 64)
		if err != nil {
			return &ConfigError{Context: "poll_interval_ms", Err: err}
		}
		c.PollIntervalMs = n
	case "capturelines":
		n, err := strconv.ParseUint(value, 10, 32)
		if err != nil {
			return &ConfigError{Context: "capture_lines", Err: err}
		}
		c.CaptureLines = uint32(n)
	case "showdetachedsessions":
		b, err := parseBool(value)
		if err != nil {
			return &ConfigError{Context: "show_detached_sessions", Err: err}
		}
		c.ShowDetachedSessions = b
	case "debugmode":
		b, err := parseBool(value)
		if err != nil {
			return &ConfigError{Context: "debug_mode", Err: err}
		}
		c.DebugMode = b
	case "truncatelonglines":
		b, err := parseBool(value)
		if err != nil {
			return &ConfigError{Context: "truncate_long_lines", Err: err}
		}
		c.TruncateLongLines = b
	case "maxlinewidth":
		if strings.EqualFold(value, "none") {
			c.MaxLineWidth = nil
			return nil
		}
		n, err := strconv.ParseUint(value, 10, 16)
		if err != nil {
			return &ConfigError{Context: "max_line_width", Err: err}
		}
		v := uint16(n)
		c.MaxLineWidth = &v
	case "popuptriggerkey":
		c.PopupTriggerKey = value
	case "ignoresessions":
		var patterns []string
		for _, p := range strings.Split(value, ",") {
			p = strings.TrimSpace(p)
			if p != "" {
				patterns = append(patterns, p)
			}
		}
		c.IgnoreSessions = patterns
	case "ignoreself":
		b, err := parseBool(value)
		if err != nil {
			return &ConfigError{Context: "ignore_self", Err: err}
		}
		c.IgnoreSelf = b
	}
	return nil
}
