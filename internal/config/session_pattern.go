package config

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

// SessionPatternKind tags which matching strategy a pattern uses.
type SessionPatternKind int

const (
	PatternFixed SessionPatternKind = iota
	PatternGlob
	PatternRegex
)

// SessionPattern matches a tmux session name by fixed string, shell glob,
// or regex, auto-detected from the pattern's own syntax.
type SessionPattern struct {
	Kind  SessionPatternKind
	Fixed string
	Glob  string
	Re    *regexp.Regexp
}

// ParseSessionPattern auto-detects the pattern kind: "/.../" wrapped is
// regex, containing '*' or '?' is glob, otherwise fixed exact match.
func ParseSessionPattern(raw string) (SessionPattern, error) {
	if len(raw) >= 2 && strings.HasPrefix(raw, "/") && strings.HasSuffix(raw, "/") {
		body := raw[1 : len(raw)-1]
		re, err := regexp.Compile(body)
		if err != nil {
			return SessionPattern{}, fmt.Errorf("invalid regex pattern %q: %w", raw, err)
		}
		return SessionPattern{Kind: PatternRegex, Re: re}, nil
	}
	if strings.ContainsAny(raw, "*?") {
		return SessionPattern{Kind: PatternGlob, Glob: raw}, nil
	}
	return SessionPattern{Kind: PatternFixed, Fixed: raw}, nil
}

// Matches reports whether session matches the pattern.
func (p SessionPattern) Matches(session string) bool {
	switch p.Kind {
	case PatternRegex:
		return p.Re.MatchString(session)
	case PatternGlob:
		ok, _ := filepath.Match(p.Glob, session)
		return ok
	default:
		return p.Fixed == session
	}
}
