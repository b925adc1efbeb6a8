package trace

import (
	"fmt"
	"strings"
)

// Level controls tracing verbosity. Each level admits the scopes up to and
// including its own.
type Level uint8

const (
	LevelOff    Level = iota // nothing
	LevelError               // nothing either; errors travel as diagnostics
	LevelPhase               // commands and passes
	LevelDetail              // plus per-file spans
	LevelDebug               // everything including node-level
)

var levelNames = [...]string{
	LevelOff:    "off",
	LevelError:  "error",
	LevelPhase:  "phase",
	LevelDetail: "detail",
	LevelDebug:  "debug",
}

// deepest scope emitted per level; 0 emits nothing
var levelScope = [...]Scope{
	LevelPhase:  ScopePass,
	LevelDetail: ScopeFile,
	LevelDebug:  ScopeNode,
}

func (l Level) String() string {
	if int(l) < len(levelNames) {
		return levelNames[l]
	}
	return "unknown"
}

// ParseLevel converts a --trace-level value, case-insensitively.
func ParseLevel(s string) (Level, error) {
	for l, name := range levelNames {
		if strings.EqualFold(s, name) {
			return Level(l), nil
		}
	}
	return LevelOff, fmt.Errorf("invalid trace level: %q (expected: %s)", s, strings.Join(levelNames[:], "|"))
}

// ShouldEmit reports whether events of scope pass this level.
func (l Level) ShouldEmit(scope Scope) bool {
	if int(l) >= len(levelScope) {
		return false
	}
	return scope <= levelScope[l]
}
