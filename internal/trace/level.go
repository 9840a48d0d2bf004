package trace

import (
	"fmt"
	"strings"
)

// Level controls tracing verbosity.
type Level uint8

const (
	LevelOff    Level = iota
	LevelError        // события не пишутся, остаются только heartbeat-ы
	LevelPhase        // driver + unit
	LevelDetail       // + parse/resolve/coherence
	LevelDebug        // + отдельные нарушения
)

// deepest scope kept at each level
var levelDepth = [...]Scope{
	LevelOff:    0,
	LevelError:  0,
	LevelPhase:  ScopeUnit,
	LevelDetail: ScopePass,
	LevelDebug:  ScopeNode,
}

var levelNames = [...]string{
	LevelOff:    "off",
	LevelError:  "error",
	LevelPhase:  "phase",
	LevelDetail: "detail",
	LevelDebug:  "debug",
}

func (l Level) String() string {
	if int(l) < len(levelNames) {
		return levelNames[l]
	}
	return "unknown"
}

// ShouldEmit reports whether events of scope are kept at level l.
func (l Level) ShouldEmit(scope Scope) bool {
	if int(l) >= len(levelDepth) || scope == 0 {
		return false
	}
	return scope <= levelDepth[l]
}

// ParseLevel converts a --trace-level value.
func ParseLevel(s string) (Level, error) {
	return parseName[Level](levelNames[:], s, "trace level")
}

func parseName[T ~uint8](names []string, s, what string) (T, error) {
	want := strings.ToLower(strings.TrimSpace(s))
	for i, name := range names {
		if name != "" && name == want {
			return T(i), nil // #nosec G115 -- tables are tiny
		}
	}
	return 0, fmt.Errorf("invalid %s: %q (expected: %s)", what, s, strings.Join(nonEmpty(names), "|"))
}

func nonEmpty(names []string) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		if n != "" {
			out = append(out, n)
		}
	}
	return out
}
