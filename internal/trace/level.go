package trace

import (
	"fmt"
	"strings"
)

// Level controls verbosity.
type Level uint8

const (
	LevelOff Level = iota
	// LevelError keeps events only for dumps after a failure.
	LevelError
	LevelPhase
	LevelDetail
	LevelDebug
)

var levelNames = [...]string{"off", "error", "phase", "detail", "debug"}

func (l Level) String() string {
	if int(l) < len(levelNames) {
		return levelNames[l]
	}
	return "unknown"
}

// ParseLevel accepts the names printed by String, in any case.
func ParseLevel(s string) (Level, error) {
	for i, name := range levelNames {
		if strings.EqualFold(s, name) {
			return Level(i), nil
		}
	}
	return LevelOff, fmt.Errorf("invalid trace level %q (want %s)", s, strings.Join(levelNames[:], "|"))
}

// ShouldEmit reports whether events of scope are recorded at l.
func (l Level) ShouldEmit(scope Scope) bool {
	switch l {
	case LevelError, LevelPhase:
		// на уровне error кольцо всё равно пишет фазы, дамп только при сбое
		return scope <= ScopePhase
	case LevelDetail:
		return scope <= ScopeClass
	case LevelDebug:
		return true
	}
	return false
}
