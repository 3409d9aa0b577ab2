package trace

import "time"

// Kind is the type of an event.
type Kind uint8

const (
	KindSpanBegin Kind = iota + 1
	KindSpanEnd
	// KindPoint is an instant event.
	KindPoint
	// KindHeartbeat is the periodic liveness signal of long builds.
	KindHeartbeat
)

var kindNames = [...]string{
	KindSpanBegin: "begin",
	KindSpanEnd:   "end",
	KindPoint:     "point",
	KindHeartbeat: "heartbeat",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return "unknown"
}

// Scope is the granularity of an event; smaller values are coarser.
type Scope uint8

const (
	// ScopeDriver covers CLI commands and batch builds.
	ScopeDriver Scope = iota + 1
	// ScopeUnit is one permutation being compiled.
	ScopeUnit
	// ScopePhase is preprocess, parse, sema or emit.
	ScopePhase
	// ScopeClass is a shader class loaded by name.
	ScopeClass
	ScopeDebug
)

var scopeNames = [...]string{
	ScopeDriver: "driver",
	ScopeUnit:   "unit",
	ScopePhase:  "phase",
	ScopeClass:  "class",
	ScopeDebug:  "debug",
}

func (s Scope) String() string {
	if int(s) < len(scopeNames) && scopeNames[s] != "" {
		return scopeNames[s]
	}
	return "unknown"
}

// Event is one trace record.
type Event struct {
	Time     time.Time
	Seq      uint64
	Kind     Kind
	Scope    Scope
	SpanID   uint64
	ParentID uint64
	// GID is the goroutine, so concurrent permutations can be told apart.
	GID    uint64
	Name   string
	Detail string
	// Dur is set on span ends.
	Dur   time.Duration
	Extra map[string]string
}
