package httplog

import (
	"fmt"
	"strings"
	"time"
)

// Level is the severity records are emitted at.
type Level int8

const (
	LevelDebug Level = iota
	LevelInfo
	// LevelWarn is a deprecated alias. It behaves like LevelDebug and
	// triggers a one-time deprecation notice on first emit.
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	}
	return fmt.Sprintf("level(%d)", int8(l))
}

// ParseLevel parses a level name. An empty string resolves to info.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return LevelDebug, nil
	case "info", "":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	}
	return LevelInfo, fmt.Errorf("unknown log level %q", s)
}

// DurationUnit selects the unit the duration field is reported in.
type DurationUnit string

const (
	UnitNanoseconds  DurationUnit = "nanoseconds"
	UnitMicroseconds DurationUnit = "microseconds"
	UnitMilliseconds DurationUnit = "milliseconds"
)

// DebugMode is the tri-state override for debug field verbosity.
type DebugMode int8

const (
	// DebugDefault follows the configured level: debug fields appear at
	// debug level (and the deprecated warn alias).
	DebugDefault DebugMode = iota
	DebugOn
	DebugOff
)

// Observer receives emission outcomes for instrumentation. Implementations
// must be safe for concurrent use; a nil observer disables observation.
type Observer interface {
	// RecordEmitted is called after a record reached the sink. elapsed is
	// the time spent rendering and writing it. phase is empty for error
	// records.
	RecordEmitted(logType, phase string, elapsed time.Duration)

	// RecordSuppressed is called when a phase gate declined to emit.
	RecordSuppressed(phase string)
}

// Options configures an Interceptor. The zero value logs every response at
// info level in milliseconds and never logs the request phase.
type Options struct {
	Level        Level
	DurationUnit DurationUnit
	IncludeDebug DebugMode

	// Observer, when set, is notified of every emitted and suppressed
	// record. Observer calls never affect the emission outcome.
	Observer Observer

	// ExtraAttributes, when set, is invoked once per emitted record and its
	// result is merged last, so it may shadow any default field. The return
	// value is trusted as-is; no filtering is applied to it.
	ExtraAttributes func(*Snapshot) map[string]any

	// ShouldLogRequest gates the request phase. Nil means never.
	ShouldLogRequest func(*Snapshot) bool

	// ShouldLogResponse gates the response phase. Nil means always,
	// unless the legacy ShouldLog predicate is set.
	ShouldLogResponse func(*Snapshot) bool

	// ShouldLog is the legacy single predicate from before the phases were
	// split. It fills the response-phase slot only; adapters that used it
	// gated the one record they emitted.
	ShouldLog func(*Snapshot) bool

	// FilteredKeys are parameter keys redacted at any depth.
	FilteredKeys []string

	// SuppressedKeys are removed from the assembled record, top level only.
	SuppressedKeys []string
}
