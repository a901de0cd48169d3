package diag

import (
	"fmt"
	"sync/atomic"
)

// Severity classifies a diagnostic line.
type Severity int

const (
	Debug Severity = iota
	Info
	Warn
	Error
	// Panic marks a captured internal fault. Fires at most once per fault,
	// independent of any context handle.
	Panic
)

// String returns the lowercase severity label used in host log lines.
func (s Severity) String() string {
	switch s {
	case Debug:
		return "debug"
	case Info:
		return "info"
	case Warn:
		return "warn"
	case Error:
		return "error"
	case Panic:
		return "panic"
	default:
		return "unknown"
	}
}

// Sink receives diagnostic lines. Implementations must not block; delivery
// is fire-and-forget.
type Sink interface {
	Emit(sev Severity, msg string)
}

var sink atomic.Value // Sink

// SetSink replaces the process-wide diagnostic sink. Passing nil restores
// the zap-backed default.
func SetSink(s Sink) {
	if s == nil {
		s = zapSink{}
	}
	sink.Store(sinkBox{s})
}

// sinkBox keeps the stored type in atomic.Value consistent across
// heterogeneous Sink implementations.
type sinkBox struct{ s Sink }

func current() Sink {
	if v := sink.Load(); v != nil {
		return v.(sinkBox).s
	}
	return zapSink{}
}

// Emit forwards a diagnostic line to the current sink. Best-effort: a
// failing or panicking sink is swallowed, never surfaced to the caller.
func Emit(sev Severity, msg string) {
	defer func() {
		recover() // the bridge must never fail its caller
	}()
	current().Emit(sev, msg)
}

// Emitf is Emit with formatting. The format step itself is inside the
// swallow guard so a misbehaving Stringer cannot fail the caller.
func Emitf(sev Severity, format string, args ...any) {
	defer func() {
		recover()
	}()
	current().Emit(sev, fmt.Sprintf(format, args...))
}
