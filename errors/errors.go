package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// Kind categorizes a boundary error. Host callers branch on Kind, so the set
// is closed and stable.
type Kind string

const (
	KindInit      Kind = "init"      // context construction / invalid options
	KindSource    Kind = "source"    // malformed locator, unreadable source
	KindParse     Kind = "parse"     // malformed query text
	KindPlan      Kind = "plan"      // unknown table/column, type mismatch, unsupported construct
	KindExecution Kind = "execution" // runtime fault during evaluation
	KindIO        Kind = "io"        // source read failure
	KindDisposed  Kind = "disposed"  // operation on a disposed context
	KindInternal  Kind = "internal"  // captured panic; context possibly corrupted
)

// Error is the structured error type used throughout the boundary layer.
type Error struct {
	Kind   Kind
	Op     string // boundary operation: create, register-source, query, dispose
	Path   []string
	Detail string
	Cause  error
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Kind))
	b.WriteString("] ")

	if e.Op != "" {
		b.WriteString(e.Op)
	}

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error. Two boundary errors match
// when their kinds match, so tests and callers can compare against a bare
// &Error{Kind: ...} sentinel.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Kind == t.Kind
	}
	return false
}

// KindOf classifies err for the boundary. Wrapped causes are traversed; an
// error with no *Error in its chain classifies as KindInternal, the "we do
// not know what happened" signal.
func KindOf(err error) Kind {
	var be *Error
	if stderrors.As(err, &be) {
		return be.Kind
	}
	return KindInternal
}

// IsKind reports whether err classifies as kind.
func IsKind(err error, kind Kind) bool {
	if err == nil {
		return false
	}
	return KindOf(err) == kind
}

// Builder provides structured error construction.
type Builder struct {
	err Error
}

// New creates a new error builder.
func New(kind Kind) *Builder {
	return &Builder{err: Error{Kind: kind}}
}

// Op sets the boundary operation name.
func (b *Builder) Op(op string) *Builder {
	b.err.Op = op
	return b
}

// Path sets the object path (table, column, option key).
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// Detail sets the human-readable detail message.
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Cause sets the underlying error.
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Build returns the constructed error.
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for the common taxonomy members.

// Init creates a context-construction error.
func Init(op, detail string, args ...any) *Error {
	return &Error{Kind: KindInit, Op: op, Detail: sprintf(detail, args...)}
}

// Source creates a source registration error.
func Source(op, detail string, args ...any) *Error {
	return &Error{Kind: KindSource, Op: op, Detail: sprintf(detail, args...)}
}

// Parse creates a malformed-query error.
func Parse(op, detail string, args ...any) *Error {
	return &Error{Kind: KindParse, Op: op, Detail: sprintf(detail, args...)}
}

// Plan creates a planning error (unknown table/column, type mismatch).
func Plan(op, detail string, args ...any) *Error {
	return &Error{Kind: KindPlan, Op: op, Detail: sprintf(detail, args...)}
}

// Execution creates a runtime evaluation error.
func Execution(op, detail string, args ...any) *Error {
	return &Error{Kind: KindExecution, Op: op, Detail: sprintf(detail, args...)}
}

// IO creates a source read error.
func IO(op string, cause error) *Error {
	return &Error{Kind: KindIO, Op: op, Detail: "source read failed", Cause: cause}
}

// Disposed creates a use-after-dispose error.
func Disposed(op string) *Error {
	return &Error{Kind: KindDisposed, Op: op, Detail: "context has been disposed"}
}

// Internal creates the generic internal-fault error a captured panic
// surfaces as. The panic detail itself travels through the diagnostic
// bridge, not through this value.
func Internal(op string) *Error {
	return &Error{Kind: KindInternal, Op: op, Detail: "internal fault; dispose and recreate the context"}
}

// Wrap wraps an existing error with a kind and operation.
func Wrap(kind Kind, op string, cause error, detail string) *Error {
	return &Error{Kind: kind, Op: op, Detail: detail, Cause: cause}
}

func sprintf(msg string, args ...any) string {
	if len(args) == 0 {
		return msg
	}
	return fmt.Sprintf(msg, args...)
}
