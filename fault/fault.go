package fault

import (
	"fmt"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/quillql/quill-wasm/diag"
	"github.com/quillql/quill-wasm/errors"
)

// Record describes one unrecoverable internal fault. It exists only long
// enough to be forwarded to the diagnostic bridge.
type Record struct {
	Message  string
	Location string // "file.go:123", best effort
}

func (r Record) String() string {
	if r.Location == "" {
		return "panic: " + r.Message
	}
	return "panic at " + r.Location + ": " + r.Message
}

var (
	installOnce sync.Once
	installed   atomic.Bool
)

// Install registers the process-wide interceptor. Idempotent; the first
// call wins. Must run before any context handle is constructed.
func Install() {
	installOnce.Do(func() {
		installed.Store(true)
		diag.Emit(diag.Debug, "fault interceptor installed")
	})
}

// Installed reports whether Install has run.
func Installed() bool {
	return installed.Load()
}

// Capture runs fn and intercepts any panic, reporting it through the
// diagnostic bridge and returning the generic internal-fault error in its
// place. Errors returned by fn pass through untouched.
func Capture(op string, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			report(op, r)
			err = errors.Internal(op)
		}
	}()
	return fn()
}

// report forwards one Record for the recovered value r. It must never fail:
// everything here runs under its own recover so a broken bridge cannot
// re-enter the fault path.
func report(op string, r any) {
	defer func() {
		recover()
	}()
	rec := Record{
		Message:  fmt.Sprintf("%s: %v", op, r),
		Location: panicOrigin(),
	}
	diag.Emit(diag.Panic, rec.String())
}

// panicOrigin walks the stack for the first frame below the runtime's panic
// machinery and outside this package.
func panicOrigin() string {
	pcs := make([]uintptr, 32)
	n := runtime.Callers(3, pcs)
	frames := runtime.CallersFrames(pcs[:n])
	for {
		frame, more := frames.Next()
		if frame.File != "" && !internalFrame(frame.Function) {
			return fmt.Sprintf("%s:%d", frame.File, frame.Line)
		}
		if !more {
			return ""
		}
	}
}

// internalFrame skips the runtime's panic machinery and Capture's own
// deferred frame so the record points at the code that faulted.
func internalFrame(fn string) bool {
	if fn == "" {
		return true
	}
	if strings.HasPrefix(fn, "runtime.") {
		return true
	}
	return strings.Contains(fn, "quill-wasm/fault.Capture") ||
		strings.Contains(fn, "quill-wasm/fault.report")
}
