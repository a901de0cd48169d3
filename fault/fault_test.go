package fault

import (
	stderrors "errors"
	"strings"
	"sync"
	"testing"

	"github.com/quillql/quill-wasm/diag"
	"github.com/quillql/quill-wasm/errors"
)

type captureSink struct {
	mu    sync.Mutex
	lines []string
	sevs  []diag.Severity
}

func (c *captureSink) Emit(sev diag.Severity, msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sevs = append(c.sevs, sev)
	c.lines = append(c.lines, msg)
}

func (c *captureSink) panics() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []string
	for i, sev := range c.sevs {
		if sev == diag.Panic {
			out = append(out, c.lines[i])
		}
	}
	return out
}

func TestInstall_Idempotent(t *testing.T) {
	Install()
	Install()
	if !Installed() {
		t.Fatal("Installed() = false after Install")
	}
}

func TestCapture_PassesThroughResult(t *testing.T) {
	if err := Capture("query", func() error { return nil }); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := errors.Parse("query", "bad token")
	got := Capture("query", func() error { return want })
	if !stderrors.Is(got, want) {
		t.Fatalf("error not passed through: %v", got)
	}
}

func TestCapture_ConvertsPanicToInternalFault(t *testing.T) {
	c := &captureSink{}
	diag.SetSink(c)
	defer diag.SetSink(nil)

	err := Capture("query", func() error {
		panic("index out of range in evaluator")
	})

	if !errors.IsKind(err, errors.KindInternal) {
		t.Fatalf("got %v, want internal fault", err)
	}

	recs := c.panics()
	if len(recs) != 1 {
		t.Fatalf("got %d panic records, want exactly 1", len(recs))
	}
	if !strings.Contains(recs[0], "index out of range in evaluator") {
		t.Errorf("record %q missing panic message", recs[0])
	}
	if !strings.Contains(recs[0], "query") {
		t.Errorf("record %q missing operation name", recs[0])
	}
}

func TestCapture_PanicRecordCarriesLocation(t *testing.T) {
	c := &captureSink{}
	diag.SetSink(c)
	defer diag.SetSink(nil)

	_ = Capture("query", func() error {
		var m map[string]int
		m["boom"] = 1 // assignment to nil map
		return nil
	})

	recs := c.panics()
	if len(recs) != 1 {
		t.Fatalf("got %d panic records, want 1", len(recs))
	}
	if !strings.Contains(recs[0], "fault_test.go") {
		t.Errorf("record %q does not name the faulting file", recs[0])
	}
}

func TestCapture_SurvivesBrokenBridge(t *testing.T) {
	diag.SetSink(brokenSink{})
	defer diag.SetSink(nil)

	err := Capture("query", func() error { panic("primary fault") })
	if !errors.IsKind(err, errors.KindInternal) {
		t.Fatalf("got %v, want internal fault despite broken bridge", err)
	}
}

type brokenSink struct{}

func (brokenSink) Emit(diag.Severity, string) { panic("bridge down") }
