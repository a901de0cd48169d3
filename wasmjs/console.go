//go:build js && wasm

package wasmjs

import (
	"syscall/js"

	"github.com/quillql/quill-wasm/diag"
)

// ConsoleSink forwards diagnostic lines to the host console. Panic records
// go through console.error with a marker prefix so hosts can alert on them.
type ConsoleSink struct{}

func (ConsoleSink) Emit(sev diag.Severity, msg string) {
	console := js.Global().Get("console")
	if console.IsUndefined() {
		return
	}
	switch sev {
	case diag.Debug:
		console.Call("debug", msg)
	case diag.Info:
		console.Call("info", msg)
	case diag.Warn:
		console.Call("warn", msg)
	case diag.Error:
		console.Call("error", msg)
	case diag.Panic:
		console.Call("error", "[quill panic] "+msg)
	}
}
