//go:build js && wasm

// Command quill-wasm is the WebAssembly entrypoint for browser and Node.js
// hosts.
//
// It publishes a global Quill object:
//
//	Quill.create(options?)                      → Promise<handle>
//	handle.registerSource(name, locator, opts?) → Promise<void>
//	handle.registerUdf(name, bytes)             → Promise<void>
//	handle.query(sql)                           → Promise<sequence>
//	handle.state()                              → string
//	handle.dispose()                            → void
//
// A sequence streams rows batch by batch:
//
//	sequence.schema       → [{name, type}]
//	sequence.next()       → Promise<rowObject[] | null>
//	sequence.restart()    → void
//	sequence.format(kind) → Promise<string | Uint8Array>  (table, json, cbor, ipc)
//	sequence.close()      → void
//
// Build:
//
//	GOOS=js GOARCH=wasm go build -o quill.wasm ./cmd/quill-wasm/
//
// Usage in a browser:
//
//	<script src="wasm_exec.js"></script>
//	<script type="module">
//	  const go = new Go();
//	  const { instance } = await WebAssembly.instantiateStreaming(fetch("quill.wasm"), go.importObject);
//	  go.run(instance);
//	  const ctx = await Quill.create({ mode: "memory" });
//	  await ctx.registerSource("nums", "mem://[1,2,3]");
//	  const seq = await ctx.query("select * from nums");
//	  console.log(JSON.parse(await seq.format("json")));
//	  ctx.dispose();
//	</script>
package main

import (
	"github.com/quillql/quill-wasm/diag"
	"github.com/quillql/quill-wasm/fault"
	"github.com/quillql/quill-wasm/wasmjs"
)

func main() {
	diag.SetSink(wasmjs.ConsoleSink{})
	fault.Install()
	wasmjs.Install()
	diag.Emit(diag.Info, "quill wasm ready")

	// Block forever; the JS event loop owns execution from here.
	select {}
}
