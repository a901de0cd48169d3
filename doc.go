// Package quillwasm exposes a columnar query engine to JavaScript hosts
// across the WebAssembly boundary.
//
// The library is organized into several packages with distinct
// responsibilities:
//
//	quillwasm/           Root package with the core TableProvider contract
//	├── bridge/          Context handle: lifecycle, source registry, query entry
//	├── engine/          Single-threaded columnar planner/executor over Arrow
//	├── sql/             Query text to AST
//	├── source/          Locator resolution (mem, http, file) and formats
//	├── result/          Lazy result sequences and transfer formats
//	├── udf/             WASM scalar user-defined functions (wazero)
//	├── errors/          Typed error taxonomy crossing the boundary
//	├── diag/            Diagnostic bridge to the host logging sink
//	├── fault/           Process-wide panic interceptor
//	├── wasmjs/          syscall/js glue (GOOS=js only)
//	└── cmd/quill-wasm/  Browser/Node entrypoint (GOOS=js only)
//
// # Quick Start
//
//	fault.Install()
//	qctx, err := bridge.New(bridge.Options{Mode: bridge.ModeMemory})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer qctx.Dispose()
//
//	if err := qctx.RegisterSource(ctx, "nums", "mem://[1,2,3]", nil); err != nil {
//	    log.Fatal(err)
//	}
//
//	set, err := qctx.Query(ctx, "select * from nums")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer set.Close()
//
// # Concurrency Model
//
// Everything runs on one logical thread of control. No operation spawns
// native parallelism; calls that would block are surfaced to the host as
// promise-resolved suspension points by the wasmjs layer. A Context is not
// safe for concurrent use from two goroutines; operations against one handle
// observe a total order.
//
// # Failure Model
//
// Per-call failures are typed (see the errors package) and never collapsed
// into strings. A panic anywhere under a boundary operation is intercepted
// by the fault package, reported once through diag, and surfaced to the
// failing call as a generic internal fault instead of tearing down the host
// runtime.
package quillwasm
