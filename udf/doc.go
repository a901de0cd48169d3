// Package udf runs user-defined scalar functions compiled to WebAssembly.
//
// Hosts register a wasm module under a function name; the module must export
// a function of that name taking and returning only i64 and f64 values,
// which map onto the engine's int and float types. Modules run on wazero's
// interpreter so the registry works identically on native and js builds and
// stays on the caller's goroutine, preserving the boundary's single-threaded
// execution model.
package udf
