// Package diag routes internal log and fault text to the host's logging sink.
//
// The bridge is one-way and best-effort: Emit attempts delivery and swallows
// any secondary failure, including a panicking sink. Nothing in this package
// may fail an operation on the query context.
//
// The default sink forwards to a zap logger, which is a no-op unless
// SetLogger is called. Host entrypoints replace the sink with their own
// (the js/wasm build installs a console-backed sink at startup).
package diag
