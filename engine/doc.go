// Package engine plans and executes queries against Arrow record batches.
//
// The engine is deliberately single-threaded: one Session drives one pull
// pipeline (scan → filter/project → sort → limit) on the calling goroutine,
// yielding one record batch per pull. Nothing here spawns parallelism, so
// the engine runs unchanged under GOOS=js where native threads do not exist.
//
// Planning resolves the FROM table through a Catalog and type-checks every
// expression against the table schema; all resolution failures are plan
// errors, distinct from the parse errors produced by the sql package and
// from execution errors raised while batches flow.
//
// Memory is accounted through a limiting arrow allocator; a query that
// allocates past the session's budget fails with an execution error instead
// of exhausting the host's heap.
package engine
