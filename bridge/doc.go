// Package bridge is the boundary layer hosts talk to. A Context owns one
// query engine, one source registry and one UDF registry behind a small
// operation surface: register sources, run queries, dispose.
//
// Every operation runs under the panic interceptor, so a fault inside the
// engine surfaces as a generic internal error while the detail travels
// through the diagnostic bridge exactly once. Operations on a disposed
// context fail with a disposed error; nothing is ever reached through a
// dead handle.
//
// The bridge assumes the host's single-threaded cooperative model: one
// operation at a time, on one goroutine. The internal mutex exists to keep
// misuse from corrupting state, not to make concurrent use fast.
package bridge
