// Package fault is the last line of defense at the host boundary.
//
// A panic that unwinds past the FFI boundary uncontrolled kills the host
// page. Install registers the process-wide interceptor once; Capture wraps
// each boundary operation, converting a panic into exactly one Record
// delivered through the diagnostic bridge plus a generic internal-fault
// error for the originating call.
//
// Install must precede any context construction. It is idempotent: the
// second and later calls are no-ops. The interceptor itself never fails;
// secondary failures while reporting are discarded rather than re-entering
// the fault path.
package fault
