// Package errors provides the typed error taxonomy crossing the host boundary.
//
// Every failure a host caller can observe carries a Kind. Recoverable,
// per-call failures use KindInit, KindSource, KindParse, KindPlan,
// KindExecution, KindIO or KindDisposed. KindInternal is the generic signal a
// captured panic surfaces as; the panic itself is reported out of band through
// the diag package.
//
// Use the Builder for structured construction:
//
//	err := errors.New(errors.KindPlan).
//		Op("query").
//		Path("nums", "score").
//		Detail("column %q not found", "score").
//		Build()
//
// Or the convenience constructors:
//
//	err := errors.Parse("query", "unexpected token %q at offset %d", tok, off)
//	err := errors.Disposed("register-source")
//
// All errors implement the standard error interface and support errors.Is/As.
// KindOf classifies any error for the boundary layer; wrapped causes are
// traversed, unknown errors classify as KindInternal.
package errors
