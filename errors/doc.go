// Package errors provides structured error types for refcell.
//
// Errors are categorized by Phase (which operation failed) and Kind (error category).
// The Error type carries the handle or resource name, the offending value and a
// cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseAdopt, errors.KindDuplicate).
//		Name("window").
//		Value(ptr).
//		Detail("resource already owned by cell %s", id).
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.NotFound(errors.PhaseScenario, "handle", "h4")
//	err := errors.DoubleRelease("window")
//
// Contract violations in package refc panic with *Error values, so a recovered
// panic can be inspected with errors.As like any returned error.
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
