// Package refc implements shared ownership of externally freed resources.
//
// Resources such as SDL windows, GPU textures or wazero runtimes are released by
// calling a free function against the raw value, not by a method on an owning Go
// type. A Handle pairs the raw value with that function and counts its aliases:
//
//	win := refc.Create(createWindow(640, 480), destroyWindow)
//	alias := win.Clone()  // count 2
//	win.Release()         // count 1
//	alias.Release()       // count 0, destroyWindow(raw) runs here
//
// # Cells and Handles
//
// Every Create allocates one private cell holding the raw value, the teardown
// callback and the live count. Handles point at the cell, never at the resource
// directly. Clone is the only way to obtain another owner of an existing cell;
// there is no constructor that wraps an already-owned raw value into a second
// cell. Registry turns an accidental second Create for the same raw value into
// an error.
//
// The teardown runs exactly once, synchronously inside the Release that drops the
// count to zero, and receives the original raw value. A zero raw value (a failed
// allocation) is accepted: Valid reports false and the teardown still runs once
// with the zero value, so teardown functions must tolerate it.
//
// # Contract Violations
//
// Releasing the same Handle value twice, or using a released Handle, panics with
// an *errors.Error of kind double_release or use_after_release. These are
// programming errors and are not reported through return values.
//
// # Concurrency
//
// The live count is a plain integer. All Clone and Release calls on handles that
// alias one cell must happen on a single goroutine, matching a poll, dispatch and
// render loop. Handles on different cells are independent.
//
// # Leak Reporting
//
// WithLeakCheck attaches a runtime cleanup to every Handle of a cell. A Handle
// that becomes unreachable without Release is reported on the logger. The GC never
// tears the resource down.
package refc
