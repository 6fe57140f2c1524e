package errors

import (
	"fmt"
	"strings"
)

// Phase indicates which operation produced the error
type Phase string

const (
	PhaseCreate   Phase = "create"   // handle creation
	PhaseClone    Phase = "clone"    // handle aliasing
	PhaseRelease  Phase = "release"  // handle destruction
	PhaseAccess   Phase = "access"   // raw value access
	PhaseAdopt    Phase = "adopt"    // registry adoption
	PhaseTable    Phase = "table"    // resource table operations
	PhaseScenario Phase = "scenario" // scenario parsing and replay
	PhaseConfig   Phase = "config"   // configuration loading
	PhaseWasm     Phase = "wasm"     // wazero-backed resources
)

// Kind categorizes the error
type Kind string

const (
	KindNilTeardown     Kind = "nil_teardown"
	KindDoubleRelease   Kind = "double_release"
	KindUseAfterRelease Kind = "use_after_release"
	KindDuplicate       Kind = "duplicate"
	KindNotFound        Kind = "not_found"
	KindClosed          Kind = "closed"
	KindInvalidInput    Kind = "invalid_input"
	KindParse           Kind = "parse"
	KindExpectation     Kind = "expectation"
	KindInstantiation   Kind = "instantiation"
	KindInvalidResource Kind = "invalid_resource"
)

// Error is the structured error type used throughout refcell
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	Name   string
	Detail string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Name != "" {
		b.WriteString(" (")
		b.WriteString(e.Name)
		b.WriteByte(')')
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Name sets the handle or resource name
func (b *Builder) Name(name string) *Builder {
	b.err.Name = name
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// NilTeardown reports a handle created without a teardown callback
func NilTeardown(name string) *Error {
	return &Error{
		Phase:  PhaseCreate,
		Kind:   KindNilTeardown,
		Name:   name,
		Detail: "teardown callback must not be nil",
	}
}

// DoubleRelease reports a handle value released more than once
func DoubleRelease(name string) *Error {
	return &Error{
		Phase:  PhaseRelease,
		Kind:   KindDoubleRelease,
		Name:   name,
		Detail: "handle already released",
	}
}

// UseAfterRelease reports an operation on a handle value that was already released
func UseAfterRelease(phase Phase, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUseAfterRelease,
		Name:   name,
		Detail: "handle used after release",
	}
}

// Duplicate reports a raw resource that already has a live owner
func Duplicate(phase Phase, name string, value any) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindDuplicate,
		Name:   name,
		Value:  value,
		Detail: fmt.Sprintf("resource %v already has a live handle; alias it with Clone", value),
	}
}

// NotFound creates a not found error
func NotFound(phase Phase, what, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Name:   name,
		Detail: fmt.Sprintf("%s %q not found", what, name),
	}
}

// Closed reports an operation on a closed table or scope
func Closed(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindClosed,
		Detail: what + " is closed",
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// ParseFailed creates a parse error
func ParseFailed(phase Phase, what string, cause error) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindParse,
		Detail: "failed to parse " + what,
		Cause:  cause,
	}
}

// Expectation reports an observed value that differs from the expected one
func Expectation(name, what string, want, got any) *Error {
	return &Error{
		Phase:  PhaseScenario,
		Kind:   KindExpectation,
		Name:   name,
		Value:  got,
		Detail: fmt.Sprintf("%s: want %v, got %v", what, want, got),
	}
}

// Instantiation wraps a failure to derive a new resource from an existing one
func Instantiation(phase Phase, name string, cause error) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInstantiation,
		Name:   name,
		Detail: "failed to create resource",
		Cause:  cause,
	}
}

// InvalidResource reports a parent handle that is released or holds no resource
func InvalidResource(phase Phase, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidResource,
		Name:   name,
		Detail: "parent handle is released or holds no resource",
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}
