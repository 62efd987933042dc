// Package simerrors defines the typed error kinds produced by the routing
// simulation pipeline. It follows the constructor-per-variant pattern used
// throughout lnd's lnwallet package (one exported function per error
// condition, returning a concrete type rather than an opaque string).
package simerrors

import (
	"fmt"

	goerrors "github.com/go-errors/errors"
)

// Kind identifies which of the documented fatal failure modes an Error
// represents.
type Kind int

const (
	// KindInputSchema is returned when a required column is missing or of
	// the wrong type during edge preprocessing.
	KindInputSchema Kind = iota

	// KindStateDesync is returned when forward_update finds live_cap less
	// than the amount being routed, indicating the graph and capacity
	// state have diverged.
	KindStateDesync

	// KindLoopDetected is returned when a path's interior contains the
	// stripped target.
	KindLoopDetected

	// KindInvalidCrossover is returned when a genetic crossover child
	// fails path validation.
	KindInvalidCrossover

	// KindWorker is returned when a counterfactual sweep worker fails.
	KindWorker
)

func (k Kind) String() string {
	switch k {
	case KindInputSchema:
		return "input_schema"
	case KindStateDesync:
		return "state_desync"
	case KindLoopDetected:
		return "loop_detected"
	case KindInvalidCrossover:
		return "invalid_crossover"
	case KindWorker:
		return "worker"
	default:
		return "unknown"
	}
}

// Error is the concrete type returned for every fatal condition the
// simulation pipeline can hit. NoPath is deliberately not represented here:
// per spec it is routine and is recorded as a PathResult with a nil cost,
// never returned as an error.
type Error struct {
	Kind   Kind
	Detail string
	Err    error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Detail, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
}

// Unwrap allows errors.Is/errors.As to reach the wrapped cause, if any.
func (e *Error) Unwrap() error {
	return e.Err
}

// Stack returns the stack trace captured at the point Err was wrapped, or
// the empty string if Err is nil or wasn't wrapped through go-errors/errors
// (e.g. constructors that set Detail only, with no underlying cause).
func (e *Error) Stack() string {
	if ge, ok := e.Err.(*goerrors.Error); ok {
		return string(ge.Stack())
	}
	return ""
}

// InputSchema returns an error indicating a required column was missing or
// carried a value of the wrong type.
func InputSchema(column, reason string) *Error {
	return &Error{
		Kind:   KindInputSchema,
		Detail: fmt.Sprintf("column %q: %s", column, reason),
	}
}

// StateDesync returns an error indicating that forward_update observed
// live_cap below the amount being routed for the (src, trg) edge. This
// should never happen because the search graph is maintained to only
// contain edges with live_cap >= amount; hitting it means a bug in the
// depletion bookkeeping.
func StateDesync(src, trg string, liveCap, amount int64) *Error {
	return &Error{
		Kind: KindStateDesync,
		Detail: fmt.Sprintf(
			"edge %s->%s: live_cap %d < amount %d",
			src, trg, liveCap, amount,
		),
	}
}

// LoopDetected returns an error indicating that a transaction's target
// appeared as an interior vertex of its own path.
func LoopDetected(target string, path []string) *Error {
	return &Error{
		Kind:   KindLoopDetected,
		Detail: fmt.Sprintf("target %s interior of path %v", target, path),
	}
}

// InvalidCrossover returns an error indicating a genetic crossover child
// failed path validation (duplicate node, or a non-edge between consecutive
// hops).
func InvalidCrossover(path []string, reason string) *Error {
	return &Error{
		Kind:   KindInvalidCrossover,
		Detail: fmt.Sprintf("child %v: %s", path, reason),
	}
}

// Worker returns an error wrapping a failure surfaced from a counterfactual
// sweep worker goroutine. The cause is wrapped through go-errors/errors so
// Stack() can point back at the goroutine that produced it, which a bare
// wrapped error loses once it crosses the errgroup boundary.
func Worker(router string, cause error) *Error {
	return &Error{
		Kind:   KindWorker,
		Detail: fmt.Sprintf("router %s", router),
		Err:    goerrors.Wrap(cause, 1),
	}
}
