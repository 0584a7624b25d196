// Package errs provides the unified error type used across dbjson.
//
// Every subsystem (schema, ownership, dataset, diff, sqlgen, sync, db, …)
// wraps its failures into *errs.Error before returning them to callers.
// Callers use the Is* predicates to branch on failure kind without
// importing subsystem-specific packages.
//
// Usage:
//
//	// In the extractor — wrap a driver error:
//	return errs.Wrap(errs.KindExtractFailed, "list tables", err)
//
//	// In the orchestrator — check error kind:
//	if errs.IsTruncatedInput(err) {
//	    return fmt.Errorf("re-dump without --limit: %w", err)
//	}
package errs

import (
	"errors"
	"fmt"
)

// Kind categorises a failure by its handling strategy, not its message.
// Callers branch on Kind, never on Message.
type Kind int

const (
	KindUnknown Kind = iota

	// KindExtractFailed is raised by the schema extractor on any driver
	// error encountered while reading catalog metadata.
	KindExtractFailed

	// KindCyclicOwnership is raised by the ownership-tree builder when no
	// acyclic choice of dominant compositions exists.
	KindCyclicOwnership

	// KindTruncatedInput is raised by the flattener or sync orchestrator
	// when a PartialMarker is present anywhere in the input.
	KindTruncatedInput

	// KindUnknownTable is raised when a nested or flat document references
	// a table absent from the schema.
	KindUnknownTable

	// KindMissingBase is raised by three-way Sync/Preview when the edited
	// file references a base snapshot that does not exist on disk.
	KindMissingBase

	// KindDriverError wraps any error surfaced by the db package —
	// connection failures, query failures, timeouts.
	KindDriverError

	// KindParseError is raised by the file loader on malformed JSON, and by
	// the sync orchestrator's UnresolvedRef integrity check.
	KindParseError

	// KindConflictDetected is reserved for the three-way conflict merger
	// described in the design notes; the diff engine itself is two-way.
	KindConflictDetected
)

func (k Kind) String() string {
	switch k {
	case KindExtractFailed:
		return "extract_failed"
	case KindCyclicOwnership:
		return "cyclic_ownership"
	case KindTruncatedInput:
		return "truncated_input"
	case KindUnknownTable:
		return "unknown_table"
	case KindMissingBase:
		return "missing_base"
	case KindDriverError:
		return "driver_error"
	case KindParseError:
		return "parse_error"
	case KindConflictDetected:
		return "conflict_detected"
	default:
		return "unknown"
	}
}

// Error is the single error type returned by every dbjson subsystem.
type Error struct {
	Kind    Kind
	Message string
	Cause   error // underlying error, preserved for logging/debugging
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

// Unwrap allows errors.Is / errors.As to traverse the cause chain.
func (e *Error) Unwrap() error {
	return e.Cause
}

// --- Constructors ---

// New creates an *Error with the given kind and message and no cause.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

// Newf creates an *Error with a formatted message and no cause.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates an *Error with the given kind, message, and underlying cause.
func Wrap(kind Kind, msg string, cause error) *Error {
	return &Error{Kind: kind, Message: msg, Cause: cause}
}

// Wrapf creates an *Error with a formatted message and underlying cause.
func Wrapf(kind Kind, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// --- Predicates ---

// IsExtractFailed reports whether err originated from the schema extractor.
func IsExtractFailed(err error) bool { return kindOf(err) == KindExtractFailed }

// IsCyclicOwnership reports whether err is an unresolvable dominance cycle.
func IsCyclicOwnership(err error) bool { return kindOf(err) == KindCyclicOwnership }

// IsTruncatedInput reports whether err is a refusal due to a PartialMarker.
func IsTruncatedInput(err error) bool { return kindOf(err) == KindTruncatedInput }

// IsUnknownTable reports whether err names a table absent from the schema.
func IsUnknownTable(err error) bool { return kindOf(err) == KindUnknownTable }

// IsMissingBase reports whether a three-way operation lacked a base file.
func IsMissingBase(err error) bool { return kindOf(err) == KindMissingBase }

// IsDriverError reports whether err originated from the db package.
func IsDriverError(err error) bool { return kindOf(err) == KindDriverError }

// IsParseError reports whether err is a malformed-input or integrity failure.
func IsParseError(err error) bool { return kindOf(err) == KindParseError }

// IsConflictDetected reports whether err carries an unresolved $conflict marker.
func IsConflictDetected(err error) bool { return kindOf(err) == KindConflictDetected }

// kindOf extracts the Kind from any error in the chain.
func kindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}
