package domain

import (
	"errors"
	"fmt"
)

// Kind classifies an operation failure. DatabaseBusy is the only kind the
// dispatch layer may retry; everything else surfaces immediately.
type Kind int

const (
	KindInvalidInput Kind = iota
	KindInvalidRefFormat
	KindPathTraversal
	KindNotFound
	KindIdentityRequired
	KindDatabaseBusy
	KindStorageFailure
	KindNotInitialized
)

func (k Kind) String() string {
	switch k {
	case KindInvalidInput:
		return "invalid input"
	case KindInvalidRefFormat:
		return "invalid ref format"
	case KindPathTraversal:
		return "path traversal"
	case KindNotFound:
		return "not found"
	case KindIdentityRequired:
		return "identity required"
	case KindDatabaseBusy:
		return "database busy"
	case KindStorageFailure:
		return "storage failure"
	case KindNotInitialized:
		return "not initialized"
	}
	return "unknown"
}

// Error is the typed failure returned by every core operation.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Msg != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	case e.Msg != "":
		return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return e.Kind.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Is lets errors.Is match two *Errors by kind.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return t.Kind == e.Kind
	}
	return false
}

// Invalidf builds an InvalidInput error.
func Invalidf(format string, args ...any) error {
	return &Error{Kind: KindInvalidInput, Msg: fmt.Sprintf(format, args...)}
}

// NotFoundf builds a NotFound error.
func NotFoundf(format string, args ...any) error {
	return &Error{Kind: KindNotFound, Msg: fmt.Sprintf(format, args...)}
}

// RefFormatErr reports a reference string that does not parse.
func RefFormatErr(s string) error {
	return &Error{Kind: KindInvalidRefFormat, Msg: fmt.Sprintf("%q: expected where:what:ref", s)}
}

// TraversalErr reports an artifact path escaping the project root.
func TraversalErr(msg string) error {
	return &Error{Kind: KindPathTraversal, Msg: msg}
}

// IdentityRequiredErr is returned by writes with no resolved identity.
func IdentityRequiredErr() error {
	return &Error{Kind: KindIdentityRequired, Msg: "configure --agent, set BB_AGENT_ID, or call bb_identify"}
}

// BusyErr wraps a lock-wait timeout from the store.
func BusyErr(err error) error {
	return &Error{Kind: KindDatabaseBusy, Msg: "database busy, retry", Err: err}
}

// StorageErr wraps an unexpected lower-level storage failure.
func StorageErr(context string, err error) error {
	return &Error{Kind: KindStorageFailure, Msg: context, Err: err}
}

// NotInitializedErr reports a missing .bb directory.
func NotInitializedErr() error {
	return &Error{Kind: KindNotInitialized, Msg: "no blackboard found, run 'bb init' first"}
}

// KindOf extracts the Kind from err, or StorageFailure for untyped errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindStorageFailure
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, k Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == k
}

// IsBusy reports whether err is the transient lock-contention failure.
func IsBusy(err error) bool { return IsKind(err, KindDatabaseBusy) }

// IsNotFound reports whether err is a NotFound failure.
func IsNotFound(err error) bool { return IsKind(err, KindNotFound) }
