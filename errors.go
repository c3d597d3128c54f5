package ptb

import (
	"errors"
	"fmt"
)

// Sentinel errors for common failure conditions.
var (
	// ErrEmptyScript indicates a compile was requested for an empty command list.
	ErrEmptyScript = errors.New("ptb: command list is empty")

	// ErrMissingSender indicates a script was executed without a sender address.
	ErrMissingSender = errors.New("ptb: no sender address available")

	// ErrNotFound indicates a remote lookup resolved to nothing.
	ErrNotFound = errors.New("ptb: not found")
)

// DanglingReferenceError indicates a command references a result that does
// not exist at its position: a forward reference, a reference to a command
// that produces no result, or a result slot out of range.
type DanglingReferenceError struct {
	CommandIndex int // the consuming command
	Target       int // the referenced command
	Sub          int // the referenced result slot, -1 for the whole result
	Reason       string
}

func (e *DanglingReferenceError) Error() string {
	if e.Sub >= 0 {
		return fmt.Sprintf("ptb: command %d: dangling reference to result(%d, %d): %s",
			e.CommandIndex, e.Target, e.Sub, e.Reason)
	}
	return fmt.Sprintf("ptb: command %d: dangling reference to result(%d): %s",
		e.CommandIndex, e.Target, e.Reason)
}

// EncodingError indicates a literal could not be encoded as its declared type.
type EncodingError struct {
	Value string
	Type  string
	Err   error
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("ptb: cannot encode %q as %s: %v", e.Value, e.Type, e.Err)
}

func (e *EncodingError) Unwrap() error {
	return e.Err
}

// InvalidAddressError indicates a value does not parse as a canonical
// 32-byte hex address.
type InvalidAddressError struct {
	Value string
}

func (e *InvalidAddressError) Error() string {
	return fmt.Sprintf("ptb: invalid address %q", e.Value)
}

// ObjectNotFoundError indicates an object id does not resolve to a live object.
type ObjectNotFoundError struct {
	ID string
}

func (e *ObjectNotFoundError) Error() string {
	return fmt.Sprintf("ptb: object %s not found on chain", e.ID)
}

func (e *ObjectNotFoundError) Unwrap() error {
	return ErrNotFound
}

// TypeMismatchError indicates a live object's type is incompatible with the
// declared parameter type. RepairAttempted is true when a same-shape target
// was looked up in the live object's package and none was found.
type TypeMismatchError struct {
	CommandIndex    int
	Declared        string
	Live            string
	RepairAttempted bool
}

func (e *TypeMismatchError) Error() string {
	if e.RepairAttempted {
		return fmt.Sprintf("ptb: command %d: declared type %s does not match live type %s (no compatible target found for repair)",
			e.CommandIndex, e.Declared, e.Live)
	}
	return fmt.Sprintf("ptb: command %d: declared type %s does not match live type %s",
		e.CommandIndex, e.Declared, e.Live)
}

// NetworkFailureError indicates the chain was unreachable or returned a
// malformed response.
type NetworkFailureError struct {
	Op  string
	Err error
}

func (e *NetworkFailureError) Error() string {
	return fmt.Sprintf("ptb: %s: network failure: %v", e.Op, e.Err)
}

func (e *NetworkFailureError) Unwrap() error {
	return e.Err
}

// OwnershipDeniedError indicates an object in the script is owned by an
// address other than the active sender. Owner is extracted from the chain's
// rejection message when possible.
type OwnershipDeniedError struct {
	Owner string
	Raw   string
}

func (e *OwnershipDeniedError) Error() string {
	if e.Owner != "" {
		return fmt.Sprintf("ptb: object is owned by %s, not by the active sender", e.Owner)
	}
	return fmt.Sprintf("ptb: ownership denied: %s", e.Raw)
}

// SubmissionRejectedError indicates the signer declined or the chain
// rejected a submitted script.
type SubmissionRejectedError struct {
	Raw string
	Err error
}

func (e *SubmissionRejectedError) Error() string {
	if e.Raw != "" {
		return fmt.Sprintf("ptb: submission rejected: %s", e.Raw)
	}
	return fmt.Sprintf("ptb: submission rejected: %v", e.Err)
}

func (e *SubmissionRejectedError) Unwrap() error {
	return e.Err
}
