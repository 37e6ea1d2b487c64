package apperrors

import (
	"errors"
	"fmt"
)

// ErrEmptyPool is returned when a draw is attempted on a pool with no items.
var ErrEmptyPool = errors.New("no items available in the selected sections")

// ErrSuperseded is returned to a spin that was replaced by a newer spin request
// before it could reveal its pick.
var ErrSuperseded = errors.New("spin superseded by a newer request")

// ErrMissingCredentials is returned when an upstream call is asked for without a
// server address or token.
var ErrMissingCredentials = errors.New("media server credentials required")

// ErrNotFound represents an error when a requested resource is not found.
type ErrNotFound struct {
	Resource string
	ID       interface{}
}

// Error implements the error interface.
func (e *ErrNotFound) Error() string {
	if e.ID != nil {
		return fmt.Sprintf("%s with ID %v not found", e.Resource, e.ID)
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

// Is allows for error checking with errors.Is().
func (e *ErrNotFound) Is(target error) bool {
	_, ok := target.(*ErrNotFound)
	return ok
}

// NewSpinNotFoundError creates a specific error for an unknown or expired spin.
func NewSpinNotFoundError(spinID string) *ErrNotFound {
	return &ErrNotFound{
		Resource: "spin",
		ID:       spinID,
	}
}

// ErrSectionFetch is a transport failure while fetching one library section.
// It is recovered locally by treating the section as empty.
type ErrSectionFetch struct {
	SectionID int
	Err       error
}

// Error implements the error interface.
func (e *ErrSectionFetch) Error() string {
	return fmt.Sprintf("fetch section %d: %v", e.SectionID, e.Err)
}

// Unwrap exposes the underlying transport error.
func (e *ErrSectionFetch) Unwrap() error {
	return e.Err
}

// Is allows for error checking with errors.Is().
func (e *ErrSectionFetch) Is(target error) bool {
	_, ok := target.(*ErrSectionFetch)
	return ok
}

// ErrMalformedRecord describes one upstream record that could not be normalized.
type ErrMalformedRecord struct {
	Index  int
	Reason string
}

// Error implements the error interface.
func (e *ErrMalformedRecord) Error() string {
	return fmt.Sprintf("malformed record at position %d: %s", e.Index, e.Reason)
}

// Is allows for error checking with errors.Is().
func (e *ErrMalformedRecord) Is(target error) bool {
	_, ok := target.(*ErrMalformedRecord)
	return ok
}

// ErrReconciliationMismatch is an internal-consistency fault: the belt slot
// measured at the viewport centre does not map to the index drawn at spin start.
type ErrReconciliationMismatch struct {
	SpinID        string
	PickIndex     int
	MeasuredIndex int
	PoolLen       int
}

// Error implements the error interface.
func (e *ErrReconciliationMismatch) Error() string {
	return fmt.Sprintf("spin %s landed on pool index %d but drew %d (pool of %d)", e.SpinID, e.MeasuredIndex, e.PickIndex, e.PoolLen)
}

// Is allows for error checking with errors.Is().
func (e *ErrReconciliationMismatch) Is(target error) bool {
	_, ok := target.(*ErrReconciliationMismatch)
	return ok
}

// ConnectivityReason classifies why the upstream connectivity check failed.
type ConnectivityReason string

const (
	ReasonUnreachable  ConnectivityReason = "unreachable"
	ReasonUnauthorized ConnectivityReason = "unauthorized"
	ReasonOther        ConnectivityReason = "other"
)

// ErrConnectivity is returned by the credential validation check.
type ErrConnectivity struct {
	Reason ConnectivityReason
	Err    error
}

// Error implements the error interface.
func (e *ErrConnectivity) Error() string {
	switch e.Reason {
	case ReasonUnreachable:
		return fmt.Sprintf("cannot connect to media server: %v", e.Err)
	case ReasonUnauthorized:
		return "invalid media server token"
	default:
		return fmt.Sprintf("error validating credentials: %v", e.Err)
	}
}

// Unwrap exposes the underlying error.
func (e *ErrConnectivity) Unwrap() error {
	return e.Err
}

// Is allows for error checking with errors.Is().
func (e *ErrConnectivity) Is(target error) bool {
	_, ok := target.(*ErrConnectivity)
	return ok
}

// ErrInvalidSettings is returned when a settings update carries a value that is
// not accepted, such as a section outside the allow-list.
type ErrInvalidSettings struct {
	Field  string
	Reason string
}

// Error implements the error interface.
func (e *ErrInvalidSettings) Error() string {
	return fmt.Sprintf("invalid setting %s: %s", e.Field, e.Reason)
}

// Is allows for error checking with errors.Is().
func (e *ErrInvalidSettings) Is(target error) bool {
	_, ok := target.(*ErrInvalidSettings)
	return ok
}
