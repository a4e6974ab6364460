package signing

import "fmt"

// Code discriminates processor failures so callers can map them to HTTP
// statuses without matching on message strings.
type Code string

const (
	CodeConflict Code = "CONFLICT"  // quote already finalized by a concurrent request
	CodeNotFound Code = "NOT_FOUND" // quote vanished between guard check and processing
	CodeInternal Code = "INTERNAL"  // storage or programming failure
)

// Error is the single typed error kind returned by the Processor.
type Error struct {
	Code Code
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("signing: %s: %v", e.Code, e.Err)
	}
	return fmt.Sprintf("signing: %s", e.Code)
}

func (e *Error) Unwrap() error { return e.Err }

func conflictErr(err error) *Error { return &Error{Code: CodeConflict, Err: err} }
func notFoundErr(err error) *Error { return &Error{Code: CodeNotFound, Err: err} }
func internalErr(err error) *Error { return &Error{Code: CodeInternal, Err: err} }
