package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind tells whether a failure happened while establishing or using the
// session (Connection) or while running a single statement (Query).
type Kind int

const (
	Connection Kind = iota + 1
	Query
)

func (k Kind) String() string {
	switch k {
	case Connection:
		return "connection error"
	case Query:
		return "query error"
	default:
		return "error"
	}
}

// Error is a driver failure tagged with its kind. Message is the driver's
// own text, untouched.
type Error struct {
	Kind    Kind
	Code    string // SQLSTATE, empty when the driver has none
	Vendor  int    // driver specific error number, 0 when absent
	Message string
	Err     error
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: %s (SQLSTATE %s)", e.Kind, e.Message, e.Code)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewConnection wraps err as a connection failure.
func NewConnection(err error) *Error {
	return wrap(Connection, err)
}

// NewQuery wraps err as a statement failure.
func NewQuery(err error) *Error {
	return wrap(Query, err)
}

func wrap(kind Kind, err error) *Error {
	e := &Error{Kind: kind, Err: err}
	if err != nil {
		e.Message = err.Error()
	}
	return e
}

// WithCode sets the SQLSTATE code
func (e *Error) WithCode(code string) *Error {
	e.Code = code
	return e
}

// WithVendor sets the driver specific error number
func (e *Error) WithVendor(n int) *Error {
	e.Vendor = n
	return e
}

// Class returns the two character SQLSTATE class, or "" without a code.
func (e *Error) Class() string {
	if len(e.Code) < 2 {
		return ""
	}
	return e.Code[:2]
}

// As returns the *Error in err's chain, if any.
func As(err error) (*Error, bool) {
	var e *Error
	if stderrors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// IsConnection reports whether err is a connection failure.
func IsConnection(err error) bool {
	e, ok := As(err)
	return ok && e.Kind == Connection
}

// IsQuery reports whether err is a statement failure.
func IsQuery(err error) bool {
	e, ok := As(err)
	return ok && e.Kind == Query
}

// Message returns the driver text for err, falling back to err.Error().
func Message(err error) string {
	if e, ok := As(err); ok {
		return e.Message
	}
	return err.Error()
}
