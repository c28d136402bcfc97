package encio

import (
	"errors"
	"fmt"
	"runtime"
)

// Error handling in ctp is designed to separate problems with a program's values and configuration
// from problems with the io.Writer or io.Reader carrying a token stream.
// All error cases are grouped into two wrappers; Error and IOError.
// Error errors mean a value, type or configuration cannot be encoded the way it was asked to be,
// and nothing was appended to the emission channel.
// IOError errors mean a sink, wire stream or reader misbehaved, and the caller should stop using it.
//
// Errors can be checked with
//
//	if errors.Is(err, encio.ErrUnsupportedValueKind) {
//		// a value in the call matched no encoding rule
//	}
//
// Panics are only used for clear misuse of the library; programmer error.
var (
	// ErrUnsupportedValueKind is returned when a value's type matches none of the dispatcher's rules
	// and has no registered formatter. It is found before any token of the call is appended.
	ErrUnsupportedValueKind = errors.New("unsupported value kind")

	// ErrBadType is returned when a type or value is inappropriate for the operation;
	// i.e. arguments forwarded to something that isn't a function.
	ErrBadType = errors.New("bad type")

	// ErrBadConfig is returned when the configuration or the hosting environment
	// can't satisfy the minimum requirements for emitting tokens.
	ErrBadConfig = errors.New("bad config")

	// ErrTooDeep is returned when a value nests deeper than the configured bracket depth,
	// typically because of a cyclic pointer graph.
	ErrTooDeep = errors.New("too deep")

	// ErrMalformed is returned when read data is impossible to decode.
	ErrMalformed = errors.New("malformed")

	// ErrNilPointer is returned if a pointer that should not be nil is nil.
	ErrNilPointer = errors.New("nil pointer")
)

// NewError returns an Error wrapping err with the given message.
// The calling function's name is recorded, skipping skip functions.
func NewError(err error, message string, skip int) error {
	if err == nil {
		err = errors.New("unknown error")
	}

	return Error{
		Err:     err,
		Message: message,
		Caller:  GetCaller(skip + 1),
	}
}

// Error is returned when a value, type or configuration can't be encoded.
type Error struct {
	Err     error
	Message string
	Caller  string
}

// Error implements error.
func (e Error) Error() (str string) {
	if e.Caller != "" {
		str = e.Caller + ": "
	}

	str += e.Err.Error()

	if e.Message != "" {
		str += " (" + e.Message + ")"
	}

	return str
}

// Unwrap implements errors's Unwrap().
func (e Error) Unwrap() error {
	return e.Err
}

// NewIOError returns an IOError wrapping err.
// rw is the io.Reader, io.Writer or sink that failed; its type is included in the message.
func NewIOError(err error, rw any, message string, skip int) error {
	if err == nil {
		return NewError(errors.New("nil error"), "trying to create new IOError", skip+1)
	}

	if rw != nil {
		if message != "" {
			message = fmt.Sprintf("%T: %v", rw, message)
		} else {
			message = fmt.Sprintf("%T", rw)
		}
	}

	return IOError{
		Err:     err,
		Message: message,
		Caller:  GetCaller(skip + 1),
	}
}

// IOError is returned when io errors occur, or when read data is malformed.
type IOError struct {
	Err     error
	Message string
	Caller  string
}

// Error implements error.
func (e IOError) Error() string {
	str := e.Err.Error()
	if e.Message != "" {
		str = e.Message + ": " + str
	}
	if e.Caller != "" {
		str = e.Caller + ": " + str
	}
	return str
}

// Unwrap implements errors's Unwrap().
func (e IOError) Unwrap() error {
	return e.Err
}

// GetCaller returns the name of the calling function, skipping skip functions.
// i.e. 0 returns the calling function, 1 the function calling that etc...
func GetCaller(skip int) string {
	pcs := make([]uintptr, 1)
	n := runtime.Callers(2+skip, pcs)
	if n != 1 {
		return "Unknown Function"
	}

	frames := runtime.CallersFrames(pcs)
	frame, _ := frames.Next()
	return frame.Function
}
