package storage

import (
	"errors"
	"fmt"
)

// Code is the shared status domain every storage operation reports into.
type Code int

const (
	// CodeOK is the success sentinel, only ever returned by CodeOf(nil).
	CodeOK Code = iota
	// CodeUnsupported is returned when a backend lacks the capability.
	CodeUnsupported
	// CodeInvalidArgument covers length mismatches, malformed configuration
	// and dimension mismatches.
	CodeInvalidArgument
	// CodeCapacityExceeded is returned by insertions into a full table when
	// no eviction path was requested.
	CodeCapacityExceeded
	// CodePersistence is returned when save or load can't access or parse state.
	CodePersistence
	// CodeNotFound is only used where absence is an error by contract.
	CodeNotFound
	// CodeNotInitialized is returned by operations called before Init.
	CodeNotInitialized
	// CodeInternal is reported for errors not raised through this package.
	CodeInternal
)

var codeNames = map[Code]string{
	CodeOK:               "ok",
	CodeUnsupported:      "unsupported operation",
	CodeInvalidArgument:  "invalid argument",
	CodeCapacityExceeded: "capacity exceeded",
	CodePersistence:      "persistence failure",
	CodeNotFound:         "not found",
	CodeNotInitialized:   "not initialized",
	CodeInternal:         "internal error",
}

func (c Code) String() string {
	if name, found := codeNames[c]; found {
		return name
	}
	return fmt.Sprintf("code(%d)", int(c))
}

// Error is the failure value returned by every storage operation.
type Error struct {
	Code Code
	// Op is the operation that failed, OpUnknown when raised outside of one.
	Op  Op
	Err error
}

func (e *Error) Error() string {
	msg := "storage"
	if e.Op != OpUnknown {
		msg += ": " + e.Op.String()
	}
	msg += ": " + e.Code.String()
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error with the same code, so callers can test against
// the sentinels below with errors.Is.
func (e *Error) Is(target error) bool {
	var other *Error
	if errors.As(target, &other) && other.Err == nil && other.Op == OpUnknown {
		return other.Code == e.Code
	}
	return false
}

var (
	ErrUnsupportedOp    = &Error{Code: CodeUnsupported}
	ErrInvalidArgument  = &Error{Code: CodeInvalidArgument}
	ErrCapacityExceeded = &Error{Code: CodeCapacityExceeded}
	ErrPersistence      = &Error{Code: CodePersistence}
	ErrNotFound         = &Error{Code: CodeNotFound}
	ErrNotInitialized   = &Error{Code: CodeNotInitialized}
)

// Errorf builds an *Error for op with a formatted cause.
func Errorf(code Code, op Op, format string, args ...interface{}) error {
	return &Error{Code: code, Op: op, Err: fmt.Errorf(format, args...)}
}

// Wrap attaches a code and an operation to err, nil stays nil.
func Wrap(code Code, op Op, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Op: op, Err: err}
}

// ErrUnsupported returns the failure raised by a capability the bound
// backend does not implement.
func ErrUnsupported(op Op) error {
	return &Error{Code: CodeUnsupported, Op: op}
}

// CodeOf maps err to its status code. nil is CodeOK and errors that
// don't wrap an *Error are reported as CodeInternal.
func CodeOf(err error) Code {
	if err == nil {
		return CodeOK
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}

// IsUnsupported returns true if err signals a missing capability.
func IsUnsupported(err error) bool {
	return CodeOf(err) == CodeUnsupported
}
