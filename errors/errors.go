package errors

import (
	"fmt"
	"reflect"

	"github.com/pkg/errors"
)

var (
	// ErrUnauthorized is returned when the caller lacks the required
	// role: wrong attestor, wrong proposer, wrong recorder.
	ErrUnauthorized = Register(2, "unauthorized")

	// ErrNotFound is returned when a referenced entry or proposal id
	// does not exist.
	ErrNotFound = Register(3, "not found")

	// ErrNotInitialized is returned when an operation requiring a prior
	// one-time setup was invoked before it.
	ErrNotInitialized = Register(4, "not initialized")

	// ErrAlreadyInitialized is returned when a one-time setup is
	// attempted a second time.
	ErrAlreadyInitialized = Register(5, "already initialized")

	// ErrInvalidIdentity is returned when a rotation or initialization
	// would create a disallowed self-reference.
	ErrInvalidIdentity = Register(6, "invalid identity")

	// ErrInvalidAmount stands for an amount failing a domain
	// constraint, usually a non-positive value.
	ErrInvalidAmount = Register(7, "invalid amount")

	// ErrInvalidCurrency is returned when a currency code is not in
	// the configured allow-list.
	ErrInvalidCurrency = Register(8, "invalid currency")

	// ErrAlreadyRecorded is returned when an (attestor, source id)
	// pair was used before.
	ErrAlreadyRecorded = Register(9, "already recorded")

	// ErrAlreadyVoted is returned on a second vote from the same
	// principal on the same proposal.
	ErrAlreadyVoted = Register(10, "already voted")

	// ErrSupplyExceeded is returned when a recording would breach the
	// configured supply ceiling.
	ErrSupplyExceeded = Register(11, "supply ceiling exceeded")

	// ErrLocked is returned when a time-gated action is attempted
	// before its unlock tick.
	ErrLocked = Register(12, "revenue locked")

	// ErrInsufficientBalance is returned when a transfer would
	// overdraw an account.
	ErrInsufficientBalance = Register(13, "insufficient balance")

	// ErrNotApproved is returned when a gated action is attempted
	// without satisfying its approval predicate.
	ErrNotApproved = Register(14, "not approved")

	// ErrInput stands for general input problems indication.
	ErrInput = Register(15, "invalid input")

	// ErrEmpty is returned when a value fails a not-empty assertion.
	ErrEmpty = Register(16, "value is empty")

	// ErrState is returned when an object is in an invalid state.
	ErrState = Register(17, "invalid state")

	// ErrDatabase is returned when the underlying storage fails or
	// returns malformed data.
	ErrDatabase = Register(18, "database")

	// ErrHuman is returned when the application reaches a code path
	// which should not ever be reached if the code was written as
	// expected.
	ErrHuman = Register(19, "coding error")

	// ErrPanic is only set when we recover from a panic, so we know to
	// redact potentially sensitive system info.
	ErrPanic = Register(111222, "panic")
)

// Register returns an error instance that should be used as the base
// for creating error instances during runtime.
//
// The ledger failure taxonomy is declared in this package. This
// function ensures that no error code is used twice. Attempt to reuse
// an error code results in panic.
//
// Use this function only during a program startup phase.
func Register(code uint32, description string) *Error {
	if e, ok := usedCodes[code]; ok {
		panic(fmt.Sprintf("error with code %d is already registered: %q", code, e.desc))
	}
	err := &Error{
		code: code,
		desc: description,
	}
	usedCodes[err.code] = err
	return err
}

// usedCodes is keeping track of used codes to ensure their uniqueness.
// No two error instances should share the same error code.
var usedCodes = map[uint32]*Error{
	1: nil, // Error code 1 is restricted for non-taxonomy errors and must not be used.
}

// Error represents a root error.
//
// This package is using root errors to categorize issues. Each
// instance created during the runtime should wrap one of the declared
// root errors. This allows error tests and returning all errors to
// the client in a safe manner.
type Error struct {
	code uint32
	desc string
}

func (e Error) Error() string {
	return e.desc
}

// Code returns the stable numeric code of this failure class.
func (e Error) Code() uint32 {
	return e.code
}

// New returns a new error. Returned instance is having the root cause
// set to this error. Below two lines are equal
//
//	e.New("my description")
//	Wrap(e, "my description")
func (e *Error) New(description string) error {
	return Wrap(e, description)
}

// Newf is basically New with formatting capabilities.
func (e *Error) Newf(description string, args ...interface{}) error {
	return e.New(fmt.Sprintf(description, args...))
}

// Is checks if given error instance is of a given kind/type. This
// involves unwrapping given error using the Cause method if available.
func (kind *Error) Is(err error) bool {
	// Reflect usage is necessary to correctly compare with
	// a nil implementation of an error.
	if kind == nil {
		if err == nil {
			return true
		}
		return reflect.ValueOf(err).IsNil()
	}

	for {
		if err == kind {
			return true
		}

		if c, ok := err.(causer); ok {
			err = c.Cause()
		} else {
			return false
		}
	}
}

// Code returns the taxonomy code of any error. Errors that do not
// wrap a registered root error are reported as code 1 (internal).
func Code(err error) uint32 {
	if err == nil {
		return 0
	}
	for {
		if coder, ok := err.(interface{ Code() uint32 }); ok {
			return coder.Code()
		}
		if c, ok := err.(causer); ok {
			err = c.Cause()
		} else {
			return 1
		}
	}
}

// Wrap extends given error with an additional information.
//
// If err is nil, this returns nil, avoiding the need for an if
// statement when wrapping an error returned at the end of a function.
func Wrap(err error, description string) error {
	if err == nil {
		return nil
	}

	// If this error does not carry the stacktrace information yet,
	// attach one. This should be done only once per error at the
	// lowest frame possible (most inner wrap).
	if stackTrace(err) == nil {
		err = errors.WithStack(err)
	}

	return &wrappedError{
		parent: err,
		msg:    description,
	}
}

// Wrapf extends given error with an additional information.
//
// This function works like Wrap function with additional
// functionality of formatting the input as specified.
func Wrapf(err error, format string, args ...interface{}) error {
	desc := fmt.Sprintf(format, args...)
	return Wrap(err, desc)
}

type wrappedError struct {
	// This error layer description.
	msg string
	// The underlying error that triggered this one.
	parent error
}

func (e *wrappedError) Error() string {
	return fmt.Sprintf("%s: %s", e.msg, e.parent.Error())
}

func (e *wrappedError) Cause() error {
	return e.parent
}

func (e *wrappedError) Code() uint32 {
	return Code(e.parent)
}

// stackTrace returns the first found stack trace frame carried by
// given error or any wrapped error. It returns nil if no stack trace
// is found.
func stackTrace(err error) errors.StackTrace {
	type stackTracer interface {
		StackTrace() errors.StackTrace
	}
	for {
		if st, ok := err.(stackTracer); ok {
			return st.StackTrace()
		}
		if c, ok := err.(causer); ok {
			err = c.Cause()
		} else {
			return nil
		}
	}
}

// Recover captures a panic and stops its propagation. If panic
// happens it is transformed into a ErrPanic instance and assigned to
// given error. Call this function using defer in order to work as
// expected.
func Recover(err *error) {
	if r := recover(); r != nil {
		*err = Wrapf(ErrPanic, "%v", r)
	}
}

// causer is an interface implemented by an error that supports
// wrapping. Use it to test if an error wraps another error instance.
type causer interface {
	Cause() error
}
