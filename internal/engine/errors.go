package engine

import (
	"errors"
	"fmt"
)

// StepError is the only error type the combinators inspect. The split is
// structural: Fatal errors abort every combinator mode, ordinary failures
// are the routinely-swallowed "this step does not apply here" kind.
//
// Any error that is not a *StepError is treated as fatal. Unknown errors
// must never disappear into a retry loop.
type StepError struct {
	Fatal bool
	Msg   string
	Err   error
}

func (e *StepError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *StepError) Unwrap() error { return e.Err }

// Failf builds an ordinary step failure.
func Failf(format string, args ...interface{}) error {
	return &StepError{Msg: fmt.Sprintf(format, args...)}
}

// Fatalf builds a fatal failure.
func Fatalf(format string, args ...interface{}) error {
	return &StepError{Fatal: true, Msg: fmt.Sprintf(format, args...)}
}

// WrapFatal marks an existing error fatal without losing its chain.
func WrapFatal(err error) error {
	if err == nil {
		return nil
	}
	return &StepError{Fatal: true, Msg: "fatal step error", Err: err}
}

// IsFatal reports whether err must abort the whole combinator run.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	var se *StepError
	if errors.As(err, &se) {
		return se.Fatal
	}
	return true
}
