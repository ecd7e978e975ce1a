package domain

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"
)

var (
	// ErrUnknownState is matched by UnknownStateError.
	ErrUnknownState = errors.New("unknown state")

	// ErrUnknownSymbol is matched by UnknownSymbolError.
	ErrUnknownSymbol = errors.New("unknown symbol")

	// ErrBadSymbol is matched by BadSymbolError.
	ErrBadSymbol = errors.New("bad symbol")

	// ErrBadDirection is matched by BadDirectionError.
	ErrBadDirection = errors.New("bad direction")

	// ErrInitialState is matched by InitialStateError.
	ErrInitialState = errors.New("initial state not in states")

	// ErrStepLimit is returned by bounded runs that exhaust their step budget.
	ErrStepLimit = errors.New("step limit exceeded")

	// ErrSessionNotFound is returned when a session ID cannot be found in the store.
	ErrSessionNotFound = errors.New("session not found")

	// ErrMachineNotFound is returned when a machine name is not in a library.
	ErrMachineNotFound = errors.New("machine not found")
)

// UnknownStateError is raised when the current state has no row in the
// transition table and is neither accepting nor rejecting.
type UnknownStateError struct {
	State any
}

func (e *UnknownStateError) Error() string {
	return fmt.Sprintf("unknown state: no transitions defined for state %v", e.State)
}

func (e *UnknownStateError) Is(target error) bool { return target == ErrUnknownState }

// UnknownSymbolError is raised when the current state has a row but no entry
// for the symbol under the head.
type UnknownSymbolError struct {
	State  any
	Symbol rune
}

func (e *UnknownSymbolError) Error() string {
	return fmt.Sprintf("unknown symbol: state %v has no transition on %q", e.State, string(e.Symbol))
}

func (e *UnknownSymbolError) Is(target error) bool { return target == ErrUnknownSymbol }

// BadSymbolError is raised when an exercised entry writes something other
// than exactly one character.
type BadSymbolError struct {
	State  any
	Symbol rune
	Write  string
}

func (e *BadSymbolError) Error() string {
	return fmt.Sprintf("bad symbol: transition (%v, %q) writes %q, expected exactly one character",
		e.State, string(e.Symbol), e.Write)
}

func (e *BadSymbolError) Is(target error) bool { return target == ErrBadSymbol }

// BadDirectionError is raised when an exercised entry carries a move that is
// neither Left nor Right, e.g. the zero Direction of a table built in code.
type BadDirectionError struct {
	State  any
	Symbol rune
	Move   Direction
}

func (e *BadDirectionError) Error() string {
	return fmt.Sprintf("bad direction: transition (%v, %q) moves %v, expected L or R",
		e.State, string(e.Symbol), e.Move)
}

func (e *BadDirectionError) Is(target error) bool { return target == ErrBadDirection }

// InitialStateError is the only error raised at construction.
type InitialStateError struct {
	State any
}

func (e *InitialStateError) Error() string {
	return fmt.Sprintf("initial state %v is not a member of states", e.State)
}

func (e *InitialStateError) Is(target error) bool { return target == ErrInitialState }

// ValidateWrite checks that a write symbol is exactly one character and
// returns it.
func ValidateWrite(write string) (rune, bool) {
	if utf8.RuneCountInString(write) != 1 {
		return 0, false
	}
	r, size := utf8.DecodeRuneInString(write)
	if r == utf8.RuneError && size <= 1 {
		return 0, false
	}
	return r, true
}

// Error kinds reported by adapters and metrics.
const (
	KindUnknownState  = "unknown_state"
	KindUnknownSymbol = "unknown_symbol"
	KindBadSymbol     = "bad_symbol"
	KindBadDirection  = "bad_direction"
	KindStepLimit     = "step_limit"
	KindCanceled      = "canceled"
	KindNotFound      = "not_found"
	KindInternal      = "internal"
)

// ErrorKind maps an error to a stable, machine-readable kind.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrUnknownState):
		return KindUnknownState
	case errors.Is(err, ErrUnknownSymbol):
		return KindUnknownSymbol
	case errors.Is(err, ErrBadSymbol):
		return KindBadSymbol
	case errors.Is(err, ErrBadDirection):
		return KindBadDirection
	case errors.Is(err, ErrStepLimit):
		return KindStepLimit
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return KindCanceled
	case errors.Is(err, ErrSessionNotFound), errors.Is(err, ErrMachineNotFound):
		return KindNotFound
	}
	return KindInternal
}
