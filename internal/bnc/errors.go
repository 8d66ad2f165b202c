package bnc

import (
	"errors"
	"fmt"
)

var (
	ErrDuplicateDigit = errors.New("digits must not repeat")
	ErrOutOfRange     = errors.New("value must be within 0..9999")
	ErrMalformed      = errors.New("malformed input")
	ErrResponseRange  = errors.New("bulls and cows must be within 0..4 and sum to at most 4")

	// ErrContradiction means no candidate explains the feedback seen so far.
	ErrContradiction = errors.New("no candidate is consistent with the responses")

	// ErrInvariant is an engine defect, never a user error.
	ErrInvariant = errors.New("engine invariant violated")
)

// ValidationError is returned for input that does not describe a legal code or
// response. Callers are expected to re-prompt.
type ValidationError struct {
	Input string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid input %q: %v", e.Input, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// ContradictionError carries the (guess, response) pair that emptied the pool.
type ContradictionError struct {
	Guess    Code
	Observed Response
}

func (e *ContradictionError) Error() string {
	return fmt.Sprintf("%v: guess %s answered %s", ErrContradiction, e.Guess, e.Observed)
}

func (e *ContradictionError) Unwrap() error { return ErrContradiction }

type InvariantError struct {
	Msg string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("%v: %s", ErrInvariant, e.Msg)
}

func (e *InvariantError) Unwrap() error { return ErrInvariant }

func invalid(input string, err error) error {
	return &ValidationError{Input: input, Err: err}
}
