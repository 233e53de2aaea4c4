package gridsample

import (
	"errors"
	"fmt"
)

// Precondition errors. They are detected once, before any output element is written.
var (
	ErrNilBuffer      = errors.New("nil tensor buffer")
	ErrBufferTooSmall = errors.New("tensor buffer shorter than its descriptor")
	ErrRank           = errors.New("unsupported tensor rank")
	ErrGridShape      = errors.New("grid shape does not match input")
	ErrBatchMismatch  = errors.New("batch size mismatch")
	ErrOutputShape    = errors.New("output shape mismatch")
	ErrEmptyInput     = errors.New("input has an empty spatial extent")
	ErrExtentTooLarge = errors.New("spatial extent too large")
	ErrDType          = errors.New("unsupported or mismatched dtype")
	ErrOutputOverlap  = errors.New("output elements overlap")
)

// ShapeError carries the details of a rejected tensor.
type ShapeError struct {
	Tensor string // "input", "grid" or "output"
	Got    any
	Want   any
	Err    error // One of the sentinel errors above.
}

// Error implements the error interface.
func (e *ShapeError) Error() string {
	if e.Want == nil {
		return fmt.Sprintf("gridsample: %s: %v: got %v", e.Tensor, e.Err, e.Got)
	}
	return fmt.Sprintf("gridsample: %s: %v: got %v, want %v", e.Tensor, e.Err, e.Got, e.Want)
}

// Unwrap returns the sentinel error so errors.Is works.
func (e *ShapeError) Unwrap() error {
	return e.Err
}
